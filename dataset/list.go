package dataset

import "bufio"
import "io"
import "os"
import "strconv"
import "strings"

import "github.com/pkg/errors"
import "golang.org/x/text/unicode/norm"

// Sample is one line of a train list. It never changes once loaded.
type Sample struct {
	Index   int
	Path    string
	Text    string
	Speaker int
}

// ReadListFile reads a train list from disk.
func ReadListFile(filename string) ([]Sample, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open train list %s", filename)
	}
	defer file.Close()
	samples, err := ReadList(file)
	if err != nil {
		return nil, errors.Wrapf(err, "train list %s", filename)
	}
	return samples, nil
}

// ReadList parses "path|text|speaker" lines. The speaker column is optional
// and defaults to 0. Blank lines are skipped.
func ReadList(r io.Reader) ([]Sample, error) {
	var samples []Sample
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		fields := strings.Split(text, "|")
		if len(fields) < 2 || fields[0] == "" {
			return nil, errors.Errorf("line %d: expected path|text|speaker, got %q", line, text)
		}
		s := Sample{
			Index: len(samples),
			Path:  fields[0],
			Text:  norm.NFC.String(fields[1]),
		}
		if len(fields) >= 3 && fields[2] != "" {
			id, err := strconv.Atoi(strings.TrimSpace(fields[2]))
			if err != nil {
				return nil, errors.Wrapf(err, "line %d: speaker id", line)
			}
			s.Speaker = id
		}
		samples = append(samples, s)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return samples, nil
}
