package batchsize

import "context"
import "encoding/json"
import "os"
import "path/filepath"

import "github.com/pkg/errors"

// FileName is the table file kept in every log directory.
const FileName = "batch_sizes.json"

// FileStore keeps the table as a JSON object in a log directory.
type FileStore struct {
	Path string
}

// NewFileStore returns the store for logDir.
func NewFileStore(logDir string) *FileStore {
	return &FileStore{Path: filepath.Join(logDir, FileName)}
}

func (f *FileStore) Load(ctx context.Context) (map[string]int, error) {
	data, err := os.ReadFile(f.Path)
	if os.IsNotExist(err) {
		return map[string]int{}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", f.Path)
	}
	var sizes map[string]int
	if err := json.Unmarshal(data, &sizes); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", f.Path)
	}
	if sizes == nil {
		sizes = map[string]int{}
	}
	return sizes, nil
}

// Save overwrites the file. The new content is written next to it and renamed
// into place so a crash never leaves a truncated table behind.
func (f *FileStore) Save(ctx context.Context, sizes map[string]int) error {
	data, err := json.MarshalIndent(sizes, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0755); err != nil {
		return errors.Wrapf(err, "creating %s", filepath.Dir(f.Path))
	}
	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0644); err != nil {
		return errors.Wrapf(err, "writing %s", tmp)
	}
	return errors.Wrapf(os.Rename(tmp, f.Path), "replacing %s", f.Path)
}
