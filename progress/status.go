// Package progress writes the training progression file that external
// tooling polls to follow a run.
package progress

import "encoding/json"
import "os"
import "path/filepath"
import "time"

import "github.com/google/uuid"
import "github.com/pkg/errors"

// FileName is the progression file kept in the log directory.
const FileName = "training_progression.json"

// Status is the content of the progression file.
type Status struct {
	RunID         string    `json:"run_id"`
	Stage         string    `json:"stage,omitempty"`
	CurrentEpoch  int       `json:"current_epoch"`
	CurrentStep   int       `json:"current_step"`
	TotalStep     int       `json:"total_step"`
	StepsPerEpoch int       `json:"steps_per_epoch"`
	SkippedSteps  int       `json:"skipped_steps"`
	Backoffs      int       `json:"backoffs"`
	Loss          float64   `json:"loss,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Writer keeps a Status and rewrites its file.
type Writer struct {
	Path   string
	Status Status
}

// NewWriter returns a writer for logDir with a fresh run id.
func NewWriter(logDir, stage string) *Writer {
	return &Writer{
		Path:   filepath.Join(logDir, FileName),
		Status: Status{RunID: uuid.NewString(), Stage: stage},
	}
}

// Flush writes the current status.
func (w *Writer) Flush() error {
	if w == nil {
		return nil
	}
	w.Status.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(&w.Status, "", "  ")
	if err != nil {
		return err
	}
	tmp := w.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return errors.Wrapf(err, "writing %s", tmp)
	}
	return errors.Wrapf(os.Rename(tmp, w.Path), "replacing %s", w.Path)
}

// Read loads a progression file.
func Read(path string) (*Status, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Status
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", path)
	}
	return &s, nil
}
