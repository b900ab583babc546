package progress

import "testing"

func TestFlush(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, "acoustic")
	w.Status.CurrentEpoch = 2
	w.Status.CurrentStep = 17
	w.Status.TotalStep = 40
	w.Status.Backoffs = 1
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}
	s, err := Read(w.Path)
	if err != nil {
		t.Fatal(err)
	}
	if s.RunID == "" || s.RunID != w.Status.RunID {
		t.Errorf("run id %q", s.RunID)
	}
	if s.CurrentEpoch != 2 || s.CurrentStep != 17 || s.TotalStep != 40 || s.Backoffs != 1 || s.Stage != "acoustic" {
		t.Errorf("status %+v", s)
	}
	var nilWriter *Writer
	if err := nilWriter.Flush(); err != nil {
		t.Error(err)
	}
}
