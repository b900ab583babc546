package trainer

import "context"
import "os"

import "github.com/pkg/errors"

import "github.com/neurlang/stylish/batchsize"
import "github.com/neurlang/stylish/progress"

// Resume seeds table from its store and returns the epoch and step recorded
// in the progression file at statusPath. A missing progression file resumes
// from the start. An empty statusPath only loads the table.
func Resume(ctx context.Context, table *batchsize.Table, statusPath string) (epoch, step int, err error) {
	if err := table.Load(ctx); err != nil {
		return 0, 0, err
	}
	if statusPath == "" {
		return 0, 0, nil
	}
	st, err := progress.Read(statusPath)
	if os.IsNotExist(errors.Cause(err)) {
		return 0, 0, nil
	} else if err != nil {
		return 0, 0, err
	}
	if st.StepsPerEpoch > 0 && st.CurrentStep >= st.StepsPerEpoch {
		return st.CurrentEpoch + 1, 0, nil
	}
	return st.CurrentEpoch, st.CurrentStep, nil
}

// Restore makes m continue the counters of a resumed run. The progression
// writer, when set, keeps the run id and stage of the resumed run.
func (m *Manager) Restore(st *progress.Status) {
	if st == nil {
		return
	}
	m.Skipped = st.SkippedSteps
	m.Backoffs = st.Backoffs
	m.TotalStep = st.TotalStep
	if m.Progress == nil {
		return
	}
	if st.RunID != "" {
		m.Progress.Status.RunID = st.RunID
	}
	if st.Stage != "" {
		m.Progress.Status.Stage = st.Stage
	}
}
