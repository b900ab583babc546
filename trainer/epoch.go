package trainer

import "context"

import "github.com/neurlang/stylish/loader"
import "github.com/neurlang/stylish/sampler"

// FlushEvery is how many steps pass between progression file writes.
const FlushEvery = 50

// Summary describes a finished epoch.
type Summary struct {
	Epoch   int
	Steps   int
	Trained int
	Skipped int
	Loss    float64
}

// InitEpoch snapshots the schedule of epoch from the current table. The
// first fastForward batches are passed over by RunEpoch, which is how a
// resumed run continues mid epoch. A rank outside the replica count is an
// error.
func (m *Manager) InitEpoch(epoch, fastForward int) error {
	if err := m.Replicas.Validate(); err != nil {
		return err
	}
	s := m.sampler(sampler.Options{Shuffle: true, DropLast: true})
	m.schedule = s.Epoch(epoch)
	m.Epoch = epoch
	if fastForward < 0 {
		fastForward = 0
	}
	if fastForward > len(m.schedule) {
		fastForward = len(m.schedule)
	}
	m.skip = fastForward
	m.Step = fastForward
	m.resetOOM()
	if m.Progress != nil {
		m.Progress.Status.CurrentEpoch = epoch
		m.Progress.Status.StepsPerEpoch = len(m.schedule)
	}
	return nil
}

// Schedule is the batch schedule of the current epoch.
func (m *Manager) Schedule() sampler.Schedule {
	return m.schedule
}

// RunEpoch trains on every remaining batch of the current epoch.
func (m *Manager) RunEpoch(ctx context.Context, stage Stage) (*Summary, error) {
	l := m.Loader
	if l == nil {
		l = loader.New(m.Collator)
		m.Loader = l
	}
	sum := &Summary{Epoch: m.Epoch}
	skipped := m.Skipped
	var total float64

	it := l.Start(ctx, m.schedule, m.skip)
	defer it.Close()
	for it.Next() {
		r, err := m.Iterate(ctx, stage, it.Batch())
		if err != nil {
			m.flush(sum, total)
			return sum, err
		}
		sum.Steps++
		if r != nil {
			sum.Trained++
			total += r.Total
		}
		sum.Skipped = m.Skipped - skipped
		if sum.Steps%FlushEvery == 0 {
			if err := m.flush(sum, total); err != nil {
				m.logf("writing progression: %v", err)
			}
		}
	}
	if err := it.Err(); err != nil {
		m.flush(sum, total)
		return sum, err
	}
	m.skip = len(m.schedule)
	if err := m.flush(sum, total); err != nil {
		m.logf("writing progression: %v", err)
	}
	m.logf("Epoch %d: %d steps, %d trained, %d skipped, loss %.5f, %d backoffs",
		m.Epoch, sum.Steps, sum.Trained, sum.Skipped, sum.Loss, m.Backoffs)
	return sum, nil
}

func (m *Manager) flush(sum *Summary, total float64) error {
	if sum.Trained > 0 {
		sum.Loss = total / float64(sum.Trained)
	}
	if m.Progress == nil {
		return nil
	}
	st := &m.Progress.Status
	st.CurrentEpoch = m.Epoch
	st.CurrentStep = m.Step
	st.TotalStep = m.TotalStep
	st.StepsPerEpoch = len(m.schedule)
	st.SkippedSteps = m.Skipped
	st.Backoffs = m.Backoffs
	st.Loss = sum.Loss
	return m.Progress.Flush()
}
