package trainer

import "context"
import "strings"

import "github.com/neurlang/stylish/dataset"
import "github.com/neurlang/stylish/failure"
import "github.com/neurlang/stylish/timebin"

// Iterate runs one training step on batch with up to MaxAttempts tries.
//
// When the step exhausts a device resource, gradients are dropped, the bin's
// batch size is lowered by one (never below 1) and saved the first time the
// bin fails since it last succeeded, and memory is released before the next
// try. When the last try fails too, the remaining batches of that bin are
// skipped until a batch of another bin arrives. A nil LossLog with a nil
// error means the step produced no result and must not count toward the loss.
//
// The batch keeps the size it was scheduled with: a lowered size applies from
// the next epoch's schedule on. Any other failure is returned at once and
// leaves the table untouched. The learning rate schedules advance once per
// call that does not fail fatally, trained or not.
func (m *Manager) Iterate(ctx context.Context, stage Stage, batch *dataset.Batch) (*LossLog, error) {
	var result *LossLog
	bin := batch.Bin
	m.lastBin = bin

	if bin == m.lastOOM && m.skipForward {
		m.Skipped++
		m.advance(stage)
		return nil, nil
	} else if bin != m.lastOOM {
		m.skipForward = false
	}

	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		if m.Debug {
			audio := timebin.Seconds(bin)
			m.logf("train_batch(i=%d, batch=%d, steps=%d), segment_bin_length=%v, total_audio_in_batch=%v",
				m.Step, batch.Size(), m.TotalStep, audio, audio*float64(batch.Size()))
		}
		r, err := stage.TrainBatch(ctx, batch)
		if err == nil {
			result = r
			if m.lastOOM == bin {
				m.lastOOM = timebin.None
			}
			break
		}
		err = m.Device.Classify(err)
		if !failure.IsResourceExhausted(err) {
			m.logf("UNKNOWN FAILURE in bin %d at step %d: %+v", bin, m.TotalStep, err)
			return nil, failure.Fatal(err, "training bin %d at step %d", bin, m.TotalStep)
		}

		size := m.Table.Get(bin)
		audio := timebin.Seconds(bin)
		marker := "*"
		if attempt >= MaxAttempts {
			marker = "X"
		}
		m.logf("%s TRAIN_BATCH OOM (%d) @ batch_size %d: audio_len %v total audio len %v (%v)",
			strings.Repeat(marker, attempt), bin, size, audio, audio*float64(size), failure.As(err).Resource)

		if attempt >= MaxAttempts {
			m.skipForward = true
		}
		stage.ZeroGrad()
		if m.lastOOM != bin {
			m.lastOOM = bin
			if size > 1 {
				size--
			}
			if err := m.Table.Set(bin, size); err != nil {
				return nil, err
			}
			if err := m.Table.Save(ctx); err != nil {
				return nil, err
			}
			m.Backoffs++
		}
		m.Device.Release()
	}

	m.advance(stage)
	return result, nil
}

// advance ages the schedules by one step.
func (m *Manager) advance(stage Stage) {
	m.Step++
	m.TotalStep++
	stage.StepSchedule(m.TotalStep, m.stepLimit())
	stage.StepDiscriminatorSchedules()
}

// SkipMode reports whether batches of bin are currently being skipped.
func (m *Manager) SkipMode(bin int) bool {
	return m.skipForward && bin == m.lastOOM
}

// resetOOM clears the per-epoch exhaustion state.
func (m *Manager) resetOOM() {
	m.lastBin = timebin.None
	m.lastOOM = timebin.None
	m.skipForward = false
}
