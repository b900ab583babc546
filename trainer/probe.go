package trainer

import "context"
import "io"

import "github.com/pkg/errors"
import "github.com/schollz/progressbar/v2"

import "github.com/neurlang/stylish/failure"
import "github.com/neurlang/stylish/sampler"
import "github.com/neurlang/stylish/timebin"

// Probe finds the batch size of every bin, shortest bins first. The search
// starts at batchMax and only ever goes down: a bin starts from the size the
// previous bin settled on, and every exhausted trial lowers the candidate by
// one. A candidate of 0 disables the bin. The table is saved after each bin
// so an interrupted probe keeps what it found. Failures other than resource
// exhaustion end the probe.
func (m *Manager) Probe(ctx context.Context, stage Stage, batchMax int) error {
	if m.Replicas.normalize().Count > 1 {
		return ErrProbeMultiReplica
	}
	if err := m.Replicas.Validate(); err != nil {
		return err
	}
	if batchMax < 0 {
		return errors.Errorf("probe batch max %d is negative", batchMax)
	}
	keys := timebin.Sorted(m.Bins)
	if len(keys) == 0 {
		return errors.New("nothing to probe: no time bins")
	}

	m.Table.Reset()
	out := m.ProbeOutput
	if out == nil {
		out = io.Discard
	}
	maxFrames := timebin.FrameCount(keys[len(keys)-1])
	bar := progressbar.NewOptions(maxFrames,
		progressbar.OptionSetDescription("Probing"),
		progressbar.OptionSetWriter(out),
	)
	shown := 0
	defer func() {
		if err := bar.Finish(); err != nil {
			m.logf("probe progress: %v", err)
		}
		if _, err := io.WriteString(out, "\n"); err != nil {
			m.logf("probe progress: %v", err)
		}
	}()

	size := batchMax
	for _, bin := range keys {
		frames := timebin.FrameCount(bin)
		if err := bar.Add(frames - shown); err != nil {
			m.logf("probe progress: %v", err)
		}
		shown = frames

		for {
			if size == 0 {
				break
			}
			err := m.trial(ctx, stage, bin, size)
			if err == nil {
				break
			}
			err = m.Device.Classify(err)
			if !failure.IsResourceExhausted(err) {
				m.logf("UNKNOWN FAILURE probing bin %d @ batch_size %d: %+v", bin, size, err)
				return failure.Fatal(err, "probing bin %d at batch size %d", bin, size)
			}
			audio := timebin.Seconds(bin)
			m.logf("TRAIN_BATCH OOM (%d) @ batch_size %d: audio_length %v total audio length %v",
				bin, size, audio, audio*float64(size))
			stage.ZeroGrad()
			m.Device.Release()
			size--
		}
		if err := m.Table.Set(bin, size); err != nil {
			return err
		}
		if err := m.Table.Save(ctx); err != nil {
			return err
		}
	}
	m.logf("Probed %d bins, largest bin %d frames settled at batch_size %d",
		len(keys), maxFrames, m.Table.Get(keys[len(keys)-1]))
	return nil
}

// trial runs one forced batch of bin at size.
func (m *Manager) trial(ctx context.Context, stage Stage, bin, size int) error {
	s := m.sampler(sampler.Options{Shuffle: true})
	s.Force(bin, size)
	var entry *sampler.Entry
	s.Iterate(0, func(e sampler.Entry) bool {
		entry = &e
		return false
	})
	if entry == nil {
		return errors.Errorf("bin %d has no samples", bin)
	}
	batch, err := m.Collator.Collate(entry.Indices)
	if err != nil {
		return errors.Wrapf(err, "collating probe batch for bin %d", bin)
	}
	_, err = stage.TrainBatch(ctx, batch)
	return err
}
