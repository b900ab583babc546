package trainer

import "context"

import "github.com/pkg/errors"

import "github.com/neurlang/stylish/dataset"

// LossLog is what a successful step reports.
type LossLog struct {
	Total      float64
	Components map[string]float64
}

// Stage is the model side of a training step.
type Stage interface {
	// TrainBatch runs forward, backward and the optimizer step on batch.
	// Errors that mean the step ran out of a device resource should be
	// failure.ResourceExhausted, possibly wrapped; the Device gets a chance
	// to classify anything else.
	TrainBatch(ctx context.Context, batch *dataset.Batch) (*LossLog, error)
	// ZeroGrad drops accumulated gradients after a failed step.
	ZeroGrad()
	// StepSchedule advances the learning rate schedule to step of stepLimit.
	StepSchedule(step, stepLimit int)
	// StepDiscriminatorSchedules advances the discriminator schedules.
	StepDiscriminatorSchedules()
}

// Device is the execution engine boundary.
type Device interface {
	// Classify returns err, tagged as failure.ResourceExhausted when the
	// engine reports memory pressure.
	Classify(err error) error
	// Release frees what a failed step left behind.
	Release()
}

// Replicas describes data parallel training. The zero value means one process.
type Replicas struct {
	Count int
	Rank  int
}

func (r Replicas) normalize() Replicas {
	if r.Count < 1 {
		r.Count = 1
	}
	return r
}

// Validate rejects a rank outside the process count.
func (r Replicas) Validate() error {
	n := r.normalize()
	if n.Rank < 0 || n.Rank >= n.Count {
		return errors.Errorf("rank %d outside %d replicas", r.Rank, n.Count)
	}
	return nil
}
