// Package simstage is a training stage without a model. It charges every
// batch against a memory budget counted in frames, so the batching core can
// be exercised end to end on any host.
package simstage

import "context"
import "math"

import "github.com/pkg/errors"

import "github.com/neurlang/stylish/dataset"
import "github.com/neurlang/stylish/failure"
import "github.com/neurlang/stylish/schedule"
import "github.com/neurlang/stylish/trainer"
import "github.com/neurlang/stylish/timebin"

// Stage runs simulated steps.
type Stage struct {
	// Budget is the number of frames a batch may hold in total.
	Budget int
	// FFTFrames is the longest sample the FFT workspace fits; 0 is unlimited.
	FFTFrames int
	Schedule  *schedule.Set

	Trained   int
	Exhausted int
	pending   int
}

// New returns a stage with the given frame budget and base learning rate.
func New(budget int, baseLR float64) *Stage {
	return &Stage{Budget: budget, Schedule: schedule.NewSet(baseLR)}
}

var _ trainer.Stage = (*Stage)(nil)

// Cost is the number of frames a batch occupies.
func Cost(b *dataset.Batch) int {
	return timebin.FrameCount(b.Bin) * b.Size()
}

func (s *Stage) TrainBatch(ctx context.Context, b *dataset.Batch) (*trainer.LossLog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if b.Size() == 0 {
		return nil, errors.New("empty batch")
	}
	if len(b.Waves) > 0 && b.PaddedBin() != b.Bin {
		return nil, errors.Errorf("batch of bin %d padded as bin %d", b.Bin, b.PaddedBin())
	}
	frames := timebin.FrameCount(b.Bin)
	s.pending += b.Size()
	if s.FFTFrames > 0 && frames > s.FFTFrames {
		s.Exhausted++
		return nil, failure.FFT(errors.Errorf("cuFFT error: CUFFT_INTERNAL_ERROR at %d frames", frames))
	}
	if cost := Cost(b); s.Budget > 0 && cost > s.Budget {
		s.Exhausted++
		return nil, failure.OutOfMemory(errors.Errorf("CUDA out of memory. Tried to allocate %d frames, budget %d",
			cost, s.Budget))
	}
	s.pending = 0
	s.Trained++

	var energy float64
	var n int
	for _, w := range b.Waves {
		for _, v := range w {
			energy += float64(v) * float64(v)
		}
		n += len(w)
	}
	if n > 0 {
		energy /= float64(n)
	}
	gen := 1 / math.Sqrt(float64(1+s.Trained))
	lr := 0.0
	if s.Schedule != nil {
		lr = s.Schedule.GeneratorLR
	}
	return &trainer.LossLog{
		Total: gen + energy,
		Components: map[string]float64{
			"gen":    gen,
			"mel":    energy,
			"lr":     lr,
			"frames": float64(Cost(b)),
		},
	}, nil
}

// ZeroGrad forgets the samples of failed steps.
func (s *Stage) ZeroGrad() {
	s.pending = 0
}

// Pending is the number of samples whose gradients have not been dropped or applied.
func (s *Stage) Pending() int {
	return s.pending
}

func (s *Stage) StepSchedule(step, stepLimit int) {
	if s.Schedule != nil {
		s.Schedule.Step(step, stepLimit)
	}
}

func (s *Stage) StepDiscriminatorSchedules() {
	if s.Schedule != nil {
		s.Schedule.StepDiscriminators()
	}
}
