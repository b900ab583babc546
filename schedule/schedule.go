// Package schedule holds the learning rate policy a training stage advances
// once per trainer call, including calls whose step was skipped.
package schedule

import "math"

const (
	// LogicalSteps is the length of the schedule independent of epoch size.
	LogicalSteps = 10000
	// WarmupSteps is the linear warmup in logical steps.
	WarmupSteps = 100
)

// Logical maps a real step onto the fixed logical schedule.
func Logical(step, stepLimit int) int {
	if stepLimit <= 0 {
		return 0
	}
	return step * LogicalSteps / stepLimit
}

// Cosine is a cosine decay with linear warmup.
type Cosine struct {
	BaseLR float64
	Warmup int
	Steps  int
}

// NewCosine returns the schedule the generator optimizers use.
func NewCosine(baseLR float64) *Cosine {
	return &Cosine{BaseLR: baseLR, Warmup: WarmupSteps, Steps: LogicalSteps}
}

// LR is the learning rate at a logical step.
func (c *Cosine) LR(logical int) float64 {
	if logical < c.Warmup {
		return c.BaseLR * float64(logical) / float64(max(1, c.Warmup))
	}
	if logical >= c.Steps {
		return 0
	}
	progress := float64(logical-c.Warmup) / float64(max(1, c.Steps-c.Warmup))
	return c.BaseLR * 0.5 * (1 + math.Cos(math.Pi*progress))
}

// Discriminator is a multiplicative schedule whose rate is held within a
// decade of the generator's.
type Discriminator struct {
	LR     float64
	Lambda func() float64
}

// Step multiplies the rate by Lambda and clamps it to [gen/10, gen*10].
func (d *Discriminator) Step(generatorLR float64) {
	if d.Lambda != nil {
		d.LR *= d.Lambda()
	}
	lo, hi := generatorLR/10, generatorLR*10
	if d.LR < lo {
		d.LR = lo
	}
	if d.LR > hi {
		d.LR = hi
	}
}

// Reset puts the rate back at the generator's.
func (d *Discriminator) Reset(generatorLR float64) {
	d.LR = generatorLR
}

// Set is the schedule state of one stage: the generator cosine and the two
// discriminators.
type Set struct {
	Generator *Cosine
	MSD, MPD  Discriminator

	GeneratorLR float64
	Advanced    int
}

// NewSet starts all rates from baseLR.
func NewSet(baseLR float64) *Set {
	s := &Set{Generator: NewCosine(baseLR)}
	s.GeneratorLR = s.Generator.LR(0)
	s.MSD.Reset(baseLR)
	s.MPD.Reset(baseLR)
	return s
}

// Step moves the generator rate to the given real step.
func (s *Set) Step(step, stepLimit int) {
	s.GeneratorLR = s.Generator.LR(Logical(step, stepLimit))
	s.Advanced++
}

// StepDiscriminators advances both discriminator schedules.
func (s *Set) StepDiscriminators() {
	s.MSD.Step(s.GeneratorLR)
	s.MPD.Step(s.GeneratorLR)
}
