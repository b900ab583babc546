package schedule

import "math"
import "testing"

func TestLogical(t *testing.T) {
	if Logical(50, 100) != LogicalSteps/2 {
		t.Errorf("Logical(50, 100) = %d", Logical(50, 100))
	}
	if Logical(3, 0) != 0 {
		t.Error("zero step limit")
	}
}

func TestCosine(t *testing.T) {
	c := NewCosine(1e-4)
	if c.LR(0) != 0 {
		t.Errorf("LR(0) = %v", c.LR(0))
	}
	if math.Abs(c.LR(WarmupSteps)-1e-4) > 1e-12 {
		t.Errorf("LR at end of warmup = %v", c.LR(WarmupSteps))
	}
	if c.LR(LogicalSteps) != 0 {
		t.Errorf("LR at end = %v", c.LR(LogicalSteps))
	}
	prev := c.LR(WarmupSteps)
	for s := WarmupSteps + 1; s < LogicalSteps; s += 50 {
		if lr := c.LR(s); lr > prev {
			t.Fatalf("LR rose at %d", s)
		} else {
			prev = lr
		}
	}
}

func TestDiscriminatorClamp(t *testing.T) {
	d := Discriminator{LR: 1, Lambda: func() float64 { return 1000 }}
	d.Step(0.01)
	if math.Abs(d.LR-0.1) > 1e-15 {
		t.Errorf("LR = %v, want 0.1", d.LR)
	}
	d.Lambda = func() float64 { return 1e-9 }
	d.Step(0.01)
	if math.Abs(d.LR-0.001) > 1e-15 {
		t.Errorf("LR = %v, want 0.001", d.LR)
	}
}

func TestSet(t *testing.T) {
	s := NewSet(2e-4)
	s.Step(10, 100)
	s.StepDiscriminators()
	if s.Advanced != 1 {
		t.Errorf("Advanced = %d", s.Advanced)
	}
	if s.GeneratorLR != s.Generator.LR(1000) {
		t.Errorf("GeneratorLR = %v", s.GeneratorLR)
	}
	if s.MSD.LR > s.GeneratorLR*10 || s.MPD.LR < s.GeneratorLR/10 {
		t.Errorf("discriminators %v %v outside clamp of %v", s.MSD.LR, s.MPD.LR, s.GeneratorLR)
	}
}
