package simstage

import "context"
import "testing"

import "github.com/pkg/errors"

import "github.com/neurlang/stylish/batchsize"
import "github.com/neurlang/stylish/dataset"
import "github.com/neurlang/stylish/failure"
import "github.com/neurlang/stylish/trainer"

func batch(bin, size int) *dataset.Batch {
	b := &dataset.Batch{Bin: bin}
	for i := 0; i < size; i++ {
		b.Indices = append(b.Indices, bin*10+i)
	}
	return b
}

func TestBudget(t *testing.T) {
	s := New(300, 1e-4)
	ctx := context.Background()
	if _, err := s.TrainBatch(ctx, batch(0, 5)); err != nil {
		t.Fatalf("60 frames x 5 within 300: %v", err)
	}
	_, err := s.TrainBatch(ctx, batch(0, 6))
	re := failure.As(err)
	if re == nil || re.Resource != failure.DeviceMemory {
		t.Fatalf("over budget err = %v", err)
	}
	if s.Pending() != 6 {
		t.Errorf("Pending = %d", s.Pending())
	}
	s.ZeroGrad()
	if s.Pending() != 0 {
		t.Error("ZeroGrad kept pending samples")
	}
}

func TestFFT(t *testing.T) {
	s := New(0, 1e-4)
	s.FFTFrames = 80
	_, err := s.TrainBatch(context.Background(), batch(2, 1))
	if re := failure.As(err); re == nil || re.Resource != failure.FFTWorkspace {
		t.Fatalf("err = %v", err)
	}
}

func TestMispadded(t *testing.T) {
	s := New(0, 1e-4)
	b := batch(1, 1)
	b.Waves = [][]float32{make([]float32, 300*60)}
	_, err := s.TrainBatch(context.Background(), b)
	if err == nil || failure.IsResourceExhausted(err) {
		t.Errorf("err = %v", err)
	}
}

func TestCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(0, 1e-4).TrainBatch(ctx, batch(0, 1))
	if errors.Cause(err) != context.Canceled {
		t.Errorf("err = %v", err)
	}
}

type collator map[int]int

func (c collator) Collate(indices []int) (*dataset.Batch, error) {
	return &dataset.Batch{Bin: c[indices[0]], Indices: append([]int(nil), indices...)}, nil
}

func TestProbeAndTrain(t *testing.T) {
	bins := map[int][]int{}
	c := collator{}
	for bin := 0; bin < 3; bin++ {
		for i := 0; i < 10; i++ {
			bins[bin] = append(bins[bin], bin*10+i)
			c[bin*10+i] = bin
		}
	}
	ctx := context.Background()
	m := trainer.New(bins, c, batchsize.New(batchsize.NewFileStore(t.TempDir())))
	m.Logger = nil
	s := New(300, 1e-4)
	if err := m.Probe(ctx, s, 8); err != nil {
		t.Fatal(err)
	}
	for bin, want := range map[int]int{0: 5, 1: 3, 2: 3} {
		if got := m.Table.Get(bin); got != want {
			t.Errorf("bin %d probed to %d, want %d", bin, got, want)
		}
	}

	// a tighter device makes the longest bin back off during training
	s.Budget = 250
	m.InitEpoch(0, 0)
	sum, err := m.RunEpoch(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	if got := m.Table.Get(2); got != 2 {
		t.Errorf("bin 2 after backoff %d, want 2", got)
	}
	if sum.Steps != m.StepCount() {
		t.Errorf("ran %d of %d steps", sum.Steps, m.StepCount())
	}
	if s.Schedule.Advanced != sum.Steps {
		t.Errorf("schedule advanced %d times over %d steps", s.Schedule.Advanced, sum.Steps)
	}
	if sum.Loss <= 0 {
		t.Errorf("Loss = %v", sum.Loss)
	}
}
