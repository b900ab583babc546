package sampler

import "reflect"
import "testing"

type sizes map[int]int

func (s sizes) Get(bin int) int {
	if v, ok := s[bin]; ok {
		return v
	}
	return 1
}

func makeBins() map[int][]int {
	bins := map[int][]int{}
	next := 0
	for bin, n := range map[int]int{0: 10, 1: 7, 2: 5, 3: 3, 4: 1} {
		for i := 0; i < n; i++ {
			bins[bin] = append(bins[bin], next)
			next++
		}
	}
	return bins
}

func TestDeterministicPerEpoch(t *testing.T) {
	bins := makeBins()
	sz := sizes{0: 3, 1: 2, 2: 4, 3: 2, 4: 1}
	opts := Options{Shuffle: true, Seed: 42, Replicas: 1}
	a := New(bins, sz, opts).Epoch(3)
	b := New(bins, sz, opts).Epoch(3)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("same seed and epoch gave different schedules")
	}
	c := New(bins, sz, opts).Epoch(4)
	if reflect.DeepEqual(a, c) {
		t.Error("different epochs gave identical schedules")
	}
}

func TestNoSamplesDropped(t *testing.T) {
	bins := makeBins()
	sz := sizes{0: 3, 1: 2, 2: 4, 3: 2, 4: 5}
	for _, shuffle := range []bool{false, true} {
		s := New(bins, sz, Options{Shuffle: shuffle, Seed: 1, Replicas: 1})
		seen := map[int]int{}
		perBin := map[int]int{}
		for _, e := range s.Epoch(1) {
			if len(e.Indices) > sz.Get(e.Bin) {
				t.Errorf("bin %d batch of %d above size %d", e.Bin, len(e.Indices), sz.Get(e.Bin))
			}
			perBin[e.Bin] += len(e.Indices)
			for _, i := range e.Indices {
				seen[i]++
			}
		}
		for bin, members := range bins {
			if perBin[bin] != len(members) {
				t.Errorf("shuffle=%v bin %d yielded %d of %d", shuffle, bin, perBin[bin], len(members))
			}
			for _, i := range members {
				if seen[i] != 1 {
					t.Errorf("sample %d seen %d times", i, seen[i])
				}
			}
		}
	}
}

func TestDropLast(t *testing.T) {
	bins := makeBins()
	s := New(bins, sizes{0: 3, 1: 3, 2: 3, 3: 3, 4: 3}, Options{DropLast: true, Replicas: 1})
	sched := s.Epoch(1)
	for _, e := range sched {
		if len(e.Indices) != 3 {
			t.Errorf("bin %d incomplete batch %v", e.Bin, e.Indices)
		}
	}
	// 10/3 + 7/3 + 5/3 + 3/3 + 1/3
	if len(sched) != 3+2+1+1+0 {
		t.Errorf("%d batches", len(sched))
	}
}

func TestLenMatchesIteration(t *testing.T) {
	bins := makeBins()
	sz := sizes{0: 4, 1: 3, 2: 0, 3: 2}
	for _, drop := range []bool{false, true} {
		for replicas := 1; replicas <= 3; replicas++ {
			for rank := 0; rank < replicas; rank++ {
				s := New(bins, sz, Options{Shuffle: true, DropLast: drop, Seed: 7, Replicas: replicas, Rank: rank})
				if got, want := len(s.Epoch(2)), s.Len(); got != want {
					t.Errorf("drop=%v replicas=%d rank=%d: %d batches, Len %d", drop, replicas, rank, got, want)
				}
			}
		}
	}
}

func TestZeroSizeSkipsBin(t *testing.T) {
	bins := makeBins()
	s := New(bins, sizes{1: 0}, Options{Replicas: 1})
	for _, e := range s.Epoch(1) {
		if e.Bin == 1 {
			t.Fatal("disabled bin produced a batch")
		}
	}
}

func TestReplicaShards(t *testing.T) {
	bins := map[int][]int{0: {0, 1, 2, 3, 4, 5, 6, 7, 8}}
	union := map[int]int{}
	var sizes0 []int
	for rank := 0; rank < 2; rank++ {
		s := New(bins, sizes{0: 2}, Options{Shuffle: true, Seed: 3, Replicas: 2, Rank: rank})
		total := 0
		for _, e := range s.Epoch(1) {
			total += len(e.Indices)
			for _, i := range e.Indices {
				union[i]++
			}
		}
		sizes0 = append(sizes0, total)
	}
	if sizes0[0] != 5 || sizes0[1] != 5 {
		t.Errorf("shard sizes %v, want 5 each", sizes0)
	}
	if len(union) != 9 {
		t.Errorf("replicas covered %d of 9 samples", len(union))
	}
}

func TestForcedBin(t *testing.T) {
	bins := makeBins()
	s := New(bins, sizes{}, Options{Shuffle: true, DropLast: true, Replicas: 1})
	if got := s.ProbeBatch(1, 16); got != 7 {
		t.Fatalf("ProbeBatch clamped to %d", got)
	}
	sched := s.Epoch(1)
	if len(sched) != 1 || sched[0].Bin != 1 || len(sched[0].Indices) != 7 {
		t.Errorf("forced schedule %v", sched)
	}
	s.Force(0, 4)
	sched = s.Epoch(1)
	if len(sched) != 3 || len(sched[2].Indices) != 2 {
		t.Errorf("forced bin 0 at 4: %v", sched)
	}
	s.Force(0, 0)
	if len(s.Epoch(1)) != 0 || s.Len() != 0 {
		t.Error("forced size 0 produced batches")
	}
}

func TestIterateStops(t *testing.T) {
	s := New(makeBins(), sizes{}, Options{Replicas: 1})
	n := 0
	s.Iterate(1, func(Entry) bool {
		n++
		return n < 3
	})
	if n != 3 {
		t.Errorf("yield called %d times", n)
	}
}

func TestRankOutOfRange(t *testing.T) {
	for _, opts := range []Options{{Replicas: 2, Rank: 2}, {Replicas: 2, Rank: -1}, {Rank: 1}} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("New accepted rank %d of %d replicas", opts.Rank, opts.Replicas)
				}
			}()
			New(makeBins(), sizes{}, opts)
		}()
	}
	if s := New(makeBins(), sizes{}, Options{Replicas: 0, Rank: 0}); s.Len() == 0 {
		t.Error("zero replicas did not default to one process")
	}
}
