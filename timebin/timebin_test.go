package timebin

import "testing"

func TestBinMinimum(t *testing.T) {
	for _, n := range []int{0, 1, Hop - 1, Offset*Hop - 1} {
		if b := Bin(n); b != None {
			t.Errorf("Bin(%d) = %d, want None", n, b)
		}
	}
	if b := Bin(Offset * Hop); b != 0 {
		t.Errorf("Bin(%d) = %d, want 0", Offset*Hop, b)
	}
}

func TestBinMonotonic(t *testing.T) {
	last := None
	for n := 0; n < SampleRate*30; n += 97 {
		b := Bin(n)
		if b < last {
			t.Fatalf("Bin(%d) = %d after %d", n, b, last)
		}
		last = b
	}
}

func TestFrameCountCoversBin(t *testing.T) {
	for n := Offset * Hop; n < SampleRate*30; n += 113 {
		b := Bin(n)
		if FrameCount(b) < n/Hop {
			t.Fatalf("FrameCount(%d) = %d below %d frames", b, FrameCount(b), n/Hop)
		}
		if PaddedSamples(b) < n {
			t.Fatalf("PaddedSamples(%d) = %d below %d samples", b, PaddedSamples(b), n)
		}
	}
}

func TestFromPadded(t *testing.T) {
	for b := 0; b < 200; b++ {
		if got := FromPadded(PaddedSamples(b)); got != b {
			t.Errorf("FromPadded(PaddedSamples(%d)) = %d", b, got)
		}
	}
	if FromPadded(0) != None {
		t.Error("FromPadded(0) should be None")
	}
}

func TestGroup(t *testing.T) {
	durations := []int{0, 6000, 12000, 6100, 100, 30000}
	bins := Group(durations)
	if len(bins[0]) != 2 || bins[0][0] != 1 || bins[0][1] != 3 {
		t.Errorf("bin 0 = %v", bins[0])
	}
	if len(bins[1]) != 1 || bins[1][0] != 2 {
		t.Errorf("bin 1 = %v", bins[1])
	}
	if len(bins[4]) != 1 || bins[4][0] != 5 {
		t.Errorf("bin 4 = %v", bins[4])
	}
	keys := Sorted(bins)
	if len(keys) != 3 || keys[0] != 0 || keys[1] != 1 || keys[2] != 4 {
		t.Errorf("Sorted = %v", keys)
	}
}
