package parallel

import "errors"
import "sync/atomic"
import "testing"

func TestForEachVisitsAll(t *testing.T) {
	var seen [500]int32
	err := ForEach(len(seen), 8, func(i int) error {
		atomic.AddInt32(&seen[i], 1)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range seen {
		if v != 1 {
			t.Fatalf("index %d visited %d times", i, v)
		}
	}
}

func TestForEachLimit(t *testing.T) {
	var running, peak int32
	ForEach(100, 3, func(i int) error {
		n := atomic.AddInt32(&running, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		atomic.AddInt32(&running, -1)
		return nil
	})
	if peak > 3 {
		t.Errorf("peak concurrency %d above limit", peak)
	}
}

func TestForEachError(t *testing.T) {
	bad := errors.New("unreadable")
	err := ForEach(50, 1, func(i int) error {
		if i == 10 {
			return bad
		}
		return nil
	})
	if err != bad {
		t.Errorf("err = %v", err)
	}
}

func TestForEachEmpty(t *testing.T) {
	if err := ForEach(0, 4, func(int) error { t.Fatal("called"); return nil }); err != nil {
		t.Fatal(err)
	}
}

func TestWorkers(t *testing.T) {
	if Workers() < 1 {
		t.Error("Workers() < 1")
	}
	if Host() == "" {
		t.Error("empty host description")
	}
}
