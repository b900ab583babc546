// Package loader prefetches collated batches on a pool of goroutines while
// handing them to the consumer strictly in schedule order.
package loader

import "context"
import "sync"

import "github.com/pkg/errors"

import "github.com/neurlang/stylish/dataset"
import "github.com/neurlang/stylish/parallel"
import "github.com/neurlang/stylish/sampler"

// Collator builds a batch from sample indices. *dataset.Dataset implements it.
type Collator interface {
	Collate(indices []int) (*dataset.Batch, error)
}

// Loader decodes batches ahead of the training loop.
type Loader struct {
	Collator Collator
	// Workers is the number of concurrent collate calls.
	Workers int
	// Depth bounds how many batches may be decoded ahead of the consumer.
	Depth int
}

// New returns a loader with one worker per logical core.
func New(c Collator) *Loader {
	w := parallel.Workers()
	return &Loader{Collator: c, Workers: w, Depth: 2 * w}
}

type result struct {
	batch *dataset.Batch
	err   error
}

// Iterator walks one epoch of batches.
type Iterator struct {
	slots  chan chan result
	cancel context.CancelFunc
	wg     sync.WaitGroup

	step  int
	batch *dataset.Batch
	err   error
}

// Start begins decoding sched from position skip. The caller must Close the
// iterator, even after Next returned false.
func (l *Loader) Start(ctx context.Context, sched sampler.Schedule, skip int) *Iterator {
	workers := l.Workers
	if workers <= 0 {
		workers = 1
	}
	depth := l.Depth
	if depth < workers {
		depth = workers
	}
	if skip < 0 {
		skip = 0
	}
	ctx, cancel := context.WithCancel(ctx)
	it := &Iterator{
		slots:  make(chan chan result, depth),
		cancel: cancel,
		step:   skip,
	}
	sem := make(chan struct{}, workers)

	it.wg.Add(1)
	go func() {
		defer it.wg.Done()
		defer close(it.slots)
		for i := skip; i < len(sched); i++ {
			slot := make(chan result, 1)
			select {
			case it.slots <- slot:
			case <-ctx.Done():
				return
			}
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				slot <- result{err: ctx.Err()}
				return
			}
			it.wg.Add(1)
			go func(e sampler.Entry, slot chan result) {
				defer it.wg.Done()
				defer func() { <-sem }()
				b, err := l.Collator.Collate(e.Indices)
				if err != nil {
					err = errors.Wrapf(err, "collating bin %d", e.Bin)
				} else if b.Bin != e.Bin {
					err = errors.Errorf("collated batch has bin %d, schedule says %d", b.Bin, e.Bin)
				}
				slot <- result{batch: b, err: err}
			}(sched[i], slot)
		}
	}()
	return it
}

// Next blocks until the next batch in order is ready. It returns false at
// the end of the epoch or on the first failure.
func (it *Iterator) Next() bool {
	if it.err != nil {
		return false
	}
	slot, ok := <-it.slots
	if !ok {
		it.batch = nil
		return false
	}
	r := <-slot
	if r.err != nil {
		it.err = r.err
		it.batch = nil
		return false
	}
	it.batch = r.batch
	it.step++
	return true
}

// Batch is the batch returned by the last successful Next.
func (it *Iterator) Batch() *dataset.Batch {
	return it.batch
}

// Step is the number of schedule positions consumed, including skipped ones.
func (it *Iterator) Step() int {
	return it.step
}

// Err is the failure that ended the iteration, if any.
func (it *Iterator) Err() error {
	return it.err
}

// Close stops prefetching and waits for in-flight collates.
func (it *Iterator) Close() {
	it.cancel()
	for slot := range it.slots {
		_ = slot
	}
	it.wg.Wait()
}
