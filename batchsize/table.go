// Package batchsize keeps the largest batch size known to fit in device
// memory for every time bin.
//
// A Table is owned by exactly one training process. Replicas each hold an
// independent copy seeded from the same probed file; probing must run in a
// single process and its output be distributed before multi-process
// training. Concurrent mutation of one store from several processes is a
// precondition violation and is not detected.
package batchsize

import "context"
import "sort"
import "strconv"

import "github.com/pkg/errors"

// DefaultSize is returned for bins that have no recorded size.
const DefaultSize = 1

// Store persists a table snapshot.
type Store interface {
	// Load returns the stored mapping, or an empty map if nothing was stored yet.
	Load(ctx context.Context) (map[string]int, error)
	// Save replaces the stored mapping wholesale.
	Save(ctx context.Context, sizes map[string]int) error
}

// Table maps a bin id to its maximum batch size. A size of 0 disables the bin.
type Table struct {
	sizes map[int]int
	store Store
}

// New returns an empty table persisted to store. store may be nil for a
// table that lives only in memory.
func New(store Store) *Table {
	return &Table{sizes: make(map[int]int), store: store}
}

// Get returns the recorded size of bin, or DefaultSize if unset.
func (t *Table) Get(bin int) int {
	if v, ok := t.sizes[bin]; ok {
		return v
	}
	return DefaultSize
}

// Lookup returns the recorded size and whether one exists.
func (t *Table) Lookup(bin int) (int, bool) {
	v, ok := t.sizes[bin]
	return v, ok
}

// Set records the size of bin.
func (t *Table) Set(bin, size int) error {
	if size < 0 {
		return errors.Errorf("batch size %d for bin %d is negative", size, bin)
	}
	t.sizes[bin] = size
	return nil
}

// Reset forgets every recorded size.
func (t *Table) Reset() {
	t.sizes = make(map[int]int)
}

// Len is the number of bins with a recorded size.
func (t *Table) Len() int {
	return len(t.sizes)
}

// Bins returns the bins with a recorded size, ascending.
func (t *Table) Bins() []int {
	keys := make([]int, 0, len(t.sizes))
	for k := range t.sizes {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// Snapshot returns the table in its persisted form, keyed by the bin id as a string.
func (t *Table) Snapshot() map[string]int {
	out := make(map[string]int, len(t.sizes))
	for k, v := range t.sizes {
		out[strconv.Itoa(k)] = v
	}
	return out
}

// Save writes the whole table to the store.
func (t *Table) Save(ctx context.Context) error {
	if t.store == nil {
		return nil
	}
	if err := t.store.Save(ctx, t.Snapshot()); err != nil {
		return errors.Wrap(err, "saving batch sizes")
	}
	return nil
}

// Load replaces the table contents with what the store holds. A store with
// nothing saved leaves the table empty.
func (t *Table) Load(ctx context.Context) error {
	if t.store == nil {
		return nil
	}
	stored, err := t.store.Load(ctx)
	if err != nil {
		return errors.Wrap(err, "loading batch sizes")
	}
	sizes := make(map[int]int, len(stored))
	for k, v := range stored {
		bin, err := strconv.Atoi(k)
		if err != nil {
			return errors.Wrapf(err, "bad bin key %q", k)
		}
		if v < 0 {
			return errors.Errorf("stored batch size %d for bin %d is negative", v, bin)
		}
		sizes[bin] = v
	}
	t.sizes = sizes
	return nil
}
