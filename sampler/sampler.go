// Package sampler turns time bins and a batch size table into the per-epoch
// sequence of batches, sharded across data parallel replicas.
package sampler

import "fmt"
import "math/rand"
import "sort"

// Sizes supplies the batch size of a bin. *batchsize.Table implements it.
type Sizes interface {
	Get(bin int) int
}

// Entry is one batch of the schedule: sample indices from a single bin.
type Entry struct {
	Bin     int
	Indices []int
}

// Schedule is the ordered list of batches of one epoch. It is a snapshot:
// batch sizes changed after it was built only affect the next epoch.
type Schedule []Entry

// Options fix the behaviour of a Sampler.
type Options struct {
	Shuffle  bool
	DropLast bool
	Seed     int64
	// Replicas is the number of data parallel processes, at least 1.
	Replicas int
	// Rank is this process' position among the replicas.
	Rank int
}

// Sampler yields the batches of an epoch.
type Sampler struct {
	bins  map[int][]int
	keys  []int
	sizes Sizes
	opts  Options

	forced    bool
	forceBin  int
	forceSize int
}

// New returns a sampler over bins. bins is not copied and must not change
// while the sampler is in use. Replicas below 1 mean a single process. The
// caller validates Rank: New panics when it lies outside [0, Replicas), as
// two processes would otherwise train the same shard.
func New(bins map[int][]int, sizes Sizes, opts Options) *Sampler {
	if opts.Replicas < 1 {
		opts.Replicas = 1
	}
	if opts.Rank < 0 || opts.Rank >= opts.Replicas {
		panic(fmt.Sprintf("sampler: rank %d outside %d replicas", opts.Rank, opts.Replicas))
	}
	keys := make([]int, 0, len(bins))
	for k := range bins {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return &Sampler{bins: bins, keys: keys, sizes: sizes, opts: opts}
}

// Force restricts the sampler to a single bin at a fixed batch size. With a
// forced bin incomplete batches are never dropped.
func (s *Sampler) Force(bin, size int) {
	s.forced = true
	s.forceBin = bin
	s.forceSize = size
}

// ProbeBatch forces bin and clamps size to the number of samples in it.
// It returns the size actually used.
func (s *Sampler) ProbeBatch(bin, size int) int {
	if n := len(s.bins[bin]); n < size {
		size = n
	}
	s.Force(bin, size)
	return size
}

// BatchSize is the effective batch size of bin.
func (s *Sampler) BatchSize(bin int) int {
	if s.forced {
		return s.forceSize
	}
	if s.sizes == nil {
		return 1
	}
	return s.sizes.Get(bin)
}

func (s *Sampler) dropLast() bool {
	return s.opts.DropLast && !s.forced
}

// order returns the bins to visit in the given epoch.
func (s *Sampler) order(epoch int) []int {
	if s.forced {
		return []int{s.forceBin}
	}
	if !s.opts.Shuffle {
		return s.keys
	}
	rng := rand.New(rand.NewSource(s.opts.Seed + int64(epoch)))
	perm := rng.Perm(len(s.keys))
	out := make([]int, len(perm))
	for i, p := range perm {
		out[i] = s.keys[p]
	}
	return out
}

// shardSize is the number of positions of a bin of n samples given to one replica.
func (s *Sampler) shardSize(n int) int {
	r := s.opts.Replicas
	if s.dropLast() {
		return n / r
	}
	return (n + r - 1) / r
}

// shard returns this replica's part of bin, reshuffled per epoch when
// shuffling. Without drop last the bin is padded by wrapping around so every
// replica gets the same number of samples.
func (s *Sampler) shard(bin, epoch int) []int {
	members := s.bins[bin]
	n := len(members)
	if n == 0 {
		return nil
	}
	positions := make([]int, n)
	for i := range positions {
		positions[i] = i
	}
	if s.opts.Shuffle {
		rng := rand.New(rand.NewSource(s.opts.Seed + int64(epoch)))
		positions = rng.Perm(n)
	}
	r := s.opts.Replicas
	total := s.shardSize(n) * r
	if total < n {
		positions = positions[:total]
	}
	for len(positions) < total {
		need := total - len(positions)
		if need > n {
			need = n
		}
		positions = append(positions, positions[:need]...)
	}
	out := make([]int, 0, total/r)
	for i := s.opts.Rank; i < total; i += r {
		out = append(out, members[positions[i]])
	}
	return out
}

// Iterate yields the batches of epoch in visiting order until yield returns false.
func (s *Sampler) Iterate(epoch int, yield func(Entry) bool) {
	for _, bin := range s.order(epoch) {
		size := s.BatchSize(bin)
		if size <= 0 {
			continue
		}
		shard := s.shard(bin, epoch)
		for start := 0; start < len(shard); start += size {
			end := start + size
			if end > len(shard) {
				if s.dropLast() {
					break
				}
				end = len(shard)
			}
			if !yield(Entry{Bin: bin, Indices: shard[start:end]}) {
				return
			}
		}
	}
}

// Epoch materialises the schedule of epoch.
func (s *Sampler) Epoch(epoch int) Schedule {
	var out Schedule
	s.Iterate(epoch, func(e Entry) bool {
		out = append(out, e)
		return true
	})
	return out
}

// Len is the number of batches an epoch yields on this replica. It does not
// walk the schedule.
func (s *Sampler) Len() int {
	total := 0
	visit := s.keys
	if s.forced {
		visit = []int{s.forceBin}
	}
	for _, bin := range visit {
		size := s.BatchSize(bin)
		if size <= 0 {
			continue
		}
		shard := s.shardSize(len(s.bins[bin]))
		total += shard / size
		if shard%size != 0 && !s.dropLast() {
			total++
		}
	}
	return total
}
