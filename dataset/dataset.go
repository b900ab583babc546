// Package dataset loads a train list, measures every sample's wave length and
// collates padded batches of samples that share a time bin.
package dataset

import "context"
import "log"
import "path/filepath"
import "sync"

import "github.com/pkg/errors"

import "github.com/neurlang/stylish/parallel"
import "github.com/neurlang/stylish/timebin"

// Dataset is the sample collaborator of the trainer.
type Dataset struct {
	Samples []Sample
	Root    string
	Reader  AudioReader
	Cache   DurationCache
	Workers int
	Logger  *log.Logger

	durations []int
}

// New wraps samples whose paths are relative to root. An empty sample list
// is a configuration failure.
func New(samples []Sample, root string) (*Dataset, error) {
	if len(samples) == 0 {
		return nil, errors.New("train list is empty")
	}
	return &Dataset{
		Samples: samples,
		Root:    root,
		Reader:  WavReader{},
		Workers: parallel.Workers(),
	}, nil
}

// Len is the number of samples.
func (d *Dataset) Len() int {
	return len(d.Samples)
}

func (d *Dataset) path(i int) string {
	p := d.Samples[i].Path
	if d.Root == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(d.Root, p)
}

// Duration returns the wave length of sample i in samples. Durations must
// have been computed with TimeBins first.
func (d *Dataset) Duration(i int) int {
	if i < 0 || i >= len(d.durations) {
		return 0
	}
	return d.durations[i]
}

// Durations measures every sample. This opens every audio file once, an O(N)
// disk scan; entries already in the cache are not reopened and newly measured
// ones are written back.
func (d *Dataset) Durations(ctx context.Context) ([]int, error) {
	if d.durations != nil {
		return d.durations, nil
	}
	cached := map[string]int{}
	if d.Cache != nil {
		c, err := d.Cache.Load(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "loading duration cache")
		}
		cached = c
	}

	durations := make([]int, len(d.Samples))
	var mu sync.Mutex
	fresh := map[string]int{}
	d.logf("Calculating sample lengths")
	err := parallel.ForEach(len(d.Samples), d.Workers, func(i int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		key := d.Samples[i].Path
		mu.Lock()
		n, ok := cached[key]
		mu.Unlock()
		if !ok {
			var err error
			n, err = d.Reader.Samples(d.path(i))
			if err != nil {
				return errors.Wrapf(err, "sample %d", i)
			}
			mu.Lock()
			fresh[key] = n
			mu.Unlock()
		}
		durations[i] = n
		return nil
	})
	if err != nil {
		return nil, err
	}
	d.logf("Finished sample lengths (%d measured, %d cached)", len(fresh), len(d.Samples)-len(fresh))

	if d.Cache != nil && len(fresh) > 0 {
		for k, v := range fresh {
			cached[k] = v
		}
		if err := d.Cache.Save(ctx, cached); err != nil {
			return nil, errors.Wrap(err, "saving duration cache")
		}
	}
	d.durations = durations
	return durations, nil
}

// TimeBins groups the sample indices by time bin.
func (d *Dataset) TimeBins(ctx context.Context) (map[int][]int, error) {
	durations, err := d.Durations(ctx)
	if err != nil {
		return nil, err
	}
	return timebin.Group(durations), nil
}

func (d *Dataset) logf(format string, args ...interface{}) {
	if d.Logger != nil {
		d.Logger.Printf(format, args...)
	}
}
