package dataset

import "github.com/pkg/errors"

import "github.com/neurlang/stylish/timebin"

// Batch is a collated group of samples from one time bin. Every wave is
// centre padded to timebin.PaddedSamples(Bin).
type Batch struct {
	Bin      int
	Indices  []int
	Waves    [][]float32
	Texts    []string
	Speakers []int
	Paths    []string
}

// Size is the number of samples in the batch.
func (b *Batch) Size() int {
	return len(b.Indices)
}

// PaddedBin recovers the time bin from the padded wave length.
func (b *Batch) PaddedBin() int {
	if len(b.Waves) == 0 {
		return b.Bin
	}
	return timebin.FromPadded(len(b.Waves[0]))
}

// Collate loads the samples at indices and pads them to their common bin.
func (d *Dataset) Collate(indices []int) (*Batch, error) {
	if len(indices) == 0 {
		return nil, errors.New("empty batch indices")
	}
	bin := timebin.Bin(d.Duration(indices[0]))
	if bin == timebin.None {
		return nil, errors.Errorf("sample %d has no time bin", indices[0])
	}
	b := &Batch{
		Bin:      bin,
		Indices:  append([]int(nil), indices...),
		Waves:    make([][]float32, len(indices)),
		Texts:    make([]string, len(indices)),
		Speakers: make([]int, len(indices)),
		Paths:    make([]string, len(indices)),
	}
	size := timebin.PaddedSamples(bin)
	for j, i := range indices {
		if i < 0 || i >= len(d.Samples) {
			return nil, errors.Errorf("index %d out of range [0, %d)", i, len(d.Samples))
		}
		wave, err := d.Reader.Wave(d.path(i))
		if err != nil {
			return nil, errors.Wrapf(err, "loading sample %d", i)
		}
		if len(wave) > size {
			return nil, errors.Errorf("sample %d is %d samples long, bin %d holds %d", i, len(wave), bin, size)
		}
		b.Waves[j] = Pad(wave, size)
		b.Texts[j] = d.Samples[i].Text
		b.Speakers[j] = d.Samples[i].Speaker
		b.Paths[j] = d.Samples[i].Path
	}
	return b, nil
}

// Pad centres wave in a zero buffer of size samples.
func Pad(wave []float32, size int) []float32 {
	out := make([]float32, size)
	start := (size - len(wave)) / 2
	copy(out[start:], wave)
	return out
}
