package dataset

import "os"

import "github.com/go-audio/wav"
import "github.com/pkg/errors"

import "github.com/neurlang/stylish/timebin"

// AudioReader gives access to the audio behind a sample path.
type AudioReader interface {
	// Samples returns the wave length in samples at timebin.SampleRate.
	Samples(path string) (int, error)
	// Wave returns the first channel at timebin.SampleRate, scaled to [-1, 1].
	Wave(path string) ([]float32, error)
}

// WavReader reads PCM wav files.
type WavReader struct{}

func (WavReader) Samples(path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	d := wav.NewDecoder(file)
	if !d.IsValidFile() {
		return 0, errors.Errorf("%s is not a valid wav file", path)
	}
	if err := d.FwdToPCM(); err != nil {
		return 0, errors.Wrapf(err, "seeking pcm chunk in %s", path)
	}
	frameBytes := int64(d.NumChans) * int64(d.BitDepth/8)
	if frameBytes == 0 {
		return 0, errors.Errorf("%s: bad format (%d channels, %d bits)", path, d.NumChans, d.BitDepth)
	}
	n := int(d.PCMLen() / frameBytes)
	if d.SampleRate != timebin.SampleRate && d.SampleRate > 0 {
		n = int(int64(n) * timebin.SampleRate / int64(d.SampleRate))
	}
	return n, nil
}

func (WavReader) Wave(path string) ([]float32, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	d := wav.NewDecoder(file)
	if !d.IsValidFile() {
		return nil, errors.Errorf("%s is not a valid wav file", path)
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s", path)
	}
	channels := 1
	rate := int(d.SampleRate)
	if buf.Format != nil {
		if buf.Format.NumChannels > 0 {
			channels = buf.Format.NumChannels
		}
		if buf.Format.SampleRate > 0 {
			rate = buf.Format.SampleRate
		}
	}
	depth := buf.SourceBitDepth
	if depth == 0 {
		depth = int(d.BitDepth)
	}
	scale := float32(int64(1) << uint(depth-1))

	wave := make([]float32, len(buf.Data)/channels)
	for i := range wave {
		wave[i] = float32(buf.Data[i*channels]) / scale
	}
	if rate != timebin.SampleRate {
		wave = Resample(wave, rate, timebin.SampleRate)
	}
	return wave, nil
}

// Resample converts wave from one rate to another by linear interpolation.
func Resample(wave []float32, from, to int) []float32 {
	if from == to || from <= 0 || len(wave) == 0 {
		return wave
	}
	n := int(int64(len(wave)) * int64(to) / int64(from))
	out := make([]float32, n)
	step := float64(from) / float64(to)
	for i := range out {
		pos := float64(i) * step
		j := int(pos)
		if j+1 >= len(wave) {
			out[i] = wave[len(wave)-1]
			continue
		}
		frac := float32(pos - float64(j))
		out[i] = wave[j]*(1-frac) + wave[j+1]*frac
	}
	return out
}
