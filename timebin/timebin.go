// Package timebin quantizes audio durations into discrete time bins so that
// batches contain samples of similar length.
package timebin

import "sort"

const (
	// Hop is the number of 24 kHz wave samples per frame.
	Hop = 300
	// Offset is the number of frames below which a sample has no bin.
	Offset = 20
	// Width is the number of frames covered by one bin.
	Width = 20
	// SampleRate is the rate every duration is expressed in.
	SampleRate = 24000
)

// None marks a sample that is too short to be binned.
const None = -1

// Bin returns the time bin of a wave that is sampleCount samples long,
// or None if it is shorter than Offset frames.
func Bin(sampleCount int) int {
	frames := sampleCount / Hop
	if frames < Offset {
		return None
	}
	return (frames - Offset) / Width
}

// FrameCount returns the number of frames a sample of the bin is padded to.
// It is never smaller than the frame count of any sample in the bin.
func FrameCount(bin int) int {
	return bin*Width + Width + 2*Offset
}

// PaddedSamples returns the wave length in samples of a padded sample of the bin.
func PaddedSamples(bin int) int {
	return FrameCount(bin) * Hop
}

// FromPadded recovers the bin from a padded wave length.
func FromPadded(samples int) int {
	frames := samples / Hop
	if frames < Width+2*Offset {
		return None
	}
	return (frames - Width - 2*Offset) / Width
}

// Seconds is the nominal audio length of the bin, used in log lines.
func Seconds(bin int) float64 {
	return float64(bin)*0.25 + 0.25
}

// Group maps each bin to the ordered indices of the samples that fall in it.
// Samples of length zero or below the minimum are left out.
func Group(durations []int) map[int][]int {
	bins := make(map[int][]int)
	for i, d := range durations {
		b := Bin(d)
		if b == None {
			continue
		}
		bins[b] = append(bins[b], i)
	}
	return bins
}

// Sorted returns the bin ids in increasing duration order.
func Sorted(bins map[int][]int) []int {
	keys := make([]int, 0, len(bins))
	for k := range bins {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
