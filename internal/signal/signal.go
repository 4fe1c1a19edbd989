// Package signal provides the numeric primitives shared by the gait
// analysis components: zero-crossing detection, baseline removal,
// zero-phase Butterworth filtering, moving-window RMS and median
// denoising. All functions are pure and operate on materialized slices.
package signal

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// RisingZeroCross returns the indices i where sig[i] <= 0 and sig[i+1] > 0,
// sorted ascending. Empty if there are no crossings.
func RisingZeroCross(sig []float64) []int {
	var out []int
	for i := 0; i+1 < len(sig); i++ {
		if sig[i] <= 0 && sig[i+1] > 0 {
			out = append(out, i)
		}
	}
	return out
}

// FallingZeroCross returns the indices i where sig[i] >= 0 and sig[i+1] < 0,
// sorted ascending.
func FallingZeroCross(sig []float64) []int {
	var out []int
	for i := 0; i+1 < len(sig); i++ {
		if sig[i] >= 0 && sig[i+1] < 0 {
			out = append(out, i)
		}
	}
	return out
}

// Baseline subtracts the resting (near-zero-force) level from sig, so that
// downstream thresholds operate on load relative to "no contact" rather
// than absolute sensor offset. The estimate is the mean of the samples at
// or below the 10th percentile, which is insensitive to the high-force
// region.
func Baseline(sig []float64) []float64 {
	out := make([]float64, len(sig))
	if len(sig) == 0 {
		return out
	}
	sorted := make([]float64, len(sig))
	copy(sorted, sig)
	sort.Float64s(sorted)
	q := stat.Quantile(0.10, stat.Empirical, sorted, nil)

	var sum float64
	var n int
	for _, v := range sig {
		if v <= q {
			sum += v
			n++
		}
	}
	level := 0.0
	if n > 0 {
		level = sum / float64(n)
	}
	for i, v := range sig {
		out[i] = v - level
	}
	return out
}

// MovingRMS computes a centered moving-window root-mean-square of data.
// The output has the same length as the input; edge windows are truncated,
// not padded.
func MovingRMS(data []float64, window int) []float64 {
	out := make([]float64, len(data))
	if window < 1 {
		window = 1
	}
	half := window / 2
	for i := range data {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + half + 1
		if hi > len(data) {
			hi = len(data)
		}
		var sum float64
		for _, v := range data[lo:hi] {
			sum += v * v
		}
		out[i] = math.Sqrt(sum / float64(hi-lo))
	}
	return out
}

// MedianFilter applies a median filter with the given odd kernel size.
// Edges are zero-padded, matching the behavior the force-trace denoising
// step was tuned against.
func MedianFilter(data []float64, kernel int) []float64 {
	out := make([]float64, len(data))
	if kernel < 1 {
		kernel = 1
	}
	if kernel%2 == 0 {
		kernel++
	}
	half := kernel / 2
	buf := make([]float64, kernel)
	for i := range data {
		for k := 0; k < kernel; k++ {
			j := i - half + k
			if j < 0 || j >= len(data) {
				buf[k] = 0
			} else {
				buf[k] = data[j]
			}
		}
		sort.Float64s(buf)
		out[i] = buf[half]
	}
	return out
}
