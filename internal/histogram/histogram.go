// Package histogram provides a fixed-bin one dimensional histogram with
// streaming moments, meant to be filled per worker and merged afterwards.
package histogram

import (
	"fmt"
	"math"
)

// Hist counts values over equal-width bins spanning [Min, Max). Values
// outside the range land in the underflow and overflow counters. The mean
// and standard deviation are computed from the raw stream, not from bin
// centers, so out-of-range values still contribute to the moments.
//
// Fill is not safe for concurrent use; give each worker its own Hist and
// Merge them once the workers are done.
type Hist struct {
	bins      []uint64
	min, max  float64
	width     float64
	underflow uint64
	overflow  uint64

	n     uint64
	sum   float64
	sumSq float64
}

// New returns an empty histogram with bins bins over [min, max). It panics
// when the binning is unusable, which is a programming error.
func New(bins int, min, max float64) *Hist {
	if bins < 1 {
		panic(fmt.Sprintf("histogram: bins must be positive, got %d", bins))
	}
	if !(min < max) {
		panic(fmt.Sprintf("histogram: need min < max, got [%g, %g)", min, max))
	}
	return &Hist{
		bins:  make([]uint64, bins),
		min:   min,
		max:   max,
		width: (max - min) / float64(bins),
	}
}

// Fill records one value.
func (h *Hist) Fill(x float64) {
	h.n++
	h.sum += x
	h.sumSq += x * x
	switch {
	case x < h.min:
		h.underflow++
	case x >= h.max:
		h.overflow++
	default:
		i := int((x - h.min) / h.width)
		// Guard against float rounding pushing x/width onto the top edge.
		if i >= len(h.bins) {
			i = len(h.bins) - 1
		}
		h.bins[i]++
	}
}

// Merge folds other into h. It panics when the binnings differ.
func (h *Hist) Merge(other *Hist) {
	if len(other.bins) != len(h.bins) || other.min != h.min || other.max != h.max {
		panic("histogram: merge with different binning")
	}
	for i, c := range other.bins {
		h.bins[i] += c
	}
	h.underflow += other.underflow
	h.overflow += other.overflow
	h.n += other.n
	h.sum += other.sum
	h.sumSq += other.sumSq
}

// Count returns the number of values filled, including out-of-range ones.
func (h *Hist) Count() uint64 { return h.n }

// Underflow returns the number of values below Min.
func (h *Hist) Underflow() uint64 { return h.underflow }

// Overflow returns the number of values at or above Max.
func (h *Hist) Overflow() uint64 { return h.overflow }

// Bins returns the number of bins.
func (h *Hist) Bins() int { return len(h.bins) }

// Min returns the lower edge of the first bin.
func (h *Hist) Min() float64 { return h.min }

// Max returns the upper edge of the last bin.
func (h *Hist) Max() float64 { return h.max }

// BinCount returns the count of bin i.
func (h *Hist) BinCount(i int) uint64 { return h.bins[i] }

// BinEdges returns the [lo, hi) edges of bin i.
func (h *Hist) BinEdges(i int) (lo, hi float64) {
	lo = h.min + float64(i)*h.width
	return lo, lo + h.width
}

// Counts returns a copy of the per-bin counts.
func (h *Hist) Counts() []uint64 {
	out := make([]uint64, len(h.bins))
	copy(out, h.bins)
	return out
}

// Mean returns the mean of all filled values, or 0 when empty.
func (h *Hist) Mean() float64 {
	if h.n == 0 {
		return 0
	}
	return h.sum / float64(h.n)
}

// StdDev returns the population standard deviation of all filled values,
// or 0 when empty.
func (h *Hist) StdDev() float64 {
	if h.n == 0 {
		return 0
	}
	m := h.Mean()
	v := h.sumSq/float64(h.n) - m*m
	if v < 0 {
		// Rounding can drive the variance of a constant stream slightly
		// negative.
		v = 0
	}
	return math.Sqrt(v)
}
