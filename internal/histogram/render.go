package histogram

import (
	"fmt"
	"io"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"
)

const barWidth = 40

// Render writes a terminal view of h with at most rows lines, each line
// aggregating a band of consecutive bins. Bars scale to the widest band.
// rows values below 1 fall back to 40.
func (h *Hist) Render(w io.Writer, rows int) error {
	return h.render(w, rows, nil)
}

// RenderWithReference is Render plus a trailing column with the share of a
// normal distribution with the given mean and standard deviation expected
// in each band, for checking the shape against the target by eye.
func (h *Hist) RenderWithReference(w io.Writer, rows int, mean, stddev float64) error {
	ref := distuv.Normal{Mu: mean, Sigma: stddev}
	return h.render(w, rows, &ref)
}

func (h *Hist) render(w io.Writer, rows int, ref *distuv.Normal) error {
	if rows < 1 {
		rows = 40
	}
	if rows > len(h.bins) {
		rows = len(h.bins)
	}
	group := (len(h.bins) + rows - 1) / rows

	type band struct {
		lo, hi float64
		count  uint64
	}
	bands := make([]band, 0, rows)
	var widest uint64
	for i := 0; i < len(h.bins); i += group {
		j := i + group
		if j > len(h.bins) {
			j = len(h.bins)
		}
		var c uint64
		for _, n := range h.bins[i:j] {
			c += n
		}
		lo, _ := h.BinEdges(i)
		_, hi := h.BinEdges(j - 1)
		bands = append(bands, band{lo: lo, hi: hi, count: c})
		if c > widest {
			widest = c
		}
	}

	if _, err := fmt.Fprintf(w, "entries=%d mean=%.3f stddev=%.3f underflow=%d overflow=%d\n",
		h.n, h.Mean(), h.StdDev(), h.underflow, h.overflow); err != nil {
		return err
	}
	for _, b := range bands {
		bar := 0
		if widest > 0 {
			bar = int(float64(b.count) / float64(widest) * barWidth)
		}
		share := 0.0
		if h.n > 0 {
			share = float64(b.count) / float64(h.n) * 100
		}
		line := fmt.Sprintf("[%7.3f, %7.3f) %9d |%-*s| %5.1f%%",
			b.lo, b.hi, b.count, barWidth, strings.Repeat("#", bar), share)
		if ref != nil {
			expect := (ref.CDF(b.hi) - ref.CDF(b.lo)) * 100
			line += fmt.Sprintf("  (expect %5.1f%%)", expect)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
