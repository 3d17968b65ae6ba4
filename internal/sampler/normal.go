package sampler

import (
	"math"
	"math/rand/v2"
)

// Normal draws normally distributed values from a uniform source using the
// Marsaglia polar method. The method produces values in pairs, so every
// other draw is served from a held-back second value rather than from the
// source. Reseeding the source does not clear that held value; callers that
// reseed between draws must call Reset first, every time, or the next draw
// returns a value computed under the previous seed.
type Normal struct {
	Mean   float64
	StdDev float64

	spare    float64
	hasSpare bool
}

// Sample returns one draw from N(Mean, StdDev) using r as the uniform
// source. Not safe for concurrent use.
func (n *Normal) Sample(r *rand.Rand) float64 {
	if n.hasSpare {
		n.hasSpare = false
		return n.Mean + n.StdDev*n.spare
	}
	for {
		u := 2*r.Float64() - 1
		v := 2*r.Float64() - 1
		s := u*u + v*v
		if s >= 1 || s == 0 {
			continue
		}
		f := math.Sqrt(-2 * math.Log(s) / s)
		n.spare = v * f
		n.hasSpare = true
		return n.Mean + n.StdDev*u*f
	}
}

// Reset discards the held second value, if any. After Reset the next Sample
// call draws from the source alone.
func (n *Normal) Reset() {
	n.hasSpare = false
}
