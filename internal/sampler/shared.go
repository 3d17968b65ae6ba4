package sampler

import (
	randv2 "math/rand/v2"
)

// Shared is a single generator and distribution used by every slot with no
// synchronization, seeded once from the entropy source. With one slot it is
// the plain single-threaded baseline. With more than one slot every call
// races on the generator and distribution state, which corrupts both the
// value stream and the internal state itself. There is deliberately no
// locked remedy here: the fix samplegen demonstrates is slot-confined
// state, not a mutex around shared state.
type Shared struct {
	rng  *randv2.Rand
	dist Normal
}

// NewShared returns the shared-generator variant.
func NewShared(opts Options) *Shared {
	return &Shared{
		rng:  newEntropyRand(),
		dist: Normal{Mean: opts.Mean, StdDev: opts.StdDev},
	}
}

// Name implements Sampler.
func (s *Shared) Name() string { return KindShared }

// Sample ignores slot and entry: every call advances the one shared stream.
func (s *Shared) Sample(int, uint64) float64 {
	return s.dist.Sample(s.rng)
}
