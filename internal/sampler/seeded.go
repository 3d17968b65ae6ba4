package sampler

import (
	randv2 "math/rand/v2"
)

// Seeded owns one generator and distribution per slot, like Local, but
// every call reseeds the slot's generator from the entry identifier and
// clears the distribution's held state before drawing. The draw for an
// entry is then a pure function of (base seed, entry): worker count, slot
// assignment and processing order cannot change it.
//
// The Reset call is load-bearing. The polar method holds a second value
// between draws, and reseeding the generator does not clear it. Skip the
// Reset and that held value, computed under some earlier entry's seed,
// would be returned for the current entry, quietly tying the output back
// to processing order.
type Seeded struct {
	seed  uint64
	slots []*seededState
	mean  float64
	sd    float64
}

type seededState struct {
	pcg  *randv2.PCG
	rng  *randv2.Rand
	dist Normal
}

// NewSeeded returns the reseeding deterministic variant.
func NewSeeded(opts Options) *Seeded {
	return &Seeded{
		seed:  opts.Seed,
		slots: make([]*seededState, opts.Slots),
		mean:  opts.Mean,
		sd:    opts.StdDev,
	}
}

// Name implements Sampler.
func (s *Seeded) Name() string { return KindSeeded }

// Sample reseeds slot's generator for entry, resets the distribution and
// draws once.
func (s *Seeded) Sample(slot int, entry uint64) float64 {
	st := s.slots[slot]
	if st == nil {
		pcg := randv2.NewPCG(0, 0)
		st = &seededState{
			pcg:  pcg,
			rng:  randv2.New(pcg),
			dist: Normal{Mean: s.mean, StdDev: s.sd},
		}
		s.slots[slot] = st
	}
	st.dist.Reset()
	st.pcg.Seed(s.seed, mix64(entry))
	return st.dist.Sample(st.rng)
}

// Fresh implements the same (base seed, entry) to value mapping as Seeded
// by constructing a new generator and distribution for every call and
// discarding both after one draw. Nothing survives between calls, so there
// is no state to reset; the cost is a construction per entry instead of one
// per slot. Seeded and Fresh agree value for value.
type Fresh struct {
	seed uint64
	mean float64
	sd   float64
}

// NewFresh returns the construct-per-entry deterministic variant.
func NewFresh(opts Options) *Fresh {
	return &Fresh{seed: opts.Seed, mean: opts.Mean, sd: opts.StdDev}
}

// Name implements Sampler.
func (f *Fresh) Name() string { return KindFresh }

// Sample builds a throwaway generator for entry and draws once. The slot
// index is ignored.
func (f *Fresh) Sample(_ int, entry uint64) float64 {
	rng := randv2.New(randv2.NewPCG(f.seed, mix64(entry)))
	dist := Normal{Mean: f.mean, StdDev: f.sd}
	return dist.Sample(rng)
}
