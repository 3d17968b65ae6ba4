package sampler

import (
	randv2 "math/rand/v2"
)

// Local owns one generator and distribution per slot, created on the slot's
// first call and seeded from the entropy source. Slots never touch each
// other's state, so concurrent use is safe and the output distribution is
// exact. The values are not reproducible: which slot handles an entry, and
// how many draws that slot made beforehand, are scheduling accidents that
// change from run to run.
type Local struct {
	slots []*slotState
	mean  float64
	sd    float64
}

type slotState struct {
	rng  *randv2.Rand
	dist Normal
}

// NewLocal returns the worker-local variant with opts.Slots slots.
func NewLocal(opts Options) *Local {
	return &Local{
		slots: make([]*slotState, opts.Slots),
		mean:  opts.Mean,
		sd:    opts.StdDev,
	}
}

// Name implements Sampler.
func (l *Local) Name() string { return KindLocal }

// Sample draws from the generator owned by slot. The entry identifier is
// ignored; the slot's stream just keeps running.
func (l *Local) Sample(slot int, _ uint64) float64 {
	st := l.slots[slot]
	if st == nil {
		st = &slotState{
			rng:  newEntropyRand(),
			dist: Normal{Mean: l.mean, StdDev: l.sd},
		}
		l.slots[slot] = st
	}
	return st.dist.Sample(st.rng)
}
