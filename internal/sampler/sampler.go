// Package sampler implements the generator ownership designs that samplegen
// compares: a single shared unsynchronized generator, worker-local
// free-running generators, and deterministic per-entry seeding.
package sampler

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// DefaultSeed is the base seed used by commands when none is supplied.
const DefaultSeed uint64 = 1

// Sampler variant names, as accepted on the command line.
const (
	KindShared = "shared"
	KindLocal  = "local"
	KindSeeded = "seeded"
	KindFresh  = "fresh"
)

// A Sampler produces one draw per work item. slot is the index of the
// calling worker in [0, Options.Slots); entry is the stable identifier of
// the work item. A slot is only ever driven by one goroutine at a time,
// while distinct slots may call concurrently. Whether the draw for an entry
// is reproducible across runs depends on the variant; see the constructors.
//
// Entry stability is the caller's responsibility: identifiers that change
// between runs void any reproducibility the variant offers.
type Sampler interface {
	Name() string
	Sample(slot int, entry uint64) float64
}

// Options configures a sampler.
type Options struct {
	// Slots is the number of worker slots that may call Sample.
	Slots int
	// Seed is the base seed for the deterministic variants. Zero is a
	// valid seed; commands substitute DefaultSeed before it gets here.
	Seed uint64
	// Mean and StdDev parameterize the target normal distribution.
	// A zero StdDev is replaced with 1.
	Mean   float64
	StdDev float64
}

func (o Options) normalized() Options {
	if o.StdDev == 0 {
		o.StdDev = 1
	}
	return o
}

func (o Options) validate() error {
	if o.Slots < 1 {
		return errors.New("slots must be positive")
	}
	if o.StdDev < 0 {
		return errors.New("stddev must not be negative")
	}
	return nil
}

var registry = map[string]func(Options) Sampler{
	KindShared: func(o Options) Sampler { return NewShared(o) },
	KindLocal:  func(o Options) Sampler { return NewLocal(o) },
	KindSeeded: func(o Options) Sampler { return NewSeeded(o) },
	KindFresh:  func(o Options) Sampler { return NewFresh(o) },
}

// New builds the named sampler variant.
func New(kind string, opts Options) (Sampler, error) {
	opts = opts.normalized()
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("sampler %q: %w", kind, err)
	}
	ctor, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("unknown sampler %q, must be one of: %s", kind, strings.Join(Kinds(), ", "))
	}
	return ctor(opts), nil
}

// Kinds returns the registered variant names in sorted order.
func Kinds() []string {
	kinds := make([]string, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
