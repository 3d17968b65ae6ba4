package sampler

import (
	"math"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUnknownKind(t *testing.T) {
	_, err := New("mersenne", Options{Slots: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown sampler")
}

func TestNewValidatesOptions(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"zero slots", Options{}},
		{"negative slots", Options{Slots: -1}},
		{"negative stddev", Options{Slots: 1, StdDev: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(KindSeeded, tt.opts)
			require.Error(t, err)
		})
	}
}

func TestKinds(t *testing.T) {
	assert.Equal(t, []string{"fresh", "local", "seeded", "shared"}, Kinds())
}

func TestSeededIsPureFunctionOfEntry(t *testing.T) {
	entries := []uint64{0, 1, 2, 3, 42, 1 << 40}

	first, err := New(KindSeeded, Options{Slots: 4, Seed: 99})
	require.NoError(t, err)
	second, err := New(KindSeeded, Options{Slots: 4, Seed: 99})
	require.NoError(t, err)

	got := make(map[uint64]float64, len(entries))
	for i, e := range entries {
		got[e] = first.Sample(i%4, e)
	}
	// Different slots, reverse order: the values must not move.
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		assert.Equal(t, got[e], second.Sample((i+3)%4, e), "entry %d", e)
	}
}

func TestSeededMatchesFresh(t *testing.T) {
	seeded, err := New(KindSeeded, Options{Slots: 2, Seed: 7})
	require.NoError(t, err)
	fresh, err := New(KindFresh, Options{Slots: 2, Seed: 7})
	require.NoError(t, err)

	for entry := uint64(0); entry < 512; entry++ {
		require.Equal(t, fresh.Sample(0, entry), seeded.Sample(int(entry%2), entry), "entry %d", entry)
	}
}

func TestSeededNoCarryoverBetweenEntries(t *testing.T) {
	ref, err := New(KindSeeded, Options{Slots: 1, Seed: 3})
	require.NoError(t, err)
	want := ref.Sample(0, 10)

	// Drawing other entries first on the same slot must not change entry 10.
	s, err := New(KindSeeded, Options{Slots: 1, Seed: 3})
	require.NoError(t, err)
	s.Sample(0, 9)
	s.Sample(0, 11)
	assert.Equal(t, want, s.Sample(0, 10))
}

func TestSeededSeedChangesValues(t *testing.T) {
	a, err := New(KindSeeded, Options{Slots: 1, Seed: 1})
	require.NoError(t, err)
	b, err := New(KindSeeded, Options{Slots: 1, Seed: 2})
	require.NoError(t, err)

	var same int
	for entry := uint64(0); entry < 64; entry++ {
		if a.Sample(0, entry) == b.Sample(0, entry) {
			same++
		}
	}
	assert.Zero(t, same, "different seeds should produce different streams")
}

func TestLocalIsNotReproducible(t *testing.T) {
	a, err := New(KindLocal, Options{Slots: 1})
	require.NoError(t, err)
	b, err := New(KindLocal, Options{Slots: 1})
	require.NoError(t, err)

	draw := func(s Sampler) []float64 {
		out := make([]float64, 8)
		for i := range out {
			out[i] = s.Sample(0, uint64(i))
		}
		return out
	}
	assert.NotEqual(t, draw(a), draw(b), "entropy-seeded streams should not repeat")
}

func TestLocalSlotsAreIndependent(t *testing.T) {
	l, err := New(KindLocal, Options{Slots: 2})
	require.NoError(t, err)

	var s0, s1 []float64
	for i := 0; i < 8; i++ {
		s0 = append(s0, l.Sample(0, uint64(i)))
		s1 = append(s1, l.Sample(1, uint64(i)))
	}
	assert.NotEqual(t, s0, s1)
}

func TestLocalConcurrentSlots(t *testing.T) {
	const slots = 8
	l, err := New(KindLocal, Options{Slots: slots})
	require.NoError(t, err)

	var wg sync.WaitGroup
	sums := make([]float64, slots)
	for slot := 0; slot < slots; slot++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			var sum float64
			for i := 0; i < 10_000; i++ {
				sum += l.Sample(slot, uint64(i))
			}
			sums[slot] = sum
		}(slot)
	}
	wg.Wait()

	for slot, sum := range sums {
		assert.False(t, math.IsNaN(sum), "slot %d", slot)
	}
}

func TestSharedSingleSlot(t *testing.T) {
	s, err := New(KindShared, Options{Slots: 1})
	require.NoError(t, err)

	const n = 200_000
	var sum, sumSq float64
	for i := 0; i < n; i++ {
		x := s.Sample(0, uint64(i))
		sum += x
		sumSq += x * x
	}
	mean := sum / n
	sd := math.Sqrt(sumSq/n - mean*mean)
	assert.InDelta(t, 0.0, mean, 0.02)
	assert.InDelta(t, 1.0, sd, 0.02)
}

// TestSharedConcurrentCorruption drives the shared variant from several
// goroutines at once. That is exactly the misuse the variant exists to
// demonstrate, and the race detector rightly flags it, so the test only
// runs when asked for explicitly:
//
//	SAMPLEGEN_RACE_DEMO=1 go test -run SharedConcurrent ./internal/sampler
func TestSharedConcurrentCorruption(t *testing.T) {
	if os.Getenv("SAMPLEGEN_RACE_DEMO") == "" {
		t.Skip("set SAMPLEGEN_RACE_DEMO=1 to run the data race demonstration")
	}

	s, err := New(KindShared, Options{Slots: 4})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for slot := 0; slot < 4; slot++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			for i := 0; i < 100_000; i++ {
				s.Sample(slot, uint64(i))
			}
		}(slot)
	}
	wg.Wait()
}

func TestEntropySeedsAreUnique(t *testing.T) {
	seen := make(map[uint64]struct{})
	for i := 0; i < 64; i++ {
		seen[entropySeed()] = struct{}{}
	}
	assert.Len(t, seen, 64)
}

func TestMix64(t *testing.T) {
	assert.Equal(t, mix64(1), mix64(1))
	assert.NotEqual(t, mix64(1), mix64(2))
	assert.NotZero(t, mix64(0))
}
