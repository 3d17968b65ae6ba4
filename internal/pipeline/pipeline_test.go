package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/statmix/samplegen/internal/sampler"
)

func runCaptured(t *testing.T, cfg *Config, kind string, seed uint64) *Result {
	t.Helper()
	s, err := sampler.New(kind, sampler.Options{Slots: cfg.Workers, Seed: seed, StdDev: 1})
	require.NoError(t, err)
	res, err := Run(context.Background(), cfg, s.Sample,
		Options{Bins: 100, HistMin: -4, HistMax: 4, Capture: true}, zap.NewNop())
	require.NoError(t, err)
	return res
}

func TestRunValidatesConfig(t *testing.T) {
	_, err := Run(context.Background(), &Config{Entries: 10},
		func(int, uint64) float64 { return 0 }, Options{}, zap.NewNop())
	require.Error(t, err)
}

func TestSeededPassIsDeterministicAcrossWorkerCounts(t *testing.T) {
	const entries = 10_000
	one := runCaptured(t, &Config{Entries: entries, Workers: 1, BatchSize: 128}, sampler.KindSeeded, 42)
	four := runCaptured(t, &Config{Entries: entries, Workers: 4, BatchSize: 128}, sampler.KindSeeded, 42)

	require.Equal(t, one.Samples, four.Samples)
	assert.Equal(t, one.Hist.Counts(), four.Hist.Counts())
	assert.Equal(t, uint64(entries), four.Entries)
}

func TestBatchSizeDoesNotChangeValues(t *testing.T) {
	const entries = 5_000
	small := runCaptured(t, &Config{Entries: entries, Workers: 4, BatchSize: 1}, sampler.KindSeeded, 7)
	big := runCaptured(t, &Config{Entries: entries, Workers: 4, BatchSize: 1000}, sampler.KindSeeded, 7)

	assert.Equal(t, small.Samples, big.Samples)
}

func TestLocalPassesDiffer(t *testing.T) {
	cfg := &Config{Entries: 1_000, Workers: 4, BatchSize: 64}
	a := runCaptured(t, cfg, sampler.KindLocal, 0)
	b := runCaptured(t, cfg, sampler.KindLocal, 0)

	assert.NotEqual(t, a.Samples, b.Samples, "free-running generators should not reproduce a pass")
}

func TestRunEmptyPass(t *testing.T) {
	res, err := Run(context.Background(), &Config{Entries: 0, Workers: 4, BatchSize: 16},
		func(int, uint64) float64 { return 0 }, Options{}, zap.NewNop())
	require.NoError(t, err)
	assert.Zero(t, res.Entries)
	assert.Zero(t, res.Hist.Count())
}

func TestRunMoreWorkersThanEntries(t *testing.T) {
	res := runCaptured(t, &Config{Entries: 3, Workers: 8, BatchSize: 16}, sampler.KindSeeded, 1)
	assert.Equal(t, uint64(3), res.Entries)
	assert.Len(t, res.Samples, 3)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := Run(ctx, &Config{Entries: 1_000_000, Workers: 2, BatchSize: 64},
		func(int, uint64) float64 { return 0 }, Options{}, zap.NewNop())
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.Less(t, res.Entries, uint64(1_000_000))
}

func TestRunStatisticalShape(t *testing.T) {
	const entries = 200_000
	s, err := sampler.New(sampler.KindSeeded, sampler.Options{Slots: 4, Seed: 42, StdDev: 1})
	require.NoError(t, err)

	res, err := Run(context.Background(), &Config{Entries: entries, Workers: 4, BatchSize: 4096},
		s.Sample, Options{}, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, uint64(entries), res.Hist.Count())
	assert.InDelta(t, 0.0, res.Hist.Mean(), 0.02)
	assert.InDelta(t, 1.0, res.Hist.StdDev(), 0.02)

	// Almost everything lands inside the default [-4, 4) range.
	out := res.Hist.Underflow() + res.Hist.Overflow()
	assert.Less(t, float64(out)/float64(entries), 0.001)
}

func TestRunHistogramMatchesCapture(t *testing.T) {
	res := runCaptured(t, &Config{Entries: 20_000, Workers: 4, BatchSize: 512}, sampler.KindSeeded, 5)

	var sum float64
	for _, x := range res.Samples {
		sum += x
	}
	assert.InDelta(t, sum/float64(len(res.Samples)), res.Hist.Mean(), 1e-6)
}
