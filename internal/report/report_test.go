package report

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/statmix/samplegen/internal/histogram"
	"github.com/statmix/samplegen/internal/pipeline"
	"github.com/statmix/samplegen/internal/sampler"
)

func TestBuildFromPass(t *testing.T) {
	s, err := sampler.New(sampler.KindSeeded, sampler.Options{Slots: 2, Seed: 1, StdDev: 1})
	require.NoError(t, err)

	res, err := pipeline.Run(context.Background(),
		&pipeline.Config{Entries: 50_000, Workers: 2, BatchSize: 1024},
		s.Sample, pipeline.Options{Capture: true}, zap.NewNop())
	require.NoError(t, err)

	sum := Build(sampler.KindSeeded, "", res, 0, 1)

	assert.NotEmpty(t, sum.RunID)
	assert.Equal(t, sampler.KindSeeded, sum.Sampler)
	assert.Equal(t, sampler.KindSeeded, sum.Label)
	assert.Equal(t, uint64(50_000), sum.Entries)
	assert.Equal(t, 2, sum.Workers)
	assert.True(t, sum.Captured)
	assert.LessOrEqual(t, sum.Min, sum.Median)
	assert.LessOrEqual(t, sum.Median, sum.Max)
	assert.InDelta(t, 0, sum.Mean, 0.05)
	assert.Greater(t, sum.PValue, 0.0)
	assert.LessOrEqual(t, sum.PValue, 1.0)
}

func TestBuildZScoreDetectsShiftedMean(t *testing.T) {
	h := histogram.New(10, -4, 4)
	for i := 0; i < 100; i++ {
		h.Fill(1.0)
	}
	res := &pipeline.Result{Hist: h, Entries: 100, Workers: 1}

	sum := Build("shared", "", res, 0, 1)
	assert.InDelta(t, 10.0, sum.ZScore, 1e-9)
	assert.Less(t, sum.PValue, 1e-6)
}

func TestBuildDistinctRunIDs(t *testing.T) {
	h := histogram.New(10, -4, 4)
	res := &pipeline.Result{Hist: h}
	a := Build("local", "", res, 0, 1)
	b := Build("local", "", res, 0, 1)
	assert.NotEqual(t, a.RunID, b.RunID)
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	err := WriteTable(&buf, 0, 1,
		Summary{Sampler: "shared", Label: "Single thread (no MT)", Mean: 0.0004, StdDev: 0.9996},
		Summary{Sampler: "local", Mean: -0.0002, StdDev: 1.0003},
	)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[1], "Theoretical")
	assert.Contains(t, lines[1], "0.000 +- 1.000")
	assert.Contains(t, lines[2], "Single thread (no MT)")
	assert.Contains(t, lines[3], "local")
}

func TestWriteDetails(t *testing.T) {
	var buf bytes.Buffer
	sum := Summary{RunID: "abc", Sampler: "seeded", Entries: 10, Workers: 2, Captured: true, Min: -1, Max: 1}
	require.NoError(t, WriteDetails(&buf, sum))
	out := buf.String()
	assert.Contains(t, out, "run      : abc")
	assert.Contains(t, out, "min")
	assert.Contains(t, out, "z-score")

	buf.Reset()
	sum.Captured = false
	require.NoError(t, WriteDetails(&buf, sum))
	assert.NotContains(t, buf.String(), "min")
}

func TestWriteJSONRoundTrip(t *testing.T) {
	in := []Summary{{RunID: "r1", Sampler: "fresh", Entries: 5, Workers: 1, Mean: 0.1, StdDev: 0.9}}
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, in...))

	var out []Summary
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, in, out)
}
