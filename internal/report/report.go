// Package report turns pipeline results into the summaries and console
// tables that samplegen prints and records.
package report

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/statmix/samplegen/internal/pipeline"
)

// Summary describes one pipeline pass.
type Summary struct {
	RunID   string `json:"run_id"`
	Sampler string `json:"sampler"`
	// Label is the human-readable name used in tables. Defaults to the
	// sampler name when empty.
	Label   string  `json:"label,omitempty"`
	Entries uint64  `json:"entries"`
	Workers int     `json:"workers"`
	Mean    float64 `json:"mean"`
	StdDev  float64 `json:"std_dev"`
	// Captured reports whether the pass recorded its samples; Min, Max
	// and Median are only meaningful when it did.
	Captured bool    `json:"captured,omitempty"`
	Min      float64 `json:"min,omitempty"`
	Max      float64 `json:"max,omitempty"`
	Median   float64 `json:"median,omitempty"`
	// ZScore and PValue test the observed mean against the target mean
	// under the target standard deviation.
	ZScore  float64       `json:"z_score"`
	PValue  float64       `json:"p_value"`
	Elapsed time.Duration `json:"elapsed_ns"`
}

// Build summarizes res against the target distribution N(mean, stddev).
// The run id is freshly generated.
func Build(sampler, label string, res *pipeline.Result, mean, stddev float64) Summary {
	if label == "" {
		label = sampler
	}
	s := Summary{
		RunID:   uuid.NewString(),
		Sampler: sampler,
		Label:   label,
		Entries: res.Entries,
		Workers: res.Workers,
		Mean:    res.Hist.Mean(),
		StdDev:  res.Hist.StdDev(),
		Elapsed: res.Elapsed,
	}
	if res.Entries > 0 && stddev > 0 {
		se := stddev / math.Sqrt(float64(res.Entries))
		s.ZScore = (s.Mean - mean) / se
		s.PValue = 2 * distuv.UnitNormal.CDF(-math.Abs(s.ZScore))
	}
	if len(res.Samples) > 0 {
		s.Captured = true
		if v, err := stats.Min(res.Samples); err == nil {
			s.Min = v
		}
		if v, err := stats.Max(res.Samples); err == nil {
			s.Max = v
		}
		if v, err := stats.Median(res.Samples); err == nil {
			s.Median = v
		}
	}
	return s
}
