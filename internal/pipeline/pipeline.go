// Package pipeline fans a sampling function out over a pool of workers and
// aggregates the draws into a merged histogram.
package pipeline

import (
	"context"
	"sync"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/statmix/samplegen/internal/histogram"
)

// SampleFunc produces the value for one entry. slot identifies the calling
// worker; implementations may keep per-slot state but must not share
// mutable state across slots.
type SampleFunc func(slot int, entry uint64) float64

// Options control aggregation of one pass.
type Options struct {
	// Bins, HistMin and HistMax set the histogram binning. Zero values
	// fall back to 1000 bins over [-4, 4).
	Bins    int
	HistMin float64
	HistMax float64
	// Capture records every draw into Result.Samples, indexed by entry.
	// It allocates 8 bytes per entry, so keep it for verification-sized
	// passes.
	Capture bool
}

func (o Options) withDefaults() Options {
	if o.Bins == 0 {
		o.Bins = 1000
	}
	if o.HistMin == 0 && o.HistMax == 0 {
		o.HistMin, o.HistMax = -4, 4
	}
	return o
}

// Result is the aggregated outcome of one pass.
type Result struct {
	// Hist holds all draws from all workers.
	Hist *histogram.Hist
	// Samples holds every draw indexed by entry. Nil unless
	// Options.Capture was set; partially filled if the pass was cancelled.
	Samples []float64
	// Entries is the number of entries actually processed.
	Entries uint64
	// Workers is the pool size the pass ran with.
	Workers int
	// Elapsed is the wall time of the pass.
	Elapsed time.Duration
}

// Run processes entries 0 through cfg.Entries-1 with cfg.Workers workers,
// calling fn once per entry and filling one histogram per worker before
// merging them.
//
// Workers claim batches of entries from a shared cursor, so which worker
// handles which entries, and in what order, varies from run to run; fn must
// not rely on the assignment. Each worker calls fn with its own slot index
// only, which keeps per-slot state in fn race free.
//
// On cancellation Run returns ctx.Err() together with the partial result.
func Run(ctx context.Context, cfg *Config, fn SampleFunc, opts Options, logger *zap.Logger) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	var samples []float64
	if opts.Capture {
		samples = make([]float64, cfg.Entries)
	}

	hists := make([]*histogram.Hist, cfg.Workers)
	cursor := atomic.NewUint64(0)
	processed := atomic.NewUint64(0)

	logger.Debug("starting pass",
		zap.Uint64("entries", cfg.Entries),
		zap.Int("workers", cfg.Workers),
		zap.Uint64("batch_size", cfg.BatchSize),
	)

	begin := time.Now()
	var wg sync.WaitGroup
	for slot := 0; slot < cfg.Workers; slot++ {
		wg.Add(1)
		go func(slot int) {
			h := histogram.New(opts.Bins, opts.HistMin, opts.HistMax)
			hists[slot] = h
			wlog := logger.With(zap.Int("slot", slot))

			var done uint64
			defer func() {
				processed.Add(done)
				wg.Done()
			}()

			for {
				select {
				case <-ctx.Done():
					wlog.Debug("worker stopping on cancellation", zap.Uint64("entries", done))
					return
				default:
				}

				lo := cursor.Add(cfg.BatchSize) - cfg.BatchSize
				if lo >= cfg.Entries {
					wlog.Debug("worker drained", zap.Uint64("entries", done))
					return
				}
				hi := lo + cfg.BatchSize
				if hi > cfg.Entries {
					hi = cfg.Entries
				}
				for entry := lo; entry < hi; entry++ {
					x := fn(slot, entry)
					h.Fill(x)
					if samples != nil {
						samples[entry] = x
					}
				}
				done += hi - lo
			}
		}(slot)
	}
	wg.Wait()

	merged := histogram.New(opts.Bins, opts.HistMin, opts.HistMax)
	for _, h := range hists {
		if h != nil {
			merged.Merge(h)
		}
	}

	res := &Result{
		Hist:    merged,
		Samples: samples,
		Entries: processed.Load(),
		Workers: cfg.Workers,
		Elapsed: time.Since(begin),
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}
	return res, nil
}
