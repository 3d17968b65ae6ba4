package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/urfave/cli/v2"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/statmix/samplegen/internal/sampler"
)

type streamRecord struct {
	Entry uint64  `json:"entry"`
	Slot  int     `json:"slot"`
	Value float64 `json:"value"`
}

func genStreamCommand() *cli.Command {
	return &cli.Command{
		Name:  "stream",
		Usage: "Emit samples continuously as JSON lines",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "sampler",
				Usage: "sampler variant, one of: fresh, local, seeded",
				Value: sampler.KindLocal,
			},
			&cli.Float64Flag{
				Name:    "rate",
				Aliases: []string{"r"},
				Usage:   "samples per second per worker (0 = unthrottled)",
				Value:   10,
			},
			&cli.Uint64Flag{
				Name:    "number",
				Aliases: []string{"n"},
				Usage:   "stop after this many samples (0 = run until cancelled)",
			},
			&cli.DurationFlag{
				Name:    "duration",
				Aliases: []string{"d"},
				Usage:   "stop after this long (0 = run until cancelled)",
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "number of emitting workers",
				Value:   1,
			},
			&cli.Uint64Flag{
				Name:  "seed",
				Usage: "base seed for the deterministic samplers",
				Value: sampler.DefaultSeed,
			},
		},
		Action: streamAction,
	}
}

func streamAction(c *cli.Context) error {
	workers := c.Int("workers")
	if workers < 1 {
		workers = 1
	}
	kind := c.String("sampler")
	if kind == sampler.KindShared && workers > 1 {
		return fmt.Errorf("sampler %q cannot stream from %d workers, use one of: fresh, local, seeded",
			kind, workers)
	}

	smp, err := sampler.New(kind, sampler.Options{
		Slots:  workers,
		Seed:   c.Uint64("seed"),
		StdDev: 1,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()
	if d := c.Duration("duration"); d > 0 {
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	limit := rate.Inf
	if r := c.Float64("rate"); r > 0 {
		limit = rate.Limit(r)
	} else {
		logger.Info("sample generation isn't being throttled")
	}

	number := c.Uint64("number")
	seq := atomic.NewUint64(0)
	records := make(chan streamRecord, 256)

	var wg sync.WaitGroup
	for slot := 0; slot < workers; slot++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			limiter := rate.NewLimiter(limit, 1)
			wl := logger.With(zap.Int("worker", slot))
			for {
				if err := limiter.Wait(ctx); err != nil {
					wl.Debug("stream worker stopping", zap.Error(err))
					return
				}
				entry := seq.Add(1) - 1
				if number > 0 && entry >= number {
					return
				}
				select {
				case records <- streamRecord{Entry: entry, Slot: slot, Value: smp.Sample(slot, entry)}:
				case <-ctx.Done():
					return
				}
			}
		}(slot)
	}

	go func() {
		wg.Wait()
		close(records)
	}()

	enc := json.NewEncoder(c.App.Writer)
	var emitted uint64
	for rec := range records {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encode sample: %w", err)
		}
		emitted++
	}

	logger.Info("stream completed", zap.Uint64("samples", emitted))
	return nil
}
