package cli

import (
	"fmt"
	"runtime"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/statmix/samplegen/internal/pipeline"
	"github.com/statmix/samplegen/internal/sampler"
)

func genVerifyCommand() *cli.Command {
	return &cli.Command{
		Name:  "verify",
		Usage: "Check that deterministic seeding yields identical values for one worker and many",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "sampler",
				Usage: "deterministic variant to verify, seeded or fresh",
				Value: sampler.KindSeeded,
			},
			&cli.Uint64Flag{
				Name:    "entries",
				Aliases: []string{"n"},
				Usage:   "number of entries per pass",
				Value:   1_000_000,
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "worker count for the concurrent pass (0 = one per CPU)",
			},
			&cli.Uint64Flag{
				Name:  "batch",
				Usage: "entries a worker claims at a time",
				Value: 4096,
			},
			&cli.Uint64Flag{
				Name:  "seed",
				Usage: "base seed for both passes",
				Value: sampler.DefaultSeed,
			},
		},
		Action: func(c *cli.Context) error {
			kind := c.String("sampler")
			if kind != sampler.KindSeeded && kind != sampler.KindFresh {
				return fmt.Errorf("sampler %q is not deterministic, verify needs one of: %s, %s",
					kind, sampler.KindSeeded, sampler.KindFresh)
			}

			workers := c.Int("workers")
			if workers < 1 {
				workers = runtime.NumCPU()
			}
			if workers < 2 {
				workers = 2
			}
			entries := c.Uint64("entries")
			seed := c.Uint64("seed")
			batch := c.Uint64("batch")

			g, ctx := errgroup.WithContext(c.Context)
			pass := func(workers int, out **pipeline.Result) {
				g.Go(func() error {
					smp, err := sampler.New(kind, sampler.Options{
						Slots:  workers,
						Seed:   seed,
						StdDev: 1,
					})
					if err != nil {
						return err
					}
					cfg := &pipeline.Config{Entries: entries, Workers: workers, BatchSize: batch}
					res, err := pipeline.Run(ctx, cfg, smp.Sample,
						pipeline.Options{Capture: true},
						logger.With(zap.Int("pass_workers", workers)))
					*out = res
					return err
				})
			}

			var serial, parallel *pipeline.Result
			pass(1, &serial)
			pass(workers, &parallel)
			if err := g.Wait(); err != nil {
				return err
			}

			for i := range serial.Samples {
				if serial.Samples[i] != parallel.Samples[i] {
					return fmt.Errorf("determinism violated at entry %d: %v with 1 worker, %v with %d workers",
						i, serial.Samples[i], parallel.Samples[i], workers)
				}
			}

			logger.Info("verified",
				zap.String("sampler", kind),
				zap.Uint64("entries", entries),
				zap.Int("workers", workers),
				zap.Uint64("seed", seed),
			)
			_, err := fmt.Fprintf(c.App.Writer, "%d entries identical across 1 and %d workers (sampler %s, seed %d)\n",
				entries, workers, kind, seed)
			return err
		},
	}
}
