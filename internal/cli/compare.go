package cli

import (
	"fmt"
	"runtime"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/statmix/samplegen/internal/report"
	"github.com/statmix/samplegen/internal/sampler"
)

func genCompareCommand() *cli.Command {
	return &cli.Command{
		Name:  "compare",
		Usage: "Run the generator designs back to back and print the comparison table",
		Flags: []cli.Flag{
			&cli.Uint64Flag{
				Name:    "entries",
				Aliases: []string{"n"},
				Usage:   "number of entries per pass",
				Value:   1_000_000,
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "number of workers for the concurrent passes (0 = one per CPU)",
			},
			&cli.Uint64Flag{
				Name:  "batch",
				Usage: "entries a worker claims at a time",
				Value: 4096,
			},
			&cli.Uint64Flag{
				Name:  "seed",
				Usage: "base seed for the deterministic pass",
				Value: sampler.DefaultSeed,
			},
			&cli.IntFlag{
				Name:  "bins",
				Usage: "histogram bin count",
				Value: 1000,
			},
			&cli.Float64Flag{
				Name:  "hist-min",
				Usage: "histogram lower edge",
				Value: -4,
			},
			&cli.Float64Flag{
				Name:  "hist-max",
				Usage: "histogram upper edge",
				Value: 4,
			},
			&cli.BoolFlag{
				Name:  "allow-race",
				Usage: "include the racy shared-generator pass",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "print the summaries as JSON",
			},
		},
		Action: func(c *cli.Context) error {
			workers := c.Int("workers")
			if workers < 1 {
				workers = runtime.NumCPU()
			}
			base := runParams{
				Entries:   c.Uint64("entries"),
				BatchSize: c.Uint64("batch"),
				Seed:      c.Uint64("seed"),
				Bins:      c.Int("bins"),
				HistMin:   c.Float64("hist-min"),
				HistMax:   c.Float64("hist-max"),
			}

			single := base
			single.Sampler = sampler.KindShared
			single.Workers = 1
			single.Label = "Single thread (no MT)"

			local := base
			local.Sampler = sampler.KindLocal
			local.Workers = workers
			local.Label = "Worker-local generators (MT)"

			seeded := base
			seeded.Sampler = sampler.KindSeeded
			seeded.Workers = workers
			seeded.Label = "Deterministic seeding (MT)"

			passes := []runParams{single, local, seeded}
			if c.Bool("allow-race") {
				racy := base
				racy.Sampler = sampler.KindShared
				racy.Workers = workers
				racy.Label = "Shared generator (MT, racy)"
				logger.Warn("including the racy shared-generator pass; its output is garbage by nature",
					zap.Int("workers", workers))
				passes = append(passes, racy)
			}

			tel, err := setupTelemetry(c)
			if err != nil {
				return err
			}
			defer shutdownTelemetry(tel)

			summaries := make([]report.Summary, 0, len(passes))
			for _, p := range passes {
				sum, _, err := executeRun(c, tel, p)
				if err != nil {
					return fmt.Errorf("%s: %w", p.Label, err)
				}
				summaries = append(summaries, sum)
			}

			if c.Bool("json") {
				if err := report.WriteJSON(c.App.Writer, summaries...); err != nil {
					return err
				}
			} else {
				if err := report.WriteTable(c.App.Writer, 0, 1, summaries...); err != nil {
					return err
				}
			}
			return recordRuns(c, summaries...)
		},
	}
}
