package cli

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/statmix/samplegen/internal/config"
	"github.com/statmix/samplegen/internal/pipeline"
	"github.com/statmix/samplegen/internal/report"
	"github.com/statmix/samplegen/internal/runlog"
	"github.com/statmix/samplegen/internal/sampler"
	"github.com/statmix/samplegen/internal/telemetry"
)

// runParams is everything one pipeline pass needs.
type runParams struct {
	Sampler   string
	Label     string
	Entries   uint64
	Workers   int
	BatchSize uint64
	Seed      uint64
	Bins      int
	HistMin   float64
	HistMax   float64
	Capture   bool
}

func genRunCommand(env config.Env) *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run one sampling pass and print its summary",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "sampler",
				Usage: fmt.Sprintf("sampler variant, one of: %s", strings.Join(sampler.Kinds(), ", ")),
				Value: sampler.KindSeeded,
			},
			&cli.Uint64Flag{
				Name:    "entries",
				Aliases: []string{"n"},
				Usage:   "number of entries to sample",
				Value:   env.Entries,
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "number of workers (0 = one per CPU)",
				Value:   env.Workers,
			},
			&cli.Uint64Flag{
				Name:  "batch",
				Usage: "entries a worker claims at a time",
				Value: 4096,
			},
			&cli.Uint64Flag{
				Name:  "seed",
				Usage: "base seed for the deterministic samplers",
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
				Name:  "capture",
				Usage: "record every sample for extended statistics (8 bytes per entry)",
			},
			&cli.IntFlag{
				Name:  "render",
				Usage: "print an ASCII histogram with this many rows (0 disables)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "print the summary as JSON",
			},
			&cli.StringFlag{
				Name:  "profile",
				Usage: "named run profile to start from",
			},
			&cli.BoolFlag{
				Name:  "allow-race",
				Usage: "permit the shared sampler with more than one worker",
			},
		},
		Action: func(c *cli.Context) error {
			p, err := buildRunParams(c)
			if err != nil {
				return err
			}
			if err := guardShared(c, p.Sampler, p.Workers); err != nil {
				return err
			}

			tel, err := setupTelemetry(c)
			if err != nil {
				return err
			}
			defer shutdownTelemetry(tel)

			sum, res, err := executeRun(c, tel, p)
			if err != nil {
				return err
			}
			if err := writeRunOutput(c, sum, res); err != nil {
				return err
			}
			return recordRuns(c, sum)
		},
	}
}

func buildRunParams(c *cli.Context) (runParams, error) {
	p := runParams{
		Sampler:   c.String("sampler"),
		Entries:   c.Uint64("entries"),
		Workers:   c.Int("workers"),
		BatchSize: c.Uint64("batch"),
		Seed:      c.Uint64("seed"),
		Bins:      c.Int("bins"),
		HistMin:   c.Float64("hist-min"),
		HistMax:   c.Float64("hist-max"),
		Capture:   c.Bool("capture"),
	}
	if name := c.String("profile"); name != "" {
		prof, ok := config.LookupProfile(name)
		if !ok {
			return p, fmt.Errorf("unknown profile %q, must be one of: %s",
				name, strings.Join(config.ProfileNames(), ", "))
		}
		applyProfile(c, prof, &p)
	}
	if p.Workers < 1 {
		p.Workers = runtime.NumCPU()
	}
	return p, nil
}

// applyProfile fills p from prof for every parameter not set explicitly on
// the command line.
func applyProfile(c *cli.Context, prof config.Profile, p *runParams) {
	if !c.IsSet("sampler") && prof.Sampler != "" {
		p.Sampler = prof.Sampler
	}
	if !c.IsSet("entries") && prof.Entries > 0 {
		p.Entries = prof.Entries
	}
	if !c.IsSet("workers") && prof.Workers > 0 {
		p.Workers = prof.Workers
	}
	if !c.IsSet("seed") && prof.Seed > 0 {
		p.Seed = prof.Seed
	}
	if !c.IsSet("bins") && prof.Bins > 0 {
		p.Bins = prof.Bins
	}
	if !c.IsSet("hist-min") && !c.IsSet("hist-max") && prof.HistMax > prof.HistMin {
		p.HistMin, p.HistMax = prof.HistMin, prof.HistMax
	}
}

// guardShared refuses the racy shared sampler with more than one worker
// unless the caller explicitly opted in.
func guardShared(c *cli.Context, kind string, workers int) error {
	if kind != sampler.KindShared || workers <= 1 {
		return nil
	}
	if !c.Bool("allow-race") {
		return fmt.Errorf("sampler %q with %d workers is a data race; rerun with --allow-race to demonstrate it anyway",
			sampler.KindShared, workers)
	}
	logger.Warn("running the shared sampler across workers; generator state is racing and the output is garbage",
		zap.Int("workers", workers))
	return nil
}

func setupTelemetry(c *cli.Context) (*telemetry.Telemetry, error) {
	headers, err := parseHeaders(c)
	if err != nil {
		return nil, err
	}
	return telemetry.Setup(c.Context, &telemetry.Config{
		Output:      c.String("telemetry"),
		Protocol:    c.String("protocol"),
		Insecure:    c.Bool("insecure"),
		Headers:     headers,
		Temporality: c.String("temporality"),
		ServiceName: c.String("service-name"),
		Debug:       c.String("log-level") == "debug",
	}, logger)
}

func shutdownTelemetry(tel *telemetry.Telemetry) {
	if err := tel.Shutdown(context.Background()); err != nil {
		logger.Warn("telemetry shutdown", zap.Error(err))
	}
}

// executeRun runs one pipeline pass with an already-built telemetry stack.
func executeRun(c *cli.Context, tel *telemetry.Telemetry, p runParams) (report.Summary, *pipeline.Result, error) {
	smp, err := sampler.New(p.Sampler, sampler.Options{
		Slots:  p.Workers,
		Seed:   p.Seed,
		StdDev: 1,
	})
	if err != nil {
		return report.Summary{}, nil, err
	}

	runCtx, span := tel.StartRun(c.Context, p.Sampler, p.Workers, p.Entries)
	defer span.End()

	cfg := &pipeline.Config{
		Entries:   p.Entries,
		Workers:   p.Workers,
		BatchSize: p.BatchSize,
	}
	res, err := pipeline.Run(runCtx, cfg, smp.Sample, pipeline.Options{
		Bins:    p.Bins,
		HistMin: p.HistMin,
		HistMax: p.HistMax,
		Capture: p.Capture,
	}, logger)
	if err != nil {
		return report.Summary{}, nil, fmt.Errorf("pipeline: %w", err)
	}

	sum := report.Build(p.Sampler, p.Label, res, 0, 1)
	tel.RecordRun(runCtx, sum)

	logger.Info("pass completed",
		zap.String("run_id", sum.RunID),
		zap.String("sampler", sum.Sampler),
		zap.Uint64("entries", sum.Entries),
		zap.Int("workers", sum.Workers),
		zap.Float64("mean", sum.Mean),
		zap.Float64("stddev", sum.StdDev),
		zap.Duration("elapsed", res.Elapsed),
	)
	return sum, res, nil
}

func writeRunOutput(c *cli.Context, sum report.Summary, res *pipeline.Result) error {
	w := c.App.Writer
	if c.Bool("json") {
		return report.WriteJSON(w, sum)
	}
	if err := report.WriteDetails(w, sum); err != nil {
		return err
	}
	if rows := c.Int("render"); rows > 0 {
		return res.Hist.RenderWithReference(w, rows, 0, 1)
	}
	return nil
}

// recordRuns appends the summaries to the SQLite run log when one is
// configured.
func recordRuns(c *cli.Context, sums ...report.Summary) error {
	path := c.String("db")
	if path == "" {
		return nil
	}
	store, err := runlog.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("closing run log", zap.Error(err))
		}
	}()
	for _, sum := range sums {
		if err := store.Record(c.Context, sum); err != nil {
			return err
		}
	}
	logger.Debug("recorded runs", zap.Int("count", len(sums)), zap.String("db", path))
	return nil
}
