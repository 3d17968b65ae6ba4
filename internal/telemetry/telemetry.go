// Package telemetry wires samplegen's optional OpenTelemetry output: a span
// around each pipeline pass plus summary instruments, exported either to a
// terminal or over OTLP.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	grpcZap "github.com/grpc-ecosystem/go-grpc-middleware/logging/zap"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/statmix/samplegen/internal/report"
)

// Config holds the telemetry configuration shared by all commands.
type Config struct {
	// Output selects where telemetry goes: "none" (or empty) disables it,
	// "terminal" prints to stdout, anything else is an OTLP endpoint such
	// as localhost:4317.
	Output string
	// Protocol is the OTLP transport, grpc or http.
	Protocol string
	Insecure bool
	Headers  map[string]string
	// Temporality is the exported metrics temporality, delta or
	// cumulative. Empty means cumulative.
	Temporality string
	ServiceName string
	// Debug turns on verbose gRPC transport logging.
	Debug bool
}

// Validate checks the telemetry configuration for usable values.
func (c *Config) Validate() error {
	switch c.Protocol {
	case "", "grpc", "http":
	default:
		return fmt.Errorf("unsupported protocol %q, must be one of: grpc, http", c.Protocol)
	}
	switch c.Temporality {
	case "", "delta", "cumulative":
	default:
		return fmt.Errorf("unsupported temporality %q, must be one of: delta, cumulative", c.Temporality)
	}
	return nil
}

// Telemetry bundles the tracer and instruments used around pipeline passes.
// A Telemetry built with output "none" is fully wired but silent.
type Telemetry struct {
	tracer trace.Tracer
	tp     *sdktrace.TracerProvider
	mp     *sdkmetric.MeterProvider

	runs     metric.Int64Counter
	mean     metric.Float64Gauge
	stddev   metric.Float64Gauge
	duration metric.Float64Histogram

	logger *zap.Logger
}

// Setup builds the telemetry plumbing for cfg.
func Setup(ctx context.Context, cfg *Config, logger *zap.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	t := &Telemetry{logger: logger}

	var (
		tracerProvider trace.TracerProvider
		meterProvider  metric.MeterProvider
	)
	switch cfg.Output {
	case "", "none":
		tracerProvider = tracenoop.NewTracerProvider()
		meterProvider = metricnoop.NewMeterProvider()
	default:
		if cfg.Debug && cfg.Protocol != "http" {
			grpcZap.ReplaceGrpcLoggerV2(logger.WithOptions(
				zap.AddCallerSkip(3),
			))
		}
		res := resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.DeploymentEnvironment("local"),
		)

		spanExp, err := newSpanExporter(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("create span exporter: %w", err)
		}
		t.tp = sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(spanExp, sdktrace.WithBatchTimeout(time.Second)),
			sdktrace.WithResource(res),
		)
		tracerProvider = t.tp

		metricExp, err := newMetricExporter(ctx, cfg)
		if err != nil {
			_ = t.tp.Shutdown(ctx)
			return nil, fmt.Errorf("create metric exporter: %w", err)
		}
		t.mp = sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(
				metricExp,
				sdkmetric.WithInterval(5*time.Second),
			)),
			sdkmetric.WithResource(res),
		)
		meterProvider = t.mp

		logger.Debug("telemetry started",
			zap.String("output", cfg.Output),
			zap.String("protocol", cfg.Protocol),
		)
	}

	t.tracer = tracerProvider.Tracer("samplegen")
	meter := meterProvider.Meter("samplegen")

	var err error
	if t.runs, err = meter.Int64Counter("samplegen.runs",
		metric.WithUnit("1"),
		metric.WithDescription("Number of completed pipeline passes"),
	); err != nil {
		return nil, fmt.Errorf("create runs counter: %w", err)
	}
	if t.mean, err = meter.Float64Gauge("samplegen.run.mean",
		metric.WithDescription("Observed mean of the last pass"),
	); err != nil {
		return nil, fmt.Errorf("create mean gauge: %w", err)
	}
	if t.stddev, err = meter.Float64Gauge("samplegen.run.stddev",
		metric.WithDescription("Observed standard deviation of the last pass"),
	); err != nil {
		return nil, fmt.Errorf("create stddev gauge: %w", err)
	}
	if t.duration, err = meter.Float64Histogram("samplegen.run.duration",
		metric.WithUnit("s"),
		metric.WithDescription("Wall time of pipeline passes"),
	); err != nil {
		return nil, fmt.Errorf("create duration histogram: %w", err)
	}

	return t, nil
}

// StartRun opens a span around one pipeline pass.
func (t *Telemetry) StartRun(ctx context.Context, samplerName string, workers int, entries uint64) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "samplegen.run", trace.WithAttributes(
		attribute.String("sampler", samplerName),
		attribute.Int("workers", workers),
		attribute.Int64("entries", int64(entries)),
	))
}

// RecordRun emits the instruments for one completed pass and stamps the run
// id onto the pass span.
func (t *Telemetry) RecordRun(ctx context.Context, sum report.Summary) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("run_id", sum.RunID))
	attrs := metric.WithAttributes(
		attribute.String("sampler", sum.Sampler),
		attribute.Int("workers", sum.Workers),
	)
	t.runs.Add(ctx, 1, attrs)
	t.mean.Record(ctx, sum.Mean, attrs)
	t.stddev.Record(ctx, sum.StdDev, attrs)
	t.duration.Record(ctx, sum.Elapsed.Seconds(), attrs)
}

// Shutdown flushes and stops the providers. Safe to call on a no-op setup.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	if t.mp != nil {
		if err := t.mp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown meter provider: %w", err))
		}
	}
	if t.tp != nil {
		if err := t.tp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown tracer provider: %w", err))
		}
	}
	return errors.Join(errs...)
}
