package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// newSpanExporter picks the span exporter for cfg: stdout for terminal
// output, otherwise OTLP over the configured protocol.
func newSpanExporter(ctx context.Context, cfg *Config) (sdktrace.SpanExporter, error) {
	if cfg.Output == "terminal" || cfg.Output == "stdout" {
		return &StdoutSpanExporter{}, nil
	}
	if cfg.Protocol == "http" {
		opts := []otlptracehttp.Option{
			otlptracehttp.WithEndpoint(cfg.Output),
		}
		if cfg.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		if len(cfg.Headers) > 0 {
			opts = append(opts, otlptracehttp.WithHeaders(cfg.Headers))
		}
		return otlptracehttp.New(ctx, opts...)
	}
	opts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(cfg.Output),
	}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, otlptracegrpc.WithHeaders(cfg.Headers))
	}
	return otlptracegrpc.New(ctx, opts...)
}

// newMetricExporter mirrors newSpanExporter for metrics, wiring in the
// requested temporality.
func newMetricExporter(ctx context.Context, cfg *Config) (sdkmetric.Exporter, error) {
	if cfg.Output == "terminal" || cfg.Output == "stdout" {
		return &StdoutMetricExporter{}, nil
	}
	temporality := preferCumulativeTemporalitySelector
	if cfg.Temporality == "delta" {
		temporality = preferDeltaTemporalitySelector
	}
	if cfg.Protocol == "http" {
		opts := []otlpmetrichttp.Option{
			otlpmetrichttp.WithEndpoint(cfg.Output),
			otlpmetrichttp.WithTemporalitySelector(temporality),
		}
		if cfg.Insecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		if len(cfg.Headers) > 0 {
			opts = append(opts, otlpmetrichttp.WithHeaders(cfg.Headers))
		}
		return otlpmetrichttp.New(ctx, opts...)
	}
	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Output),
		otlpmetricgrpc.WithTemporalitySelector(temporality),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, otlpmetricgrpc.WithHeaders(cfg.Headers))
	}
	return otlpmetricgrpc.New(ctx, opts...)
}

// preferDeltaTemporalitySelector returns delta temporality for an
// instrument kind.
func preferDeltaTemporalitySelector(kind sdkmetric.InstrumentKind) metricdata.Temporality {
	switch kind {
	case sdkmetric.InstrumentKindCounter,
		sdkmetric.InstrumentKindObservableCounter,
		sdkmetric.InstrumentKindUpDownCounter,
		sdkmetric.InstrumentKindHistogram:
		return metricdata.DeltaTemporality
	default:
		return metricdata.CumulativeTemporality
	}
}

// preferCumulativeTemporalitySelector returns cumulative temporality for an
// instrument kind.
func preferCumulativeTemporalitySelector(kind sdkmetric.InstrumentKind) metricdata.Temporality {
	switch kind {
	case sdkmetric.InstrumentKindCounter,
		sdkmetric.InstrumentKindObservableCounter,
		sdkmetric.InstrumentKindUpDownCounter,
		sdkmetric.InstrumentKindHistogram:
		return metricdata.CumulativeTemporality
	default:
		return metricdata.DeltaTemporality
	}
}

// StdoutSpanExporter implements sdktrace.SpanExporter and prints spans as
// JSON, one object per line.
type StdoutSpanExporter struct {
	// W is the destination, defaulting to os.Stdout.
	W io.Writer
}

// ExportSpans implements the sdktrace.SpanExporter interface.
func (e *StdoutSpanExporter) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	w := e.W
	if w == nil {
		w = os.Stdout
	}
	for _, span := range spans {
		m := map[string]any{
			"name":       span.Name(),
			"trace_id":   span.SpanContext().TraceID().String(),
			"span_id":    span.SpanContext().SpanID().String(),
			"parent_id":  span.Parent().SpanID().String(),
			"start":      span.StartTime().Format(time.RFC3339Nano),
			"end":        span.EndTime().Format(time.RFC3339Nano),
			"attributes": span.Attributes(),
			"status":     span.Status().Code.String(),
		}
		b, err := json.Marshal(m)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s\n", b); err != nil {
			return err
		}
	}
	return nil
}

// Shutdown implements the sdktrace.SpanExporter interface.
func (e *StdoutSpanExporter) Shutdown(_ context.Context) error { return nil }

// ForceFlush implements the sdktrace.SpanExporter interface.
func (e *StdoutSpanExporter) ForceFlush(_ context.Context) error { return nil }

// StdoutMetricExporter implements sdkmetric.Exporter and prints collected
// metrics as JSON, one object per line.
type StdoutMetricExporter struct {
	// W is the destination, defaulting to os.Stdout.
	W io.Writer
}

// Temporality implements the sdkmetric.Exporter interface.
func (e *StdoutMetricExporter) Temporality(kind sdkmetric.InstrumentKind) metricdata.Temporality {
	return sdkmetric.DefaultTemporalitySelector(kind)
}

// Aggregation implements the sdkmetric.Exporter interface.
func (e *StdoutMetricExporter) Aggregation(kind sdkmetric.InstrumentKind) sdkmetric.Aggregation {
	return sdkmetric.DefaultAggregationSelector(kind)
}

// Export implements the sdkmetric.Exporter interface.
func (e *StdoutMetricExporter) Export(_ context.Context, rm *metricdata.ResourceMetrics) error {
	w := e.W
	if w == nil {
		w = os.Stdout
	}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			line := map[string]any{
				"name": m.Name,
				"unit": m.Unit,
			}
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				var total int64
				for _, dp := range data.DataPoints {
					total += dp.Value
				}
				line["sum"] = total
			case metricdata.Sum[float64]:
				var total float64
				for _, dp := range data.DataPoints {
					total += dp.Value
				}
				line["sum"] = total
			case metricdata.Gauge[int64]:
				if n := len(data.DataPoints); n > 0 {
					line["value"] = data.DataPoints[n-1].Value
				}
			case metricdata.Gauge[float64]:
				if n := len(data.DataPoints); n > 0 {
					line["value"] = data.DataPoints[n-1].Value
				}
			case metricdata.Histogram[float64]:
				var count uint64
				var sum float64
				for _, dp := range data.DataPoints {
					count += dp.Count
					sum += dp.Sum
				}
				line["count"] = count
				line["total"] = sum
			default:
				line["type"] = fmt.Sprintf("%T", m.Data)
			}
			b, err := json.Marshal(line)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "%s\n", b); err != nil {
				return err
			}
		}
	}
	return nil
}

// ForceFlush implements the sdkmetric.Exporter interface.
func (e *StdoutMetricExporter) ForceFlush(_ context.Context) error { return nil }

// Shutdown implements the sdkmetric.Exporter interface.
func (e *StdoutMetricExporter) Shutdown(_ context.Context) error { return nil }
