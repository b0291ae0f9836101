package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/skillsenselab/refinekit/logger"
)

// MeterConfig describes the OTLP metric pipeline.
type MeterConfig struct {
	// ServiceName labels exported metrics.
	ServiceName string
	// ServiceVersion is attached to the metric resource.
	ServiceVersion string
	// Environment distinguishes dev/staging/prod metrics.
	Environment string
	// Endpoint is the OTLP HTTP collector as host:port.
	Endpoint string
	// Insecure disables TLS toward the collector.
	Insecure bool
	// Interval is how often accumulated metrics are pushed.
	Interval time.Duration
}

// DefaultMeterConfig returns a local-collector setup pushing every 15
// seconds, suitable for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter wires the global meter provider to an OTLP HTTP exporter with
// a periodic push reader. The caller owns the returned provider and
// should Shutdown it on exit.
func InitMeter(ctx context.Context, cfg MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("otlp metric exporter: %w", err)
	}

	res, err := buildResource(cfg.ServiceName, cfg.ServiceVersion, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("metric resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if cfg.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Interval))
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", cfg.ServiceName,
		"endpoint", cfg.Endpoint,
		"interval", cfg.Interval.String(),
	))
	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the metric instruments recorded by the engine.
type Metrics struct {
	runTotal          metric.Int64Counter
	runDuration       metric.Float64Histogram
	chunkTotal        metric.Int64Counter
	chunkDuration     metric.Float64Histogram
	callDuration      metric.Float64Histogram
	fragmentsAccepted metric.Int64Counter
	fragmentsDropped  metric.Int64Counter
	invariantsHealed  metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	runTotal, err := meter.Int64Counter("refine.run.total",
		metric.WithDescription("Total number of refinement runs"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating refine.run.total counter: %w", err)
	}

	runDuration, err := meter.Float64Histogram("refine.run.duration",
		metric.WithDescription("Duration of refinement runs in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating refine.run.duration histogram: %w", err)
	}

	chunkTotal, err := meter.Int64Counter("refine.chunk.total",
		metric.WithDescription("Total number of dispatched chunks"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating refine.chunk.total counter: %w", err)
	}

	chunkDuration, err := meter.Float64Histogram("refine.chunk.duration",
		metric.WithDescription("Duration of chunk correction calls in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating refine.chunk.duration histogram: %w", err)
	}

	callDuration, err := meter.Float64Histogram("completion.call.duration",
		metric.WithDescription("Duration of completion backend calls in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating completion.call.duration histogram: %w", err)
	}

	fragmentsAccepted, err := meter.Int64Counter("refine.fragments.accepted",
		metric.WithDescription("Fragments accepted by overlap reconciliation"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating refine.fragments.accepted counter: %w", err)
	}

	fragmentsDropped, err := meter.Int64Counter("refine.fragments.dropped",
		metric.WithDescription("Fragments dropped by overlap reconciliation, by reason"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating refine.fragments.dropped counter: %w", err)
	}

	invariantsHealed, err := meter.Int64Counter("refine.invariants.recovered",
		metric.WithDescription("Out-of-range segment references clamped during reconciliation"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating refine.invariants.recovered counter: %w", err)
	}

	return &Metrics{
		runTotal:          runTotal,
		runDuration:       runDuration,
		chunkTotal:        chunkTotal,
		chunkDuration:     chunkDuration,
		callDuration:      callDuration,
		fragmentsAccepted: fragmentsAccepted,
		fragmentsDropped:  fragmentsDropped,
		invariantsHealed:  invariantsHealed,
	}, nil
}

// RecordRun records a completed refinement run. Safe on a nil receiver.
func (m *Metrics) RecordRun(ctx context.Context, mode, status string, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("mode", mode),
		attribute.String("status", status),
	)
	m.runTotal.Add(ctx, 1, attrs)
	m.runDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("mode", mode),
	))
}

// RecordChunk records one dispatched chunk. Safe on a nil receiver.
func (m *Metrics) RecordChunk(ctx context.Context, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.chunkTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	m.chunkDuration.Record(ctx, duration.Seconds())
}

// RecordCall records one completion backend call. Safe on a nil receiver.
func (m *Metrics) RecordCall(ctx context.Context, provider, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.callDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("status", status),
	))
}

// AddFragmentsAccepted counts fragments kept by reconciliation. Safe on a nil receiver.
func (m *Metrics) AddFragmentsAccepted(ctx context.Context, n int) {
	if m == nil || n == 0 {
		return
	}
	m.fragmentsAccepted.Add(ctx, int64(n))
}

// AddFragmentsDropped counts fragments dropped by reconciliation. Safe on a nil receiver.
func (m *Metrics) AddFragmentsDropped(ctx context.Context, reason string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.fragmentsDropped.Add(ctx, int64(n), metric.WithAttributes(
		attribute.String("reason", reason),
	))
}

// AddInvariantRecovered counts clamped segment references. Safe on a nil receiver.
func (m *Metrics) AddInvariantRecovered(ctx context.Context, n int) {
	if m == nil || n == 0 {
		return
	}
	m.invariantsHealed.Add(ctx, int64(n))
}
