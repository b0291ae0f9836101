// Package observability provides OpenTelemetry tracing and metrics for
// refinement runs.
//
// It initializes OTLP HTTP exporters and exposes a Metrics bundle with
// instruments for the engine: run and chunk counters, correction call
// latency, and fragment accept/drop counts from reconciliation.
//
// # Usage
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("refinekit"))
//	defer tp.Shutdown(ctx)
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("refinekit"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("refinekit"))
//
// All engine metrics paths tolerate a nil *Metrics, so tracing and metrics
// stay strictly optional.
package observability
