package completion

import (
	"context"
	"time"

	"github.com/skillsenselab/refinekit/logger"
	"github.com/skillsenselab/refinekit/observability"
)

// WithLogging wraps a provider so that every Complete call is logged with
// its duration and token usage. A nil logger falls back to the component
// logger for "completion".
func WithLogging(p Provider, log *logger.Logger) Provider {
	if log == nil {
		log = logger.Get("completion")
	}
	return &loggingProvider{inner: p, log: log}
}

type loggingProvider struct {
	inner Provider
	log   *logger.Logger
}

func (l *loggingProvider) Name() string { return l.inner.Name() }
func (l *loggingProvider) IsAvailable(ctx context.Context) bool { return l.inner.IsAvailable(ctx) }

func (l *loggingProvider) Complete(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Complete(ctx, req)
	duration := time.Since(start)

	fields := map[string]interface{}{
		logger.FieldProvider: l.inner.Name(),
		logger.FieldDuration: duration.Milliseconds(),
	}
	if err != nil {
		fields[logger.FieldError] = err.Error()
		l.log.WithContext(ctx).Warn("completion call failed", fields)
		return resp, err
	}

	fields[logger.FieldModel] = resp.Model
	fields["total_tokens"] = resp.Usage.TotalTokens
	l.log.WithContext(ctx).Debug("completion call ok", fields)
	return resp, nil
}

// WithTracing wraps a provider so that every Complete call runs inside an
// OpenTelemetry span carrying the provider name and response model.
func WithTracing(p Provider) Provider {
	return &tracingProvider{inner: p}
}

type tracingProvider struct {
	inner Provider
}

func (t *tracingProvider) Name() string { return t.inner.Name() }
func (t *tracingProvider) IsAvailable(ctx context.Context) bool { return t.inner.IsAvailable(ctx) }

func (t *tracingProvider) Complete(ctx context.Context, req Request) (*Response, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanCompletionCall)
	defer span.End()

	observability.SetSpanAttribute(ctx, observability.AttrProvider, t.inner.Name())

	resp, err := t.inner.Complete(ctx, req)
	if err != nil {
		observability.SetSpanError(ctx, err)
		return resp, err
	}
	observability.SetSpanAttribute(ctx, observability.AttrModel, resp.Model)
	return resp, nil
}

// WithMetrics wraps a provider so that every Complete call records a
// latency sample tagged with provider name and status. A nil Metrics is
// a no-op passthrough.
func WithMetrics(p Provider, metrics *observability.Metrics) Provider {
	if metrics == nil {
		return p
	}
	return &metricsProvider{inner: p, metrics: metrics}
}

type metricsProvider struct {
	inner   Provider
	metrics *observability.Metrics
}

func (m *metricsProvider) Name() string { return m.inner.Name() }
func (m *metricsProvider) IsAvailable(ctx context.Context) bool { return m.inner.IsAvailable(ctx) }

func (m *metricsProvider) Complete(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := m.inner.Complete(ctx, req)
	duration := time.Since(start)

	status := "ok"
	if err != nil {
		status = "error"
	}
	m.metrics.RecordCall(ctx, m.inner.Name(), status, duration)

	return resp, err
}
