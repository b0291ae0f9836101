package logger

import "context"

// contextKey is an unexported type for context keys to avoid collisions.
type contextKey string

const (
	ctxRunID  contextKey = "run_id"
	ctxCallID contextKey = "call_id"
)

// ContextWithRunID returns a context carrying a refinement run identifier.
func ContextWithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxRunID, id)
}

// ContextWithCallID returns a context carrying a correction call identifier.
func ContextWithCallID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxCallID, id)
}

// RunIDFromContext extracts the run identifier, if any.
func RunIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxRunID).(string); ok {
		return v
	}
	return ""
}

// CallIDFromContext extracts the correction call identifier, if any.
func CallIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxCallID).(string); ok {
		return v
	}
	return ""
}

// WithContext returns a logger enriched with run and call IDs from context.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	zc := l.logger.With()
	if id := RunIDFromContext(ctx); id != "" {
		zc = zc.Str(FieldRunID, id)
	}
	if id := CallIDFromContext(ctx); id != "" {
		zc = zc.Str(FieldCallID, id)
	}
	return &Logger{logger: zc.Logger(), component: l.component}
}

// WithContext returns a context-enriched logger from the global logger.
func WithContext(ctx context.Context) *Logger {
	return GetGlobalLogger().WithContext(ctx)
}
