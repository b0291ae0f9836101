package provider

import "context"

// Provider is the minimal surface a pluggable backend exposes: a stable
// name for registry lookup and a health probe.
type Provider interface {
	// Name identifies the backend within a registry.
	Name() string
	// IsAvailable reports whether the backend can serve calls right now.
	IsAvailable(ctx context.Context) bool
}

// Factory builds a provider from a loosely typed config map, typically a
// decoded config file section. Unknown keys should be ignored.
type Factory[T Provider] func(cfg map[string]any) (T, error)

// Closeable is implemented by providers holding connections or other
// resources the owner should release. Registry.Close honors it.
type Closeable interface {
	Close() error
}
