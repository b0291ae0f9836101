package completion

import (
	"context"

	"github.com/skillsenselab/refinekit/provider"
)

// Provider is the interface that completion backends must implement.
type Provider interface {
	provider.Provider // embeds Name() and IsAvailable()

	// Complete sends a completion request and blocks until the full
	// response is available. Transport failures are returned as *Error.
	Complete(ctx context.Context, req Request) (*Response, error)
}

// NewRegistry creates a registry for completion providers. Backends
// register factories under their provider name; Create builds and caches
// configured instances.
func NewRegistry() *provider.Registry[Provider] {
	return provider.NewRegistry[Provider]()
}
