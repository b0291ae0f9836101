// Package completion defines the text-completion capability used by the
// refinement engine: a provider-agnostic Request/Response contract, a typed
// transport error family, a provider registry, and composable logging/metrics
// decorators.
//
// # Contract
//
// A backend implements Provider: identity (Name), a cheap health probe
// (IsAvailable), and a single blocking Complete call. Backends live in
// subpackages (completion/openai, completion/ollama) and register themselves
// through factories:
//
//	reg := completion.NewRegistry()
//	reg.RegisterFactory("ollama", ollama.Factory())
//	prov, err := reg.Create("ollama", map[string]any{"model": "llama3.1"})
//
// # Errors
//
// Transport failures are reported as *completion.Error with a classification
// code and a Retryable flag. ClassifyStatus maps HTTP status codes to typed
// errors: 408, 429 and 5xx are retryable, other 4xx are terminal. Callers
// select retry behavior with IsRetryable:
//
//	resp, err := resilience.Retry(ctx, resilience.RetryConfig{
//	    RetryIf: completion.IsRetryable,
//	}, func() (*completion.Response, error) {
//	    return prov.Complete(ctx, req)
//	})
//
// # Decorators
//
// WithLogging, WithMetrics and WithTracing wrap a Provider and observe
// every Complete call without changing its behavior:
//
//	prov = completion.WithMetrics(completion.WithLogging(prov, log), metrics)
package completion
