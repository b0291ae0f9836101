// Package provider implements a generic provider framework using Go generics
// for swappable backends.
//
// It provides a registry for managing provider implementations with
// factory-based instantiation and availability checking. Capability packages
// (such as completion) build typed registries on top of it:
//
//	reg := provider.NewRegistry[completion.Provider]()
//	reg.RegisterFactory("ollama", ollama.Factory())
//	p, err := reg.Create("ollama", map[string]any{"model": "qwen2.5:1.5b"})
//
// Providers that hold resources may implement [Closeable]; Registry.Close
// releases every cached instance that does.
package provider
