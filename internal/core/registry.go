package core

import (
	"fmt"
	"sort"
	"sync"
)

// Handler is the interface implemented by all ecosystem manifest handlers.
type Handler interface {
	// Ecosystem returns the PURL type for this handler (e.g. "opam").
	Ecosystem() string

	// Match reports whether the file at path is a manifest this handler reads.
	Match(path string) bool

	// Parse extracts normalized package data from the manifest at path.
	Parse(path string) (*PackageData, error)

	// URLs returns the URL builder for this ecosystem.
	URLs() URLBuilder
}

// Factory creates a handler instance.
type Factory func() Handler

var (
	factories = make(map[string]Factory)
	mu        sync.RWMutex
)

// Register adds a handler factory to the global registry.
// ecosystem is the PURL type (e.g. "opam").
func Register(ecosystem string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[ecosystem] = factory
}

// New creates a handler for the given ecosystem.
func New(ecosystem string) (Handler, error) {
	mu.RLock()
	factory, ok := factories[ecosystem]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown ecosystem: %s", ecosystem)
	}

	return factory(), nil
}

// SupportedEcosystems returns all registered ecosystem types.
func SupportedEcosystems() []string {
	mu.RLock()
	defer mu.RUnlock()

	ecosystems := make([]string, 0, len(factories))
	for eco := range factories {
		ecosystems = append(ecosystems, eco)
	}
	sort.Strings(ecosystems)
	return ecosystems
}

// HandlerFor returns a handler whose Match accepts path, or nil when no
// registered handler recognizes the file. Ecosystems are tried in sorted
// order so the result is deterministic.
func HandlerFor(path string) Handler {
	mu.RLock()
	names := make([]string, 0, len(factories))
	for eco := range factories {
		names = append(names, eco)
	}
	sort.Strings(names)
	handlers := make([]Handler, 0, len(names))
	for _, eco := range names {
		handlers = append(handlers, factories[eco]())
	}
	mu.RUnlock()

	for _, h := range handlers {
		if h.Match(path) {
			return h
		}
	}
	return nil
}
