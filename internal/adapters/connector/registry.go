// Package connector implements the connector backend: an explicit map
// from service name to handler, built once at startup. Resolving handlers
// through a fixed registry makes a missing handler a construction-time
// configuration error instead of a silent runtime miss.
package connector

import (
	"fmt"
	"sort"

	"github.com/example/hearth/internal/ports/secondary"
)

// Registry implements secondary.ConnectorBackend.
type Registry struct {
	handlers map[string]secondary.ConnectorHandler
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]secondary.ConnectorHandler)}
}

// Register adds a handler for a service. Duplicate or empty service names
// are configuration errors.
func (r *Registry) Register(service string, handler secondary.ConnectorHandler) error {
	if service == "" {
		return fmt.Errorf("connector service name must not be empty")
	}
	if handler == nil {
		return fmt.Errorf("connector handler for %s must not be nil", service)
	}
	if _, exists := r.handlers[service]; exists {
		return fmt.Errorf("connector service %s registered twice", service)
	}
	r.handlers[service] = handler
	return nil
}

// Handler returns the handler for a service, if one is registered.
func (r *Registry) Handler(service string) (secondary.ConnectorHandler, bool) {
	h, ok := r.handlers[service]
	return h, ok
}

// Services returns the registered service names, sorted.
func (r *Registry) Services() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Ensure Registry implements the interface.
var _ secondary.ConnectorBackend = (*Registry)(nil)
