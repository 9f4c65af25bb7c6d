// Package vision implements the vision-detection source: one backend per
// supported detection service, each normalizing its wire format to the
// shared Detection shape before the scheduler compares labels.
package vision

import (
	"context"
	"fmt"

	"github.com/example/hearth/internal/ports/secondary"
)

// Backend is one detection provider.
type Backend interface {
	Detect(ctx context.Context, query secondary.VisionQuery) ([]secondary.Detection, error)
}

// Source implements secondary.VisionSource by routing queries to the
// backend named in the query.
type Source struct {
	backends map[string]Backend
}

// NewSource creates a Source over the given backends, keyed by service
// name.
func NewSource(backends map[string]Backend) *Source {
	return &Source{backends: backends}
}

// Detect routes one poll to the configured backend.
func (s *Source) Detect(ctx context.Context, query secondary.VisionQuery) ([]secondary.Detection, error) {
	backend, ok := s.backends[query.Service]
	if !ok {
		return nil, fmt.Errorf("no vision backend configured for service: %s", query.Service)
	}
	return backend.Detect(ctx, query)
}

// Ensure Source implements the interface.
var _ secondary.VisionSource = (*Source)(nil)
