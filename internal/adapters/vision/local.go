package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/example/hearth/internal/ports/secondary"
)

// Local reads detections from a JSON file maintained by an on-device
// detector process. The file holds the detector's latest frame results as
// [{"label": ..., "confidence": ...}]; each poll re-reads it.
type Local struct {
	defaultPath string
}

// NewLocal creates a Local backend. defaultPath is used when a query
// carries no ImageSource of its own.
func NewLocal(defaultPath string) *Local {
	return &Local{defaultPath: defaultPath}
}

// Detect reads and decodes the detector output file.
func (l *Local) Detect(ctx context.Context, query secondary.VisionQuery) ([]secondary.Detection, error) {
	path := query.ImageSource
	if path == "" {
		path = l.defaultPath
	}
	if path == "" {
		return nil, fmt.Errorf("local vision backend has no detections file configured")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read detections file: %w", err)
	}

	var detections []secondary.Detection
	if err := json.Unmarshal(data, &detections); err != nil {
		return nil, fmt.Errorf("failed to decode detections file: %w", err)
	}
	return detections, nil
}
