package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/example/hearth/internal/ports/secondary"
)

// YOLO talks to a self-hosted YOLO inference server. The server pulls the
// frame itself from the source the request names (a camera stream URL or
// snapshot path it can reach).
type YOLO struct {
	baseURL string
	client  *http.Client
}

// NewYOLO creates a YOLO backend for the given base URL.
func NewYOLO(baseURL string) *YOLO {
	return &YOLO{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Detect requests one inference pass and maps the result to Detections.
func (y *YOLO) Detect(ctx context.Context, query secondary.VisionQuery) ([]secondary.Detection, error) {
	payload := map[string]any{"source": query.ImageSource}
	if query.Camera != "" {
		payload["camera"] = query.Camera
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, y.baseURL+"/detect", bytes.NewReader(encoded))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := y.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yolo detect: status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var result struct {
		Detections []struct {
			Name       string  `json:"name"`
			Confidence float64 `json:"confidence"`
		} `json:"detections"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode yolo response: %w", err)
	}

	detections := make([]secondary.Detection, 0, len(result.Detections))
	for _, d := range result.Detections {
		detections = append(detections, secondary.Detection{
			Label:      d.Name,
			Confidence: d.Confidence,
		})
	}
	return detections, nil
}
