package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/example/hearth/internal/ports/secondary"
)

// Frigate polls a Frigate NVR for recent detection events.
type Frigate struct {
	baseURL string
	client  *http.Client
}

// NewFrigate creates a Frigate backend for the given base URL.
func NewFrigate(baseURL string) *Frigate {
	return &Frigate{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Detect fetches recent events, optionally restricted to one camera, and
// maps each event's label and top score to a Detection.
func (f *Frigate) Detect(ctx context.Context, query secondary.VisionQuery) ([]secondary.Detection, error) {
	endpoint := f.baseURL + "/api/events?limit=20"
	if query.Camera != "" {
		endpoint += "&camera=" + url.QueryEscape(query.Camera)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("frigate events: status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var events []struct {
		Label    string  `json:"label"`
		TopScore float64 `json:"top_score"`
	}
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("failed to decode frigate events: %w", err)
	}

	detections := make([]secondary.Detection, 0, len(events))
	for _, event := range events {
		detections = append(detections, secondary.Detection{
			Label:      event.Label,
			Confidence: event.TopScore,
		})
	}
	return detections, nil
}
