package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"time"

	"github.com/example/hearth/internal/ports/secondary"
)

// CodeProjectAI sends a still image to a CodeProject.AI server's object
// detection endpoint. The query's ImageSource is the path of the image to
// analyze (typically a camera snapshot written by another process).
type CodeProjectAI struct {
	baseURL string
	client  *http.Client
}

// NewCodeProjectAI creates a CodeProject.AI backend for the given base URL.
func NewCodeProjectAI(baseURL string) *CodeProjectAI {
	return &CodeProjectAI{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Detect uploads the snapshot and maps each prediction to a Detection.
func (c *CodeProjectAI) Detect(ctx context.Context, query secondary.VisionQuery) ([]secondary.Detection, error) {
	if query.ImageSource == "" {
		return nil, fmt.Errorf("codeprojectai requires an image source path")
	}
	image, err := os.ReadFile(query.ImageSource)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("image", "snapshot.jpg")
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(image); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/vision/detection", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("codeprojectai detection: status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Predictions []struct {
			Label      string  `json:"label"`
			Confidence float64 `json:"confidence"`
		} `json:"predictions"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode codeprojectai response: %w", err)
	}

	detections := make([]secondary.Detection, 0, len(payload.Predictions))
	for _, p := range payload.Predictions {
		detections = append(detections, secondary.Detection{
			Label:      p.Label,
			Confidence: p.Confidence,
		})
	}
	return detections, nil
}
