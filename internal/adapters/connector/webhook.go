package connector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/example/hearth/internal/ports/secondary"
)

// Webhook is a generic outbound-HTTP connector. It lets routines call
// arbitrary endpoints without a dedicated integration.
type Webhook struct {
	client *http.Client
}

// NewWebhook creates a Webhook connector.
func NewWebhook() *Webhook {
	return &Webhook{client: &http.Client{Timeout: 15 * time.Second}}
}

// Handle executes one webhook call. The only method is "post": params
// carry the target "url" and an optional JSON "payload".
func (w *Webhook) Handle(ctx context.Context, method string, params map[string]any) (*secondary.ConnectorResult, error) {
	if method != "post" {
		return failure(fmt.Sprintf("unknown webhook method: %s", method)), nil
	}

	url, _ := params["url"].(string)
	if url == "" {
		return failure("post requires a url parameter"), nil
	}

	var body []byte
	if payload, ok := params["payload"]; ok {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return failure(fmt.Sprintf("failed to encode payload: %v", err)), nil
		}
		body = encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return failure(err.Error()), nil
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return failure(err.Error()), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return failure(fmt.Sprintf("webhook %s: status %d", url, resp.StatusCode)), nil
	}
	return &secondary.ConnectorResult{
		Success: true,
		Data:    map[string]any{"status": resp.StatusCode},
	}, nil
}

// Ensure Webhook implements the handler port.
var _ secondary.ConnectorHandler = (*Webhook)(nil)
