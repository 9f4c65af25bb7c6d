package connector

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

// HomeAssistant talks to a Home Assistant instance over its REST API. It
// serves two ports: the connector handler for "homeassistant" actions and
// the state source polled by state_change triggers.
type HomeAssistant struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHomeAssistant creates a client for the given base URL and long-lived
// access token. An empty base URL yields a client whose calls report
// RequiresSetup instead of failing opaquely.
func NewHomeAssistant(baseURL, token string) *HomeAssistant {
	return &HomeAssistant{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// GetState fetches the current state of an entity.
func (h *HomeAssistant) GetState(ctx context.Context, entityID string) (*secondary.EntityState, error) {
	if h.baseURL == "" {
		return nil, fmt.Errorf("homeassistant base URL not configured")
	}

	body, err := h.request(ctx, http.MethodGet, "/api/states/"+entityID, nil)
	if err != nil {
		return nil, err
	}

	var payload struct {
		State      string         `json:"state"`
		Attributes map[string]any `json:"attributes"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode state for %s: %w", entityID, err)
	}
	return &secondary.EntityState{State: payload.State, Attributes: payload.Attributes}, nil
}

// Handle executes one connector capability against Home Assistant.
func (h *HomeAssistant) Handle(ctx context.Context, method string, params map[string]any) (*secondary.ConnectorResult, error) {
	if h.baseURL == "" {
		return &secondary.ConnectorResult{
			Success:           false,
			RequiresSetup:     true,
			SetupInstructions: "set homeassistant.base_url and homeassistant.token in ~/.hearth/config.json",
		}, nil
	}

	switch method {
	case "get_state":
		entity, _ := params["entity"].(string)
		if entity == "" {
			return failure("get_state requires an entity parameter"), nil
		}
		state, err := h.GetState(ctx, entity)
		if err != nil {
			return failure(err.Error()), nil
		}
		return &secondary.ConnectorResult{
			Success: true,
			Data:    map[string]any{"state": state.State, "attributes": state.Attributes},
		}, nil

	case "set_state":
		entity, _ := params["entity"].(string)
		if entity == "" {
			return failure("set_state requires an entity parameter"), nil
		}
		payload := map[string]any{"state": fmt.Sprint(params["state"])}
		if attrs, ok := params["attributes"].(map[string]any); ok {
			payload["attributes"] = attrs
		}
		if _, err := h.post(ctx, "/api/states/"+entity, payload); err != nil {
			return failure(err.Error()), nil
		}
		return &secondary.ConnectorResult{Success: true}, nil

	case "call_service":
		domain, _ := params["domain"].(string)
		service, _ := params["service"].(string)
		if domain == "" || service == "" {
			return failure("call_service requires domain and service parameters"), nil
		}
		data, _ := params["data"].(map[string]any)
		if _, err := h.post(ctx, fmt.Sprintf("/api/services/%s/%s", domain, service), data); err != nil {
			return failure(err.Error()), nil
		}
		return &secondary.ConnectorResult{Success: true}, nil

	default:
		return failure(fmt.Sprintf("unknown homeassistant method: %s", method)), nil
	}
}

func (h *HomeAssistant) post(ctx context.Context, path string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(encoded)
	}
	return h.request(ctx, http.MethodPost, path, body)
}

func (h *HomeAssistant) request(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+h.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("homeassistant %s %s: status %d", method, path, resp.StatusCode)
	}
	return data, nil
}

func failure(message string) *secondary.ConnectorResult {
	return &secondary.ConnectorResult{Success: false, Error: message}
}

// Ensure HomeAssistant implements both ports.
var (
	_ secondary.ConnectorHandler = (*HomeAssistant)(nil)
	_ secondary.StateSource      = (*HomeAssistant)(nil)
)
