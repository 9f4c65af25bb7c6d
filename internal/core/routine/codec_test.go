package routine

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/example/hearth/internal/ports/primary"
)

func TestMetadataRoundTrip(t *testing.T) {
	created := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	last := time.Date(2026, 3, 15, 7, 30, 0, 0, time.UTC)

	original := &primary.Routine{
		ID:          "mem-001",
		Name:        "Package alert",
		Description: "Announce packages on the porch",
		Trigger: primary.Trigger{
			Type:          primary.TriggerVision,
			Service:       primary.VisionServiceFrigate,
			ObjectTypes:   []string{"package", "person"},
			MinConfidence: 0.7,
			CheckInterval: 15 * time.Second,
			Camera:        "porch",
		},
		Conditions: []primary.Condition{
			{Type: primary.ConditionTimeRange, StartHour: 8, EndHour: 22},
		},
		Actions: []primary.Action{
			{Type: primary.ActionNotification, Parameters: map[string]any{"message": "Package detected"}},
			{Type: primary.ActionConnectorCall, Service: "homeassistant", Method: "call_service",
				Parameters: map[string]any{"domain": "light", "service": "turn_on"}},
		},
		Tags:            []string{"porch", "delivery"},
		Enabled:         true,
		ExecutionCount:  3,
		LastExecuted:    &last,
		CreatedAt:       created,
		CreatedFromTask: "task-42",
	}

	meta, err := EncodeMetadata(original)
	if err != nil {
		t.Fatalf("EncodeMetadata failed: %v", err)
	}

	// Simulate the store's JSON round trip: ints become float64, string
	// slices become []any.
	raw, err := json.Marshal(meta)
	if err != nil {
		t.Fatalf("marshal metadata: %v", err)
	}
	var stored map[string]any
	if err := json.Unmarshal(raw, &stored); err != nil {
		t.Fatalf("unmarshal metadata: %v", err)
	}

	decoded, err := DecodeMetadata("mem-001", stored)
	if err != nil {
		t.Fatalf("DecodeMetadata failed: %v", err)
	}

	if decoded.Name != original.Name {
		t.Errorf("name = %q, want %q", decoded.Name, original.Name)
	}
	if decoded.Description != original.Description {
		t.Errorf("description = %q, want %q", decoded.Description, original.Description)
	}
	if !TriggerConfigEqual(decoded.Trigger, original.Trigger) {
		t.Errorf("trigger did not round-trip: %+v vs %+v", decoded.Trigger, original.Trigger)
	}
	if len(decoded.Conditions) != 1 || decoded.Conditions[0].StartHour != 8 || decoded.Conditions[0].EndHour != 22 {
		t.Errorf("conditions did not round-trip: %+v", decoded.Conditions)
	}
	if len(decoded.Actions) != 2 {
		t.Fatalf("actions = %d, want 2", len(decoded.Actions))
	}
	if msg := decoded.Actions[0].Parameters["message"]; msg != "Package detected" {
		t.Errorf("action message = %v, want %q", msg, "Package detected")
	}
	if decoded.Actions[1].Service != "homeassistant" || decoded.Actions[1].Method != "call_service" {
		t.Errorf("connector action did not round-trip: %+v", decoded.Actions[1])
	}
	if len(decoded.Tags) != 2 || decoded.Tags[0] != "porch" {
		t.Errorf("tags = %v, want %v", decoded.Tags, original.Tags)
	}
	if !decoded.Enabled {
		t.Error("enabled flag lost")
	}
	if decoded.ExecutionCount != 3 {
		t.Errorf("execution count = %d, want 3", decoded.ExecutionCount)
	}
	if decoded.LastExecuted == nil || !decoded.LastExecuted.Equal(last) {
		t.Errorf("last executed = %v, want %v", decoded.LastExecuted, last)
	}
	if !decoded.CreatedAt.Equal(created) {
		t.Errorf("created at = %v, want %v", decoded.CreatedAt, created)
	}
	if decoded.CreatedFromTask != "task-42" {
		t.Errorf("created from task = %q, want %q", decoded.CreatedFromTask, "task-42")
	}
}

func TestDecodeMetadataMinimal(t *testing.T) {
	r, err := DecodeMetadata("mem-002", map[string]any{
		"name":        "Bare",
		"description": "Minimal routine",
		"enabled":     false,
	})
	if err != nil {
		t.Fatalf("DecodeMetadata failed: %v", err)
	}
	if r.Name != "Bare" || r.Enabled {
		t.Errorf("unexpected decode: %+v", r)
	}
	if r.LastExecuted != nil {
		t.Errorf("last executed = %v, want nil", r.LastExecuted)
	}
	if r.Tags != nil {
		t.Errorf("tags = %v, want nil", r.Tags)
	}
}

func TestEnabledInMetadata(t *testing.T) {
	if !EnabledInMetadata(map[string]any{"enabled": true}) {
		t.Error("enabled bag reported disabled")
	}
	if EnabledInMetadata(map[string]any{"enabled": false}) {
		t.Error("disabled bag reported enabled")
	}
	if EnabledInMetadata(map[string]any{}) {
		t.Error("missing key reported enabled")
	}
}
