package routine

import (
	"errors"
	"testing"
	"time"

	"github.com/example/hearth/internal/ports/primary"
)

func TestValidateNew(t *testing.T) {
	valid := primary.CreateRoutineInput{
		Name:        "Morning Briefing",
		Description: "Daily summary",
		Trigger:     primary.Trigger{Type: primary.TriggerTime, Schedule: "every day"},
		Actions:     []primary.Action{{Type: primary.ActionNotification}},
	}

	if err := ValidateNew(valid); err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*primary.CreateRoutineInput)
		field  string
	}{
		{
			name:   "empty name",
			mutate: func(in *primary.CreateRoutineInput) { in.Name = "  " },
			field:  "name",
		},
		{
			name:   "empty description",
			mutate: func(in *primary.CreateRoutineInput) { in.Description = "" },
			field:  "description",
		},
		{
			name:   "no actions",
			mutate: func(in *primary.CreateRoutineInput) { in.Actions = nil },
			field:  "actions",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := valid
			tt.mutate(&input)
			err := ValidateNew(input)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.field {
				t.Errorf("field = %q, want %q", verr.Field, tt.field)
			}
		})
	}
}

func TestTriggerConfigEqual(t *testing.T) {
	base := primary.Trigger{
		Type:          primary.TriggerVision,
		Service:       primary.VisionServiceFrigate,
		ObjectTypes:   []string{"person"},
		MinConfidence: 0.5,
		CheckInterval: 10 * time.Second,
		Camera:        "porch",
	}

	if !TriggerConfigEqual(base, base) {
		t.Error("trigger not equal to itself")
	}

	changed := base
	changed.ObjectTypes = []string{"person", "dog"}
	if TriggerConfigEqual(base, changed) {
		t.Error("object type change not detected")
	}

	monA := primary.Trigger{
		Type:    primary.TriggerStateChange,
		Monitor: &primary.StateMonitor{Service: "homeassistant", Entity: "sensor.door"},
	}
	monB := primary.Trigger{
		Type:    primary.TriggerStateChange,
		Monitor: &primary.StateMonitor{Service: "homeassistant", Entity: "sensor.window"},
	}
	if TriggerConfigEqual(monA, monB) {
		t.Error("monitor entity change not detected")
	}
	if TriggerConfigEqual(monA, primary.Trigger{Type: primary.TriggerStateChange}) {
		t.Error("nil monitor treated as equal to non-nil")
	}

	// Distinct pointers with identical contents are equal.
	monC := primary.Trigger{
		Type:    primary.TriggerStateChange,
		Monitor: &primary.StateMonitor{Service: "homeassistant", Entity: "sensor.door"},
	}
	if !TriggerConfigEqual(monA, monC) {
		t.Error("equivalent monitors reported unequal")
	}
}
