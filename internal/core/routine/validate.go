package routine

import (
	"strings"

	"github.com/example/hearth/internal/ports/primary"
)

// ValidateNew checks the user-correctable constraints on a new routine:
// non-empty name and description, at least one action.
func ValidateNew(input primary.CreateRoutineInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if strings.TrimSpace(input.Description) == "" {
		return &ValidationError{Field: "description", Reason: "must not be empty"}
	}
	if len(input.Actions) == 0 {
		return &ValidationError{Field: "actions", Reason: "must contain at least one action"}
	}
	return nil
}

// TriggerConfigEqual reports whether two triggers are configured
// identically. Used to decide whether an update needs to tear down and
// re-register the live mechanism.
func TriggerConfigEqual(a, b primary.Trigger) bool {
	if a.Type != b.Type ||
		a.Schedule != b.Schedule ||
		a.EventName != b.EventName ||
		a.ActionType != b.ActionType ||
		a.TaskPattern != b.TaskPattern ||
		a.Service != b.Service ||
		a.MinConfidence != b.MinConfidence ||
		a.CheckInterval != b.CheckInterval ||
		a.Camera != b.Camera ||
		a.ImageSource != b.ImageSource {
		return false
	}
	if (a.Monitor == nil) != (b.Monitor == nil) {
		return false
	}
	if a.Monitor != nil && *a.Monitor != *b.Monitor {
		return false
	}
	if len(a.ObjectTypes) != len(b.ObjectTypes) {
		return false
	}
	for i := range a.ObjectTypes {
		if a.ObjectTypes[i] != b.ObjectTypes[i] {
			return false
		}
	}
	return true
}
