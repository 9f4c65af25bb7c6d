package routine

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/hearth/internal/ports/primary"
)

// Metadata keys used inside the memory record's metadata bag. The record
// store itself is generic; everything routine-specific rides under these
// keys, with trigger/conditions/actions serialized as encoded text.
const (
	metaName            = "name"
	metaDescription     = "description"
	metaTrigger         = "trigger"
	metaConditions      = "conditions"
	metaActions         = "actions"
	metaTags            = "tags"
	metaEnabled         = "enabled"
	metaExecutionCount  = "execution_count"
	metaLastExecuted    = "last_executed"
	metaCreatedAt       = "created_at"
	metaCreatedFromTask = "created_from_task"
)

// MemoryKind is the record kind under which routines are stored.
const MemoryKind = "routine"

// Summary builds the free-text content stored alongside the metadata.
// The store uses it for search and embedding; it carries no state.
func Summary(r *primary.Routine) string {
	return fmt.Sprintf("Routine: %s - %s (trigger: %s)", r.Name, r.Description, r.Trigger.Type)
}

// EncodeMetadata serializes a routine into the generic metadata bag.
// Trigger, conditions, and actions are stored as JSON text so they
// round-trip losslessly through any metadata encoding the store applies.
func EncodeMetadata(r *primary.Routine) (map[string]any, error) {
	trigger, err := json.Marshal(r.Trigger)
	if err != nil {
		return nil, fmt.Errorf("encode trigger: %w", err)
	}
	conditions, err := json.Marshal(r.Conditions)
	if err != nil {
		return nil, fmt.Errorf("encode conditions: %w", err)
	}
	actions, err := json.Marshal(r.Actions)
	if err != nil {
		return nil, fmt.Errorf("encode actions: %w", err)
	}

	meta := map[string]any{
		metaName:           r.Name,
		metaDescription:    r.Description,
		metaTrigger:        string(trigger),
		metaConditions:     string(conditions),
		metaActions:        string(actions),
		metaEnabled:        r.Enabled,
		metaExecutionCount: r.ExecutionCount,
		metaCreatedAt:      r.CreatedAt.UTC().Format(time.RFC3339),
	}
	if len(r.Tags) > 0 {
		meta[metaTags] = r.Tags
	}
	if r.LastExecuted != nil {
		meta[metaLastExecuted] = r.LastExecuted.UTC().Format(time.RFC3339)
	}
	if r.CreatedFromTask != "" {
		meta[metaCreatedFromTask] = r.CreatedFromTask
	}
	return meta, nil
}

// DecodeMetadata rebuilds a routine from a memory record's metadata bag.
// The id is taken from the record, not the bag. Numeric values arrive as
// float64 when the bag has been through a JSON round trip.
func DecodeMetadata(id string, meta map[string]any) (*primary.Routine, error) {
	r := &primary.Routine{
		ID:              id,
		Name:            stringValue(meta[metaName]),
		Description:     stringValue(meta[metaDescription]),
		Enabled:         boolValue(meta[metaEnabled]),
		ExecutionCount:  intValue(meta[metaExecutionCount]),
		CreatedFromTask: stringValue(meta[metaCreatedFromTask]),
	}

	if raw := stringValue(meta[metaTrigger]); raw != "" {
		if err := json.Unmarshal([]byte(raw), &r.Trigger); err != nil {
			return nil, fmt.Errorf("decode trigger for %s: %w", id, err)
		}
	}
	if raw := stringValue(meta[metaConditions]); raw != "" {
		if err := json.Unmarshal([]byte(raw), &r.Conditions); err != nil {
			return nil, fmt.Errorf("decode conditions for %s: %w", id, err)
		}
	}
	if raw := stringValue(meta[metaActions]); raw != "" {
		if err := json.Unmarshal([]byte(raw), &r.Actions); err != nil {
			return nil, fmt.Errorf("decode actions for %s: %w", id, err)
		}
	}

	r.Tags = stringSlice(meta[metaTags])

	if raw := stringValue(meta[metaCreatedAt]); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("decode created_at for %s: %w", id, err)
		}
		r.CreatedAt = t
	}
	if raw := stringValue(meta[metaLastExecuted]); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("decode last_executed for %s: %w", id, err)
		}
		r.LastExecuted = &t
	}

	return r, nil
}

// EnabledInMetadata reports whether a metadata bag marks its routine
// enabled, without a full decode.
func EnabledInMetadata(meta map[string]any) bool {
	return boolValue(meta[metaEnabled])
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

func boolValue(v any) bool {
	b, _ := v.(bool)
	return b
}

func intValue(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

func stringSlice(v any) []string {
	switch s := v.(type) {
	case []string:
		return s
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	}
	return nil
}
