// Package primary defines the primary ports (driving interfaces) for the
// application. UI panels, the CLI, and the voice layer talk to the engine
// exclusively through these interfaces.
package primary

import (
	"context"
	"time"
)

// RoutineService defines the primary port for routine automation.
// Routines are persistent "if trigger and conditions then actions" rules.
type RoutineService interface {
	// CreateRoutine validates and persists a new routine and registers its
	// trigger. Routines are created enabled. Returns the store-assigned ID.
	CreateRoutine(ctx context.Context, input CreateRoutineInput) (string, error)

	// GetRoutines lists routines, optionally restricted to enabled ones.
	GetRoutines(ctx context.Context, enabledOnly bool) ([]*Routine, error)

	// GetRoutineByID retrieves a routine by ID.
	GetRoutineByID(ctx context.Context, id string) (*Routine, error)

	// UpdateRoutine merges the provided fields over the current record.
	// The trigger is re-registered only when the enabled flag or the
	// trigger config actually changed.
	UpdateRoutine(ctx context.Context, id string, input UpdateRoutineInput) (*Routine, error)

	// DeleteRoutine deregisters the trigger and removes the record.
	// Absence from the store is terminal.
	DeleteRoutine(ctx context.Context, id string) error

	// ToggleRoutine flips the enabled flag and performs the matching
	// trigger (de)registration. Returns the updated routine.
	ToggleRoutine(ctx context.Context, id string) (*Routine, error)

	// ExecuteRoutine runs a routine's action pipeline. It never returns an
	// error: all failures are captured in the returned Execution. Manual
	// execution bypasses failed conditions (force-run semantics); automatic
	// execution records a skip when conditions do not hold.
	ExecuteRoutine(ctx context.Context, id string, manual bool) *Execution

	// FireEvent executes all enabled routines with an event trigger
	// matching the given event name.
	FireEvent(ctx context.Context, eventName string) ([]*Execution, error)

	// DispatchUserAction executes all enabled routines with a user_action
	// trigger matching the given action type.
	DispatchUserAction(ctx context.Context, actionType string) ([]*Execution, error)

	// NotifyCompletion executes all enabled routines whose completion
	// trigger pattern matches the finished task's description.
	NotifyCompletion(ctx context.Context, taskDescription string) ([]*Execution, error)

	// GetExecutionHistory returns recent execution log entries for a
	// routine, newest first.
	GetExecutionHistory(ctx context.Context, id string, limit int) ([]*ExecutionLogEntry, error)
}

// Trigger type constants.
const (
	TriggerTime        = "time"
	TriggerEvent       = "event"
	TriggerStateChange = "state_change"
	TriggerUserAction  = "user_action"
	TriggerCompletion  = "completion"
	TriggerVision      = "vision_detection"
)

// Condition type constants.
const (
	ConditionTimeRange  = "time_range"
	ConditionStateCheck = "state_check"
	ConditionComparison = "comparison"
	ConditionCustom     = "custom"
)

// Action type constants.
const (
	ActionConnectorCall = "connector_call"
	ActionNotification  = "notification"
	ActionStateChange   = "state_change"
	ActionCustom        = "custom"
)

// Vision service identifiers supported by the vision_detection trigger.
const (
	VisionServiceLocal         = "local"
	VisionServiceFrigate       = "frigate"
	VisionServiceCodeProjectAI = "codeprojectai"
	VisionServiceYOLO          = "yolo"
)

// StateMonitor identifies the external entity watched by a state_change
// trigger. Property selects a nested attribute instead of the top-level
// state value when non-empty.
type StateMonitor struct {
	Service  string `json:"service"`
	Entity   string `json:"entity"`
	Property string `json:"property,omitempty"`
}

// Trigger is a tagged variant: Type selects which of the remaining fields
// are meaningful.
type Trigger struct {
	Type string `json:"type"`

	// time
	Schedule string `json:"schedule,omitempty"`

	// event
	EventName string `json:"event_name,omitempty"`

	// state_change
	Monitor *StateMonitor `json:"monitor,omitempty"`

	// user_action
	ActionType string `json:"action_type,omitempty"`

	// completion
	TaskPattern string `json:"task_pattern,omitempty"`

	// vision_detection
	Service       string        `json:"service,omitempty"`
	ObjectTypes   []string      `json:"object_types,omitempty"`
	MinConfidence float64       `json:"min_confidence,omitempty"`
	CheckInterval time.Duration `json:"check_interval,omitempty"`
	Camera        string        `json:"camera,omitempty"`
	ImageSource   string        `json:"image_source,omitempty"`
}

// Condition is a tagged variant gating routine execution. All conditions
// must pass (AND) for automatic firing.
type Condition struct {
	Type string `json:"type"`

	// time_range
	StartHour int `json:"start_hour,omitempty"`
	EndHour   int `json:"end_hour,omitempty"`

	// state_check / comparison / custom payloads
	Parameters map[string]any `json:"parameters,omitempty"`
}

// Action is one unit of externally-visible effect in a routine's pipeline.
type Action struct {
	Type       string         `json:"type"`
	Service    string         `json:"service,omitempty"`
	Method     string         `json:"method,omitempty"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// Routine represents a routine entity at the port boundary.
type Routine struct {
	ID              string
	Name            string
	Description     string
	Trigger         Trigger
	Conditions      []Condition
	Actions         []Action
	Tags            []string
	Enabled         bool
	ExecutionCount  int
	LastExecuted    *time.Time
	CreatedAt       time.Time
	CreatedFromTask string
}

// ActionResult is the outcome of one action in an execution.
type ActionResult struct {
	Success bool
	Message string
	Data    map[string]any
	Error   string
}

// Execution is one concrete run of a routine's action pipeline. It is
// transient: only the execution log entry derived from it is persisted.
type Execution struct {
	RoutineID   string
	ExecutionID string
	StartTime   time.Time
	EndTime     time.Time
	Success     bool
	Error       string
	Results     []ActionResult
}

// Execution log status constants.
const (
	ExecutionStatusSuccess = "success"
	ExecutionStatusSkipped = "skipped"
	ExecutionStatusFailed  = "failed"
)

// ExecutionLogEntry is a persisted record of one execution outcome.
type ExecutionLogEntry struct {
	ExecutionID string
	RoutineID   string
	Status      string
	Error       string
	StartedAt   string
	EndedAt     string
}

// CreateRoutineInput carries the fields accepted at creation time.
type CreateRoutineInput struct {
	Name            string
	Description     string
	Trigger         Trigger
	Conditions      []Condition
	Actions         []Action
	Tags            []string
	CreatedFromTask string
}

// UpdateRoutineInput carries a partial update. Nil fields are left
// untouched on the stored routine.
type UpdateRoutineInput struct {
	Name        *string
	Description *string
	Trigger     *Trigger
	Conditions  *[]Condition
	Actions     *[]Action
	Tags        *[]string
	Enabled     *bool
}
