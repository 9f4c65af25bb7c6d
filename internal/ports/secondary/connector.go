package secondary

import "context"

// ConnectorResult is the uniform envelope returned by every connector
// capability: success flag plus optional data, error, and setup guidance.
type ConnectorResult struct {
	Success           bool
	Data              map[string]any
	Error             string
	RequiresSetup     bool
	SetupInstructions string
}

// ConnectorHandler executes one external capability. Method names are
// capability-specific (e.g. "call_service", "set_state" for homeassistant).
type ConnectorHandler interface {
	Handle(ctx context.Context, method string, params map[string]any) (*ConnectorResult, error)
}

// ConnectorBackend resolves service names to handlers. The handler set is
// fixed at construction time: a missing handler is a configuration error
// surfaced when the registry is built, not a silent runtime miss.
type ConnectorBackend interface {
	// Handler returns the handler for a service, if one is registered.
	Handler(service string) (ConnectorHandler, bool)

	// Services returns the registered service names, sorted.
	Services() []string
}

// EntityState is the current state of an external entity as reported by
// the state-query source.
type EntityState struct {
	State      string
	Attributes map[string]any
}

// StateSource defines the secondary port for state queries. Used by the
// homeassistant state_change trigger and state_check conditions.
type StateSource interface {
	GetState(ctx context.Context, entityID string) (*EntityState, error)
}

// Detection is one detected object as reported by a vision backend,
// normalized to a label plus confidence in [0, 1].
type Detection struct {
	Label      string
	Confidence float64
}

// VisionQuery selects a vision backend and its inputs for one poll.
type VisionQuery struct {
	Service     string
	Camera      string
	ImageSource string
}

// VisionSource defines the secondary port for vision detection polls.
type VisionSource interface {
	Detect(ctx context.Context, query VisionQuery) ([]Detection, error)
}

// Notifier defines the secondary port for OS-level notifications.
type Notifier interface {
	Notify(ctx context.Context, title, message string) error
}
