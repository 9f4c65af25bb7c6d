package app

import (
	"context"
	"fmt"
	"log"

	"github.com/example/hearth/internal/ports/primary"
	"github.com/example/hearth/internal/ports/secondary"
)

// ActionDispatcher executes a routine's ordered action list, strictly
// sequentially, producing one result per action. Failures are captured in
// the result, never thrown past the pipeline: one bad action must not
// abort the actions after it.
type ActionDispatcher struct {
	connectors secondary.ConnectorBackend
	notifier   secondary.Notifier
}

// NewActionDispatcher creates an ActionDispatcher with injected backends.
func NewActionDispatcher(connectors secondary.ConnectorBackend, notifier secondary.Notifier) *ActionDispatcher {
	return &ActionDispatcher{
		connectors: connectors,
		notifier:   notifier,
	}
}

// Run executes all actions in order and returns their results.
func (d *ActionDispatcher) Run(ctx context.Context, actions []primary.Action, r *primary.Routine) []primary.ActionResult {
	results := make([]primary.ActionResult, 0, len(actions))
	for _, action := range actions {
		results = append(results, d.runOne(ctx, action, r))
	}
	return results
}

func (d *ActionDispatcher) runOne(ctx context.Context, action primary.Action, r *primary.Routine) primary.ActionResult {
	switch action.Type {
	case primary.ActionConnectorCall:
		return d.connectorCall(ctx, action.Service, action.Method, action.Parameters)

	case primary.ActionNotification:
		return d.notification(ctx, action, r)

	case primary.ActionStateChange:
		// State writes go through the homeassistant handler; there is no
		// separate state-write backend.
		return d.connectorCall(ctx, "homeassistant", "set_state", action.Parameters)

	case primary.ActionCustom:
		return primary.ActionResult{
			Success: false,
			Error:   "unsupported action type: custom",
		}

	default:
		return primary.ActionResult{
			Success: false,
			Error:   fmt.Sprintf("unsupported action type: %s", action.Type),
		}
	}
}

func (d *ActionDispatcher) connectorCall(ctx context.Context, service, method string, params map[string]any) primary.ActionResult {
	handler, ok := d.connectors.Handler(service)
	if !ok {
		return primary.ActionResult{
			Success: false,
			Error:   fmt.Sprintf("no handler registered for service: %s", service),
		}
	}

	result, err := handler.Handle(ctx, method, params)
	if err != nil {
		return primary.ActionResult{Success: false, Error: err.Error()}
	}

	out := primary.ActionResult{
		Success: result.Success,
		Data:    result.Data,
		Error:   result.Error,
	}
	if result.RequiresSetup {
		out.Success = false
		out.Error = fmt.Sprintf("service %s requires setup: %s", service, result.SetupInstructions)
	}
	return out
}

func (d *ActionDispatcher) notification(ctx context.Context, action primary.Action, r *primary.Routine) primary.ActionResult {
	message, _ := action.Parameters["message"].(string)
	if message == "" {
		message = fmt.Sprintf("Routine %q executed", r.Name)
	}

	if err := d.notifier.Notify(ctx, r.Name, message); err != nil {
		// Delivery is best effort: the notification action itself still
		// succeeds, carrying the message it would have shown.
		log.Printf("actions: notification delivery for %s: %v", r.ID, err)
	}

	return primary.ActionResult{Success: true, Message: message}
}
