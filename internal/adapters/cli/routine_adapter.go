// Package cli provides thin CLI adapters that translate between CLI
// concerns and application services. Adapters handle output formatting
// but delegate business logic to services.
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/example/hearth/internal/ports/primary"
)

// RoutineAdapter is a thin adapter that translates CLI operations to
// RoutineService calls. It depends only on the RoutineService interface,
// enabling easy testing with mocks.
type RoutineAdapter struct {
	service primary.RoutineService
	out     io.Writer
}

// NewRoutineAdapter creates a new RoutineAdapter with the given service.
func NewRoutineAdapter(service primary.RoutineService, out io.Writer) *RoutineAdapter {
	return &RoutineAdapter{
		service: service,
		out:     out,
	}
}

// Create creates a new routine.
func (a *RoutineAdapter) Create(ctx context.Context, input primary.CreateRoutineInput) error {
	id, err := a.service.CreateRoutine(ctx, input)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Created routine %s: %s\n", id, input.Name)
	fmt.Fprintf(a.out, "  Trigger: %s\n", describeTrigger(input.Trigger))
	return nil
}

// List lists routines, optionally only enabled ones.
func (a *RoutineAdapter) List(ctx context.Context, enabledOnly bool) error {
	routines, err := a.service.GetRoutines(ctx, enabledOnly)
	if err != nil {
		return fmt.Errorf("failed to list routines: %w", err)
	}

	if len(routines) == 0 {
		fmt.Fprintln(a.out, "No routines found")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATE\tTRIGGER\tRUNS\tNAME")
	for _, r := range routines {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			r.ID, enabledLabel(r.Enabled), r.Trigger.Type, r.ExecutionCount, r.Name)
	}
	return w.Flush()
}

// Show displays details for a single routine.
func (a *RoutineAdapter) Show(ctx context.Context, id string) error {
	r, err := a.service.GetRoutineByID(ctx, id)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "\nRoutine: %s\n", r.ID)
	fmt.Fprintf(a.out, "Name:        %s\n", r.Name)
	fmt.Fprintf(a.out, "Description: %s\n", r.Description)
	fmt.Fprintf(a.out, "State:       %s\n", enabledLabel(r.Enabled))
	fmt.Fprintf(a.out, "Trigger:     %s\n", describeTrigger(r.Trigger))
	if len(r.Conditions) > 0 {
		fmt.Fprintf(a.out, "Conditions:  %d\n", len(r.Conditions))
		for _, c := range r.Conditions {
			fmt.Fprintf(a.out, "  - %s\n", describeCondition(c))
		}
	}
	fmt.Fprintf(a.out, "Actions:     %d\n", len(r.Actions))
	for _, action := range r.Actions {
		fmt.Fprintf(a.out, "  - %s\n", describeAction(action))
	}
	if len(r.Tags) > 0 {
		fmt.Fprintf(a.out, "Tags:        %s\n", strings.Join(r.Tags, ", "))
	}
	fmt.Fprintf(a.out, "Executions:  %d\n", r.ExecutionCount)
	if r.LastExecuted != nil {
		fmt.Fprintf(a.out, "Last run:    %s\n", r.LastExecuted.Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintf(a.out, "Created:     %s\n", r.CreatedAt.Format("2006-01-02 15:04:05"))
	if r.CreatedFromTask != "" {
		fmt.Fprintf(a.out, "From task:   %s\n", r.CreatedFromTask)
	}
	return nil
}

// Delete deletes a routine.
func (a *RoutineAdapter) Delete(ctx context.Context, id string) error {
	if err := a.service.DeleteRoutine(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Deleted routine %s\n", id)
	return nil
}

// Toggle flips a routine's enabled flag.
func (a *RoutineAdapter) Toggle(ctx context.Context, id string) error {
	r, err := a.service.ToggleRoutine(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Routine %s is now %s\n", id, enabledLabel(r.Enabled))
	return nil
}

// Run executes a routine manually and prints the outcome.
func (a *RoutineAdapter) Run(ctx context.Context, id string) error {
	exec := a.service.ExecuteRoutine(ctx, id, true)

	if exec.Success {
		fmt.Fprintf(a.out, "✓ Executed routine %s (%s)\n", id, exec.ExecutionID)
	} else {
		fmt.Fprintf(a.out, "✗ Routine %s failed: %s\n", id, exec.Error)
	}
	for i, result := range exec.Results {
		marker := color.New(color.FgGreen).Sprint("ok")
		detail := result.Message
		if !result.Success {
			marker = color.New(color.FgRed).Sprint("failed")
			detail = result.Error
		}
		fmt.Fprintf(a.out, "  action %d: %s %s\n", i+1, marker, detail)
	}
	return nil
}

// History lists recent execution outcomes for a routine.
func (a *RoutineAdapter) History(ctx context.Context, id string, limit int) error {
	entries, err := a.service.GetExecutionHistory(ctx, id, limit)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Fprintln(a.out, "No executions recorded")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STARTED\tSTATUS\tERROR")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.StartedAt, statusLabel(e.Status), e.Error)
	}
	return w.Flush()
}

// Fired prints the result of firing externally-driven triggers.
func (a *RoutineAdapter) Fired(executions []*primary.Execution) {
	if len(executions) == 0 {
		fmt.Fprintln(a.out, "No matching routines")
		return
	}
	for _, exec := range executions {
		if exec.Success {
			fmt.Fprintf(a.out, "✓ Routine %s executed\n", exec.RoutineID)
		} else {
			fmt.Fprintf(a.out, "✗ Routine %s: %s\n", exec.RoutineID, exec.Error)
		}
	}
}

func enabledLabel(enabled bool) string {
	if enabled {
		return color.New(color.FgGreen).Sprint("enabled")
	}
	return color.New(color.FgYellow).Sprint("disabled")
}

func statusLabel(status string) string {
	switch status {
	case primary.ExecutionStatusSuccess:
		return color.New(color.FgGreen).Sprint(status)
	case primary.ExecutionStatusFailed:
		return color.New(color.FgRed).Sprint(status)
	default:
		return status
	}
}

func describeTrigger(t primary.Trigger) string {
	switch t.Type {
	case primary.TriggerTime:
		return fmt.Sprintf("time (%s)", t.Schedule)
	case primary.TriggerEvent:
		return fmt.Sprintf("event (%s)", t.EventName)
	case primary.TriggerStateChange:
		if t.Monitor != nil {
			target := t.Monitor.Entity
			if t.Monitor.Property != "" {
				target += "." + t.Monitor.Property
			}
			return fmt.Sprintf("state change (%s)", target)
		}
		return "state change"
	case primary.TriggerUserAction:
		return fmt.Sprintf("user action (%s)", t.ActionType)
	case primary.TriggerCompletion:
		return fmt.Sprintf("completion (%s)", t.TaskPattern)
	case primary.TriggerVision:
		return fmt.Sprintf("vision (%s: %s)", t.Service, strings.Join(t.ObjectTypes, ", "))
	default:
		return t.Type
	}
}

func describeCondition(c primary.Condition) string {
	if c.Type == primary.ConditionTimeRange {
		return fmt.Sprintf("time_range %02d:00-%02d:00", c.StartHour, c.EndHour)
	}
	return c.Type
}

func describeAction(a primary.Action) string {
	switch a.Type {
	case primary.ActionConnectorCall:
		return fmt.Sprintf("connector_call %s.%s", a.Service, a.Method)
	case primary.ActionNotification:
		if msg, ok := a.Parameters["message"].(string); ok && msg != "" {
			return fmt.Sprintf("notification %q", msg)
		}
		return "notification"
	default:
		return a.Type
	}
}
