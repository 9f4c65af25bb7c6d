package app

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/example/hearth/internal/clock"
	"github.com/example/hearth/internal/core/routine"
	"github.com/example/hearth/internal/ctxutil"
	"github.com/example/hearth/internal/ports/primary"
	"github.com/example/hearth/internal/ports/secondary"
)

// routineImportance is the importance assigned to routine records in the
// memory store. Routines are operational state, not conversational
// memory, so they sit above the default but below pinned facts.
const routineImportance = 0.6

// RoutineServiceImpl implements the RoutineService interface. It owns
// CRUD over routines via the memory store, orchestrates the scheduler,
// the condition evaluator, and the action dispatcher, and records
// execution outcomes.
type RoutineServiceImpl struct {
	store      secondary.MemoryStore
	execLog    secondary.ExecutionLog
	scheduler  *Scheduler
	evaluator  *ConditionEvaluator
	dispatcher *ActionDispatcher
	clock      clock.Clock
}

// NewRoutineService creates a RoutineService with injected dependencies
// and binds the scheduler's execution callback to it.
func NewRoutineService(
	store secondary.MemoryStore,
	execLog secondary.ExecutionLog,
	scheduler *Scheduler,
	evaluator *ConditionEvaluator,
	dispatcher *ActionDispatcher,
	clk clock.Clock,
) *RoutineServiceImpl {
	s := &RoutineServiceImpl{
		store:      store,
		execLog:    execLog,
		scheduler:  scheduler,
		evaluator:  evaluator,
		dispatcher: dispatcher,
		clock:      clk,
	}
	scheduler.Bind(func(ctx context.Context, routineID string) {
		s.ExecuteRoutine(ctx, routineID, false)
	})
	return s
}

// CreateRoutine validates, persists, and registers a new routine.
func (s *RoutineServiceImpl) CreateRoutine(ctx context.Context, input primary.CreateRoutineInput) (string, error) {
	if err := routine.ValidateNew(input); err != nil {
		return "", err
	}
	for _, c := range input.Conditions {
		if c.Type == primary.ConditionTimeRange && c.StartHour >= c.EndHour {
			log.Printf("routines: time_range %d-%d on %q never matches (wrapping ranges are not supported)", c.StartHour, c.EndHour, input.Name)
		}
	}

	r := &primary.Routine{
		Name:            input.Name,
		Description:     input.Description,
		Trigger:         input.Trigger,
		Conditions:      input.Conditions,
		Actions:         input.Actions,
		Tags:            input.Tags,
		Enabled:         true,
		CreatedAt:       s.clock.Now(),
		CreatedFromTask: input.CreatedFromTask,
	}

	metadata, err := routine.EncodeMetadata(r)
	if err != nil {
		return "", fmt.Errorf("failed to encode routine: %w", err)
	}

	id, err := s.store.AddMemory(ctx, routine.Summary(r), ctxutil.AuthorFromContext(ctx), routine.MemoryKind, "", routineImportance, metadata)
	if err != nil {
		return "", fmt.Errorf("failed to persist routine: %w", err)
	}
	r.ID = id

	s.scheduler.Register(r)
	return id, nil
}

// GetRoutines lists routines, optionally only enabled ones.
func (s *RoutineServiceImpl) GetRoutines(ctx context.Context, enabledOnly bool) ([]*primary.Routine, error) {
	records, err := s.store.ListRoutines(ctx, enabledOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list routines: %w", err)
	}

	routines := make([]*primary.Routine, 0, len(records))
	for _, record := range records {
		r, err := routine.DecodeMetadata(record.ID, record.Metadata)
		if err != nil {
			return nil, err
		}
		routines = append(routines, r)
	}
	return routines, nil
}

// GetRoutineByID retrieves a routine by ID.
func (s *RoutineServiceImpl) GetRoutineByID(ctx context.Context, id string) (*primary.Routine, error) {
	record, err := s.store.GetMemoryByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch routine: %w", err)
	}
	if record == nil || record.Kind != routine.MemoryKind {
		return nil, &routine.NotFoundError{ID: id}
	}
	return routine.DecodeMetadata(record.ID, record.Metadata)
}

// UpdateRoutine merges the provided fields over the stored routine. The
// trigger mechanism is torn down and re-registered only when the enabled
// flag or the trigger config actually changed.
func (s *RoutineServiceImpl) UpdateRoutine(ctx context.Context, id string, input primary.UpdateRoutineInput) (*primary.Routine, error) {
	r, err := s.GetRoutineByID(ctx, id)
	if err != nil {
		return nil, err
	}

	wasEnabled := r.Enabled
	oldTrigger := r.Trigger

	if input.Name != nil {
		r.Name = *input.Name
	}
	if input.Description != nil {
		r.Description = *input.Description
	}
	if input.Trigger != nil {
		r.Trigger = *input.Trigger
	}
	if input.Conditions != nil {
		r.Conditions = *input.Conditions
	}
	if input.Actions != nil {
		r.Actions = *input.Actions
	}
	if input.Tags != nil {
		r.Tags = *input.Tags
	}
	if input.Enabled != nil {
		r.Enabled = *input.Enabled
	}

	if strings.TrimSpace(r.Name) == "" {
		return nil, &routine.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if len(r.Actions) == 0 {
		return nil, &routine.ValidationError{Field: "actions", Reason: "must contain at least one action"}
	}

	if err := s.persist(ctx, r); err != nil {
		return nil, err
	}

	if r.Enabled != wasEnabled || !routine.TriggerConfigEqual(oldTrigger, r.Trigger) {
		s.scheduler.Deregister(id)
		if r.Enabled {
			s.scheduler.Register(r)
		}
	}
	return r, nil
}

// DeleteRoutine deregisters the trigger and removes the record. Absence
// from the store is terminal; nothing resurrects a deleted routine.
func (s *RoutineServiceImpl) DeleteRoutine(ctx context.Context, id string) error {
	s.scheduler.Deregister(id)

	deleted, err := s.store.DeleteMemory(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete routine: %w", err)
	}
	if !deleted {
		return &routine.NotFoundError{ID: id}
	}
	return nil
}

// ToggleRoutine flips the enabled flag and performs the matching trigger
// (de)registration.
func (s *RoutineServiceImpl) ToggleRoutine(ctx context.Context, id string) (*primary.Routine, error) {
	r, err := s.GetRoutineByID(ctx, id)
	if err != nil {
		return nil, err
	}

	r.Enabled = !r.Enabled
	if err := s.persist(ctx, r); err != nil {
		return nil, err
	}

	if r.Enabled {
		s.scheduler.Register(r)
	} else {
		s.scheduler.Deregister(id)
	}
	return r, nil
}

// ExecuteRoutine runs a routine's action pipeline. It never returns an
// error: every failure is captured in the returned Execution so a crashed
// routine cannot crash the engine or other routines.
func (s *RoutineServiceImpl) ExecuteRoutine(ctx context.Context, id string, manual bool) *primary.Execution {
	exec := &primary.Execution{
		RoutineID:   id,
		ExecutionID: ulid.Make().String(),
		StartTime:   s.clock.Now(),
	}

	r, err := s.GetRoutineByID(ctx, id)
	if err != nil {
		return s.finish(ctx, exec, primary.ExecutionStatusFailed, err.Error())
	}

	if !r.Enabled && !manual {
		err := &routine.DisabledRoutineError{ID: id}
		return s.finish(ctx, exec, primary.ExecutionStatusFailed, err.Error())
	}

	if !s.evaluator.Evaluate(ctx, r.Conditions) && !manual {
		// Conditions gate automatic runs only; manual execution is
		// force-run. A skip runs no actions and bumps no counters.
		return s.finish(ctx, exec, primary.ExecutionStatusSkipped, "Conditions not met")
	}

	exec.Results = s.dispatcher.Run(ctx, r.Actions, r)
	for _, result := range exec.Results {
		if !result.Success {
			return s.finish(ctx, exec, primary.ExecutionStatusFailed, result.Error)
		}
	}

	now := s.clock.Now()
	r.ExecutionCount++
	r.LastExecuted = &now
	if err := s.persist(ctx, r); err != nil {
		log.Printf("routines: bookkeeping for %s: %v", id, err)
	}

	exec.Success = true
	return s.finish(ctx, exec, primary.ExecutionStatusSuccess, "")
}

// FireEvent executes all enabled routines with a matching event trigger.
func (s *RoutineServiceImpl) FireEvent(ctx context.Context, eventName string) ([]*primary.Execution, error) {
	return s.executeMatching(ctx, func(t primary.Trigger) bool {
		return t.Type == primary.TriggerEvent && t.EventName == eventName
	})
}

// DispatchUserAction executes all enabled routines with a matching
// user_action trigger.
func (s *RoutineServiceImpl) DispatchUserAction(ctx context.Context, actionType string) ([]*primary.Execution, error) {
	return s.executeMatching(ctx, func(t primary.Trigger) bool {
		return t.Type == primary.TriggerUserAction && t.ActionType == actionType
	})
}

// NotifyCompletion executes all enabled routines whose completion pattern
// matches the finished task's description (case-insensitive substring).
func (s *RoutineServiceImpl) NotifyCompletion(ctx context.Context, taskDescription string) ([]*primary.Execution, error) {
	desc := strings.ToLower(taskDescription)
	return s.executeMatching(ctx, func(t primary.Trigger) bool {
		return t.Type == primary.TriggerCompletion && t.TaskPattern != "" &&
			strings.Contains(desc, strings.ToLower(t.TaskPattern))
	})
}

// GetExecutionHistory returns recent execution log entries for a routine.
func (s *RoutineServiceImpl) GetExecutionHistory(ctx context.Context, id string, limit int) ([]*primary.ExecutionLogEntry, error) {
	if _, err := s.GetRoutineByID(ctx, id); err != nil {
		return nil, err
	}
	entries, err := s.execLog.ListByRoutine(ctx, id, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list executions: %w", err)
	}
	out := make([]*primary.ExecutionLogEntry, len(entries))
	for i, e := range entries {
		out[i] = &primary.ExecutionLogEntry{
			ExecutionID: e.ExecutionID,
			RoutineID:   e.RoutineID,
			Status:      e.Status,
			Error:       e.Error,
			StartedAt:   e.StartedAt,
			EndedAt:     e.EndedAt,
		}
	}
	return out, nil
}

func (s *RoutineServiceImpl) executeMatching(ctx context.Context, match func(primary.Trigger) bool) ([]*primary.Execution, error) {
	routines, err := s.GetRoutines(ctx, true)
	if err != nil {
		return nil, err
	}
	var executions []*primary.Execution
	for _, r := range routines {
		if match(r.Trigger) {
			executions = append(executions, s.ExecuteRoutine(ctx, r.ID, false))
		}
	}
	return executions, nil
}

// persist writes the routine back to its memory record, read-modify-write
// with last-writer-wins semantics.
func (s *RoutineServiceImpl) persist(ctx context.Context, r *primary.Routine) error {
	record, err := s.store.GetMemoryByID(ctx, r.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch routine record: %w", err)
	}
	if record == nil {
		return &routine.NotFoundError{ID: r.ID}
	}

	metadata, err := routine.EncodeMetadata(r)
	if err != nil {
		return fmt.Errorf("failed to encode routine: %w", err)
	}
	record.Content = routine.Summary(r)
	record.Metadata = metadata

	if err := s.store.UpdateMemory(ctx, r.ID, record); err != nil {
		return fmt.Errorf("failed to update routine: %w", err)
	}
	return nil
}

// finish stamps the execution, records its outcome in the execution log,
// and returns it.
func (s *RoutineServiceImpl) finish(ctx context.Context, exec *primary.Execution, status, errMsg string) *primary.Execution {
	exec.EndTime = s.clock.Now()
	exec.Error = errMsg
	exec.Success = status == primary.ExecutionStatusSuccess

	entry := &secondary.ExecutionEntry{
		ExecutionID: exec.ExecutionID,
		RoutineID:   exec.RoutineID,
		Status:      status,
		Error:       errMsg,
		StartedAt:   exec.StartTime.UTC().Format(time.RFC3339),
		EndedAt:     exec.EndTime.UTC().Format(time.RFC3339),
	}
	if err := s.execLog.Append(ctx, entry); err != nil {
		log.Printf("routines: execution log append for %s: %v", exec.RoutineID, err)
	}

	if status != primary.ExecutionStatusSuccess {
		log.Printf("routines: execution %s of %s: %s (%s)", exec.ExecutionID, exec.RoutineID, status, errMsg)
	}
	return exec
}

// Ensure RoutineServiceImpl implements the interface.
var _ primary.RoutineService = (*RoutineServiceImpl)(nil)
