package app

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/example/hearth/internal/clock"
	"github.com/example/hearth/internal/core/routine"
	"github.com/example/hearth/internal/ports/primary"
	"github.com/example/hearth/internal/ports/secondary"
)

// statePollInterval is the fixed poll period for state_change triggers.
const statePollInterval = 30 * time.Second

// ExecuteFunc is invoked by the scheduler when a trigger fires. The
// scheduler only ever fires automatic executions.
type ExecuteFunc func(ctx context.Context, routineID string)

// Scheduler owns the live trigger mechanisms, one per enabled routine,
// keyed by routine ID. Register and Deregister are the only mutation
// entry points. Each mechanism runs as its own goroutine; ticks across
// routines are independent and never serialized against each other.
type Scheduler struct {
	clock   clock.Clock
	state   secondary.StateSource
	vision  secondary.VisionSource
	execute ExecuteFunc

	mu       sync.Mutex
	handles  map[string]*triggerHandle
	inflight map[string]bool
}

// triggerHandle is one live mechanism. Closing stop ends its goroutine.
type triggerHandle struct {
	routineID string
	kind      string
	stop      chan struct{}
}

// NewScheduler creates a Scheduler with injected dependencies. Bind must
// be called with the execution callback before any trigger is registered.
func NewScheduler(clk clock.Clock, state secondary.StateSource, vision secondary.VisionSource) *Scheduler {
	return &Scheduler{
		clock:    clk,
		state:    state,
		vision:   vision,
		handles:  make(map[string]*triggerHandle),
		inflight: make(map[string]bool),
	}
}

// Bind sets the callback fired on trigger ticks. Split from the
// constructor because the engine and the scheduler reference each other.
func (s *Scheduler) Bind(execute ExecuteFunc) {
	s.execute = execute
}

// Register installs the trigger mechanism for a routine. Time, state, and
// vision triggers get a live mechanism; event, user_action, and
// completion triggers are externally driven and install nothing. A
// misconfigured trigger installs nothing and logs a warning; the create
// or update that carried it still succeeds.
func (s *Scheduler) Register(r *primary.Routine) {
	switch r.Trigger.Type {
	case primary.TriggerTime:
		interval, ok := routine.ParseSchedule(r.Trigger.Schedule)
		if !ok {
			log.Printf("scheduler: unparseable schedule %q for routine %s, no timer installed", r.Trigger.Schedule, r.ID)
			return
		}
		h := s.install(r.ID, primary.TriggerTime)
		go s.runTimer(h, interval)

	case primary.TriggerStateChange:
		monitor := r.Trigger.Monitor
		if monitor == nil || monitor.Entity == "" {
			log.Printf("scheduler: state trigger for routine %s has no monitor entity, no poller installed", r.ID)
			return
		}
		if monitor.Service != "homeassistant" {
			log.Printf("scheduler: unsupported state provider %q for routine %s, no poller installed", monitor.Service, r.ID)
			return
		}
		if s.state == nil {
			log.Printf("scheduler: no state source configured, routine %s gets no poller", r.ID)
			return
		}
		h := s.install(r.ID, primary.TriggerStateChange)
		go s.runStatePoller(h, *monitor)

	case primary.TriggerVision:
		if !validVisionService(r.Trigger.Service) {
			log.Printf("scheduler: unknown vision service %q for routine %s, no poller installed", r.Trigger.Service, r.ID)
			return
		}
		if len(r.Trigger.ObjectTypes) == 0 {
			log.Printf("scheduler: vision trigger for routine %s has no object types, no poller installed", r.ID)
			return
		}
		if s.vision == nil {
			log.Printf("scheduler: no vision source configured, routine %s gets no poller", r.ID)
			return
		}
		h := s.install(r.ID, primary.TriggerVision)
		go s.runVisionPoller(h, r.Trigger)

	case primary.TriggerEvent, primary.TriggerUserAction, primary.TriggerCompletion:
		// Fired through the engine's FireEvent/DispatchUserAction/
		// NotifyCompletion entry points; no background mechanism.

	default:
		log.Printf("scheduler: unknown trigger type %q for routine %s, no mechanism installed", r.Trigger.Type, r.ID)
	}
}

// Deregister stops and removes whichever mechanism is present for the
// routine, idempotently. It stops future ticks immediately; an execution
// already in flight is not cancelled.
func (s *Scheduler) Deregister(routineID string) {
	s.mu.Lock()
	h := s.handles[routineID]
	delete(s.handles, routineID)
	s.mu.Unlock()
	if h != nil {
		close(h.stop)
	}
}

// Registered reports whether a live mechanism exists for the routine.
func (s *Scheduler) Registered(routineID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.handles[routineID]
	return ok
}

// Count returns the number of live mechanisms.
func (s *Scheduler) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handles)
}

// Shutdown deregisters every mechanism.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	handles := s.handles
	s.handles = make(map[string]*triggerHandle)
	s.mu.Unlock()
	for _, h := range handles {
		close(h.stop)
	}
}

func (s *Scheduler) install(routineID, kind string) *triggerHandle {
	h := &triggerHandle{
		routineID: routineID,
		kind:      kind,
		stop:      make(chan struct{}),
	}
	s.mu.Lock()
	if old := s.handles[routineID]; old != nil {
		close(old.stop)
	}
	s.handles[routineID] = h
	s.mu.Unlock()
	return h
}

// fire runs one automatic execution, dropping the tick if the previous
// execution for the same routine is still in flight.
func (s *Scheduler) fire(routineID string) {
	s.mu.Lock()
	if s.inflight[routineID] {
		s.mu.Unlock()
		log.Printf("scheduler: routine %s still executing, tick dropped", routineID)
		return
	}
	s.inflight[routineID] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.inflight, routineID)
		s.mu.Unlock()
	}()

	s.execute(context.Background(), routineID)
}

func (s *Scheduler) runTimer(h *triggerHandle, interval time.Duration) {
	ticker := s.clock.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-h.stop:
			return
		case <-ticker.C():
			if stopped(h) {
				return
			}
			s.fire(h.routineID)
		}
	}
}

// stopped re-checks the stop channel after a tick was received, so a tick
// already buffered when Deregister ran does not fire.
func stopped(h *triggerHandle) bool {
	select {
	case <-h.stop:
		return true
	default:
		return false
	}
}

func (s *Scheduler) runStatePoller(h *triggerHandle, monitor primary.StateMonitor) {
	ticker := s.clock.NewTicker(statePollInterval)
	defer ticker.Stop()

	var baseline string
	haveBaseline := false

	for {
		select {
		case <-h.stop:
			return
		case <-ticker.C():
			if stopped(h) {
				return
			}
			value, err := s.observeState(monitor)
			if err != nil {
				// Poll errors never tear down the mechanism; the next
				// tick retries.
				log.Printf("scheduler: state poll for %s (%s): %v", h.routineID, monitor.Entity, err)
				continue
			}
			if !haveBaseline {
				// The first poll only records the baseline.
				baseline = value
				haveBaseline = true
				continue
			}
			if value != baseline {
				baseline = value
				s.fire(h.routineID)
			}
		}
	}
}

func (s *Scheduler) observeState(monitor primary.StateMonitor) (string, error) {
	state, err := s.state.GetState(context.Background(), monitor.Entity)
	if err != nil {
		return "", err
	}
	if monitor.Property != "" {
		return fmt.Sprint(state.Attributes[monitor.Property]), nil
	}
	return state.State, nil
}

func (s *Scheduler) runVisionPoller(h *triggerHandle, trigger primary.Trigger) {
	interval := trigger.CheckInterval
	if interval <= 0 {
		interval = routine.DefaultCheckInterval * time.Second
	}
	minConfidence := trigger.MinConfidence
	if minConfidence <= 0 {
		minConfidence = routine.DefaultMinConfidence
	}

	ticker := s.clock.NewTicker(interval)
	defer ticker.Stop()

	query := secondary.VisionQuery{
		Service:     trigger.Service,
		Camera:      trigger.Camera,
		ImageSource: trigger.ImageSource,
	}
	lastSignature := ""

	for {
		select {
		case <-h.stop:
			return
		case <-ticker.C():
			if stopped(h) {
				return
			}
			detections, err := s.vision.Detect(context.Background(), query)
			if err != nil {
				log.Printf("scheduler: vision poll for %s (%s): %v", h.routineID, trigger.Service, err)
				continue
			}
			matched := routine.MatchLabels(detections, trigger.ObjectTypes, minConfidence)
			signature := routine.Signature(matched)
			// Fire on a changed, non-empty signature: an object staying in
			// frame does not refire, a changed mix of objects does.
			if signature != lastSignature && signature != "" {
				s.fire(h.routineID)
			}
			lastSignature = signature
		}
	}
}

func validVisionService(service string) bool {
	switch service {
	case primary.VisionServiceLocal, primary.VisionServiceFrigate,
		primary.VisionServiceCodeProjectAI, primary.VisionServiceYOLO:
		return true
	}
	return false
}
