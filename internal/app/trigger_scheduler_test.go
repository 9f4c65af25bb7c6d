package app

import (
	"context"
	"testing"
	"time"

	"github.com/example/hearth/internal/clock"
	"github.com/example/hearth/internal/ports/primary"
	"github.com/example/hearth/internal/ports/secondary"
)

// schedulerFixture wires a scheduler to a fake clock and a channel-backed
// execute callback so tests can observe fires deterministically.
type schedulerFixture struct {
	clock     *clock.Fake
	scheduler *Scheduler
	fires     chan string
}

func newSchedulerFixture(state secondary.StateSource, vision secondary.VisionSource) *schedulerFixture {
	f := &schedulerFixture{
		clock: clock.NewFake(time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)),
		fires: make(chan string, 32),
	}
	f.scheduler = NewScheduler(f.clock, state, vision)
	f.scheduler.Bind(func(ctx context.Context, routineID string) {
		f.fires <- routineID
	})
	return f
}

func (f *schedulerFixture) expectFire(t *testing.T, routineID string) {
	t.Helper()
	select {
	case got := <-f.fires:
		if got != routineID {
			t.Fatalf("fired routine %s, want %s", got, routineID)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("expected fire for %s, got none", routineID)
	}
}

func (f *schedulerFixture) expectNoFire(t *testing.T) {
	t.Helper()
	select {
	case got := <-f.fires:
		t.Fatalf("unexpected fire for %s", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func timerRoutine(id, schedule string) *primary.Routine {
	return &primary.Routine{
		ID:      id,
		Name:    "Timer " + id,
		Enabled: true,
		Trigger: primary.Trigger{Type: primary.TriggerTime, Schedule: schedule},
		Actions: []primary.Action{{Type: primary.ActionNotification}},
	}
}

func TestSchedulerTimeTrigger(t *testing.T) {
	f := newSchedulerFixture(nil, nil)
	defer f.scheduler.Shutdown()

	f.scheduler.Register(timerRoutine("r1", "every 15 minutes"))
	if !f.scheduler.Registered("r1") {
		t.Fatal("timer not registered")
	}

	f.clock.BlockUntil(1)
	f.clock.Advance(15 * time.Minute)
	f.expectFire(t, "r1")

	f.clock.Advance(15 * time.Minute)
	f.expectFire(t, "r1")
	f.expectNoFire(t)
}

func TestSchedulerUnparseableScheduleInstallsNothing(t *testing.T) {
	f := newSchedulerFixture(nil, nil)
	defer f.scheduler.Shutdown()

	f.scheduler.Register(timerRoutine("r1", "whenever"))
	if f.scheduler.Registered("r1") {
		t.Error("unparseable schedule should install no timer")
	}
	if f.scheduler.Count() != 0 {
		t.Errorf("count = %d, want 0", f.scheduler.Count())
	}
}

func TestSchedulerDeregisterStopsTicks(t *testing.T) {
	f := newSchedulerFixture(nil, nil)
	defer f.scheduler.Shutdown()

	f.scheduler.Register(timerRoutine("r1", "every 5 minutes"))
	f.clock.BlockUntil(1)
	f.clock.Advance(5 * time.Minute)
	f.expectFire(t, "r1")

	f.scheduler.Deregister("r1")
	if f.scheduler.Registered("r1") {
		t.Fatal("still registered after deregister")
	}
	// Idempotent.
	f.scheduler.Deregister("r1")

	f.clock.Advance(time.Hour)
	f.expectNoFire(t)
}

func TestSchedulerStatePollerBaselineThenTransitions(t *testing.T) {
	state := newMockStateSource()
	state.script("binary_sensor.door",
		&secondary.EntityState{State: "closed"}, // baseline
		&secondary.EntityState{State: "closed"}, // unchanged
		&secondary.EntityState{State: "open"},   // transition
		&secondary.EntityState{State: "open"},   // unchanged
		&secondary.EntityState{State: "closed"}, // transition back
	)

	f := newSchedulerFixture(state, nil)
	defer f.scheduler.Shutdown()

	f.scheduler.Register(&primary.Routine{
		ID:      "r1",
		Name:    "Door watch",
		Enabled: true,
		Trigger: primary.Trigger{
			Type:    primary.TriggerStateChange,
			Monitor: &primary.StateMonitor{Service: "homeassistant", Entity: "binary_sensor.door"},
		},
		Actions: []primary.Action{{Type: primary.ActionNotification}},
	})
	f.clock.BlockUntil(1)

	// Five polls: the first only records the baseline, then one fire per
	// observed transition.
	f.clock.Advance(5 * 30 * time.Second)
	f.expectFire(t, "r1")
	f.expectFire(t, "r1")
	f.expectNoFire(t)
}

func TestSchedulerStateTriggerMisconfigured(t *testing.T) {
	f := newSchedulerFixture(newMockStateSource(), nil)
	defer f.scheduler.Shutdown()

	f.scheduler.Register(&primary.Routine{
		ID:      "r1",
		Enabled: true,
		Trigger: primary.Trigger{Type: primary.TriggerStateChange},
	})
	if f.scheduler.Registered("r1") {
		t.Error("state trigger without monitor should install no poller")
	}

	f.scheduler.Register(&primary.Routine{
		ID:      "r2",
		Enabled: true,
		Trigger: primary.Trigger{
			Type:    primary.TriggerStateChange,
			Monitor: &primary.StateMonitor{Service: "unknown-provider", Entity: "sensor.x"},
		},
	})
	if f.scheduler.Registered("r2") {
		t.Error("unsupported state provider should install no poller")
	}
}

func TestSchedulerStatePollErrorKeepsMechanism(t *testing.T) {
	state := newMockStateSource()
	// Nothing scripted yet: the first polls error.

	f := newSchedulerFixture(state, nil)
	defer f.scheduler.Shutdown()

	f.scheduler.Register(&primary.Routine{
		ID:      "r1",
		Enabled: true,
		Trigger: primary.Trigger{
			Type:    primary.TriggerStateChange,
			Monitor: &primary.StateMonitor{Service: "homeassistant", Entity: "sensor.flaky"},
		},
	})
	f.clock.BlockUntil(1)

	f.clock.Advance(2 * 30 * time.Second)
	f.expectNoFire(t)
	if !f.scheduler.Registered("r1") {
		t.Fatal("poll errors must not tear down the mechanism")
	}

	state.script("sensor.flaky",
		&secondary.EntityState{State: "10"},
		&secondary.EntityState{State: "11"},
	)
	f.clock.Advance(2 * 30 * time.Second)
	f.expectFire(t, "r1")
}

func TestSchedulerVisionDebounce(t *testing.T) {
	vision := &mockVisionSource{frames: [][]secondary.Detection{
		{{Label: "person", Confidence: 0.9}},                              // new signature, fires
		{{Label: "person", Confidence: 0.9}},                              // unchanged, no fire
		{},                                                                // cleared
		{{Label: "person", Confidence: 0.9}, {Label: "dog", Confidence: 0.8}}, // fires again
	}}

	f := newSchedulerFixture(nil, vision)
	defer f.scheduler.Shutdown()

	f.scheduler.Register(&primary.Routine{
		ID:      "r1",
		Name:    "Porch watch",
		Enabled: true,
		Trigger: primary.Trigger{
			Type:          primary.TriggerVision,
			Service:       primary.VisionServiceFrigate,
			ObjectTypes:   []string{"person", "dog"},
			CheckInterval: 10 * time.Second,
		},
		Actions: []primary.Action{{Type: primary.ActionNotification}},
	})
	f.clock.BlockUntil(1)

	f.clock.Advance(4 * 10 * time.Second)
	f.expectFire(t, "r1")
	f.expectFire(t, "r1")
	f.expectNoFire(t)
}

func TestSchedulerVisionLowConfidenceIgnored(t *testing.T) {
	vision := &mockVisionSource{frames: [][]secondary.Detection{
		{{Label: "person", Confidence: 0.2}},
		{{Label: "person", Confidence: 0.2}},
	}}

	f := newSchedulerFixture(nil, vision)
	defer f.scheduler.Shutdown()

	f.scheduler.Register(&primary.Routine{
		ID:      "r1",
		Enabled: true,
		Trigger: primary.Trigger{
			Type:          primary.TriggerVision,
			Service:       primary.VisionServiceLocal,
			ObjectTypes:   []string{"person"},
			CheckInterval: 10 * time.Second,
			// MinConfidence unset, defaults to 0.5
		},
	})
	f.clock.BlockUntil(1)

	f.clock.Advance(2 * 10 * time.Second)
	f.expectNoFire(t)
}

func TestSchedulerVisionMisconfigured(t *testing.T) {
	f := newSchedulerFixture(nil, &mockVisionSource{})
	defer f.scheduler.Shutdown()

	f.scheduler.Register(&primary.Routine{
		ID:      "r1",
		Enabled: true,
		Trigger: primary.Trigger{Type: primary.TriggerVision, Service: "hallucinated", ObjectTypes: []string{"x"}},
	})
	if f.scheduler.Registered("r1") {
		t.Error("unknown vision service should install no poller")
	}

	f.scheduler.Register(&primary.Routine{
		ID:      "r2",
		Enabled: true,
		Trigger: primary.Trigger{Type: primary.TriggerVision, Service: primary.VisionServiceLocal},
	})
	if f.scheduler.Registered("r2") {
		t.Error("vision trigger without object types should install no poller")
	}
}

func TestSchedulerExternallyDrivenTriggersInstallNothing(t *testing.T) {
	f := newSchedulerFixture(nil, nil)
	defer f.scheduler.Shutdown()

	for _, trigger := range []primary.Trigger{
		{Type: primary.TriggerEvent, EventName: "sunset"},
		{Type: primary.TriggerUserAction, ActionType: "leave_home"},
		{Type: primary.TriggerCompletion, TaskPattern: "backup"},
	} {
		f.scheduler.Register(&primary.Routine{ID: "r-" + trigger.Type, Enabled: true, Trigger: trigger})
	}
	if f.scheduler.Count() != 0 {
		t.Errorf("count = %d, want 0 (externally driven triggers poll nothing)", f.scheduler.Count())
	}
}

func TestSchedulerInFlightDrop(t *testing.T) {
	f := newSchedulerFixture(nil, nil)
	defer f.scheduler.Shutdown()

	gate := make(chan struct{})
	started := make(chan struct{}, 2)
	f.scheduler.Bind(func(ctx context.Context, routineID string) {
		started <- struct{}{}
		<-gate
	})

	go f.scheduler.fire("r1")
	<-started

	// Second tick for the same routine while the first is executing.
	done := make(chan struct{})
	go func() {
		f.scheduler.fire("r1")
		close(done)
	}()
	select {
	case <-done:
		// Dropped without executing.
	case <-time.After(2 * time.Second):
		t.Fatal("overlapping fire did not drop")
	}
	select {
	case <-started:
		t.Fatal("overlapping fire executed instead of dropping")
	default:
	}

	close(gate)
}

func TestSchedulerShutdown(t *testing.T) {
	f := newSchedulerFixture(nil, nil)

	f.scheduler.Register(timerRoutine("r1", "every 5 minutes"))
	f.scheduler.Register(timerRoutine("r2", "every hour"))
	if f.scheduler.Count() != 2 {
		t.Fatalf("count = %d, want 2", f.scheduler.Count())
	}

	f.clock.BlockUntil(2)
	f.scheduler.Shutdown()
	if f.scheduler.Count() != 0 {
		t.Errorf("count after shutdown = %d, want 0", f.scheduler.Count())
	}

	f.clock.Advance(2 * time.Hour)
	f.expectNoFire(t)
}
