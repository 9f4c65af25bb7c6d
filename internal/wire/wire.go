// Package wire provides dependency injection for the hearth application.
// It creates singleton services with lazy initialization.
package wire

import (
	"io"
	"log"
	"os"
	"sync"

	cliadapter "github.com/example/hearth/internal/adapters/cli"
	"github.com/example/hearth/internal/adapters/connector"
	"github.com/example/hearth/internal/adapters/notify"
	"github.com/example/hearth/internal/adapters/sqlite"
	"github.com/example/hearth/internal/adapters/vision"
	"github.com/example/hearth/internal/app"
	"github.com/example/hearth/internal/clock"
	"github.com/example/hearth/internal/config"
	"github.com/example/hearth/internal/db"
	"github.com/example/hearth/internal/ports/primary"
	"github.com/example/hearth/internal/ports/secondary"
)

var (
	routineService primary.RoutineService
	scheduler      *app.Scheduler
	author         string
	once           sync.Once
)

// RoutineService returns the singleton RoutineService instance.
func RoutineService() primary.RoutineService {
	once.Do(initServices)
	return routineService
}

// TriggerScheduler returns the singleton Scheduler instance.
func TriggerScheduler() *app.Scheduler {
	once.Do(initServices)
	return scheduler
}

// Author returns the configured author for store attribution.
func Author() string {
	once.Do(initServices)
	return author
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	cfg := config.LoadDefault()
	author = cfg.Author

	// Get database connection
	database, err := db.GetDB()
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// Persistence adapters (secondary ports)
	store := sqlite.NewMemoryStore(database)
	execLog := sqlite.NewExecutionLog(database)

	// Home Assistant serves both the connector registry and the state source
	ha := connector.NewHomeAssistant(cfg.HomeAssistant.BaseURL, cfg.HomeAssistant.Token)

	registry := connector.NewRegistry()
	mustRegister(registry, "homeassistant", ha)
	mustRegister(registry, "webhook", connector.NewWebhook())

	// Vision backends: only configured endpoints are wired
	backends := map[string]vision.Backend{
		primary.VisionServiceLocal: vision.NewLocal(cfg.Vision.LocalPath),
	}
	if cfg.Vision.Frigate != "" {
		backends[primary.VisionServiceFrigate] = vision.NewFrigate(cfg.Vision.Frigate)
	}
	if cfg.Vision.CodeProjectAI != "" {
		backends[primary.VisionServiceCodeProjectAI] = vision.NewCodeProjectAI(cfg.Vision.CodeProjectAI)
	}
	if cfg.Vision.YOLO != "" {
		backends[primary.VisionServiceYOLO] = vision.NewYOLO(cfg.Vision.YOLO)
	}
	visionSource := vision.NewSource(backends)

	clk := clock.Real()
	notifier := notify.NewDesktop(cfg.Notifications.Enabled, os.Stderr)

	scheduler = app.NewScheduler(clk, ha, visionSource)
	evaluator := app.NewConditionEvaluator(clk, ha)
	dispatcher := app.NewActionDispatcher(registry, notifier)

	routineService = app.NewRoutineService(store, execLog, scheduler, evaluator, dispatcher, clk)
}

func mustRegister(registry *connector.Registry, service string, handler secondary.ConnectorHandler) {
	if err := registry.Register(service, handler); err != nil {
		log.Fatalf("failed to build connector registry: %v", err)
	}
}

// RoutineAdapter returns a new RoutineAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func RoutineAdapter() *cliadapter.RoutineAdapter {
	return RoutineAdapterWithOutput(os.Stdout)
}

// RoutineAdapterWithOutput returns a new RoutineAdapter writing to the given output.
// This variant allows testing or alternate output destinations.
func RoutineAdapterWithOutput(out io.Writer) *cliadapter.RoutineAdapter {
	once.Do(initServices)
	return cliadapter.NewRoutineAdapter(routineService, out)
}
