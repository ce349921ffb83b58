// Package internal provides the App struct that wires the task graph
// components together and initializes the CLI layer.
package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/valter-silva-au/taskgraph/internal/cli"
	"github.com/valter-silva-au/taskgraph/internal/core"
	"github.com/valter-silva-au/taskgraph/internal/observability"
	"github.com/valter-silva-au/taskgraph/internal/storage"
)

// App holds the service dependencies of the task graph.
type App struct {
	BasePath string
	Config   *core.Config

	// Storage layer
	TaskStore storage.TaskStore
	Index     storage.IndexManager
	Claims    storage.ClaimCoordinator

	// Core services
	Tasks core.TaskService

	// Observability
	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
}

// NewApp creates and wires all components. basePath is the directory
// holding tasks/, claims/, index.yaml, and .taskgraph.yaml.
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	cfg, err := core.LoadConfig(basePath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	app.Config = cfg

	app.TaskStore, err = storage.NewTaskStore(basePath)
	if err != nil {
		return nil, fmt.Errorf("initializing task store: %w", err)
	}
	app.Index = storage.NewIndexManager(basePath)
	app.Claims, err = storage.NewClaimCoordinator(basePath)
	if err != nil {
		return nil, fmt.Errorf("initializing claim coordinator: %w", err)
	}

	// Observability is advisory. A failure to open the event log disables
	// it rather than blocking the workflow.
	var events core.EventLogger
	app.EventLog, err = observability.NewEventLog(basePath)
	if err != nil {
		app.EventLog = nil
	} else {
		app.MetricsCalc = observability.NewMetricsCalculator(app.EventLog)
		events = &eventLogAdapter{log: app.EventLog}
	}

	app.Tasks = core.NewTaskService(app.TaskStore, app.Index, app.Claims, events, cfg)

	// Initialize the CLI layer with service instances.
	cli.BasePath = basePath
	cli.Config = cfg
	cli.Tasks = app.Tasks
	cli.EventLog = app.EventLog
	cli.MetricsCalc = app.MetricsCalc

	return app, nil
}

// Close releases resources held by the app.
func (a *App) Close() error {
	if a.EventLog != nil {
		return a.EventLog.Close()
	}
	return nil
}

// ResolveBasePath determines the base directory: TG_HOME if set, otherwise
// the nearest ancestor containing .taskgraph.yaml or a tasks directory,
// falling back to the current directory.
func ResolveBasePath() string {
	if home := os.Getenv("TG_HOME"); home != "" {
		return home
	}

	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, ".taskgraph.yaml")); err == nil {
			return dir
		}
		if info, err := os.Stat(filepath.Join(dir, "tasks")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	cwd, _ := os.Getwd()
	return cwd
}

// eventLogAdapter adapts observability.EventLog to core.EventLogger.
type eventLogAdapter struct {
	log observability.EventLog
}

func (a *eventLogAdapter) LogEvent(eventType, taskID, actor string, data map[string]any) error {
	return a.log.Append(observability.Event{
		Time:   time.Now().UTC(),
		Type:   eventType,
		TaskID: taskID,
		Actor:  actor,
		Data:   data,
	})
}
