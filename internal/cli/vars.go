package cli

import (
	"github.com/valter-silva-au/taskgraph/internal/core"
	"github.com/valter-silva-au/taskgraph/internal/observability"
)

// Service instances, set during app initialization in app.go.
var (
	BasePath    string
	Config      *core.Config
	Tasks       core.TaskService
	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
)
