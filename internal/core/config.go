// Package core contains the business logic of the task graph: task
// creation and decomposition, the status state machine, ready derivation,
// and the claim workflow that coordinates concurrent workers.
package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/valter-silva-au/taskgraph/pkg/models"
)

// Config holds the runtime settings read from .taskgraph.yaml in the base
// directory. Every field has a default; a missing config file is not an
// error.
type Config struct {
	// StaleTimeout is the age past which an unreleased claim is presumed
	// abandoned and eligible for reclaim.
	StaleTimeout time.Duration

	// ParentsReady selects the ready policy for tasks with children: true
	// means parents are independently ready, false restricts the ready set
	// to leaves.
	ParentsReady bool

	// DefaultPriority and DefaultType apply to new tasks created without
	// an explicit value.
	DefaultPriority models.Priority
	DefaultType     models.TaskType

	// SlugMax caps the slug portion of generated task ids.
	SlugMax int
}

// DefaultConfig returns a Config populated with the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		StaleTimeout:    2 * time.Hour,
		ParentsReady:    true,
		DefaultPriority: models.P2,
		DefaultType:     models.TypeTask,
		SlugMax:         40,
	}
}

// LoadConfig reads .taskgraph.yaml from basePath using Viper. Missing file
// or missing keys fall back to defaults; an invalid value is an error.
func LoadConfig(basePath string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigName(".taskgraph")
	v.SetConfigType("yaml")
	v.AddConfigPath(basePath)

	v.SetDefault("claims.stale_timeout", cfg.StaleTimeout.String())
	v.SetDefault("graph.parents_ready", cfg.ParentsReady)
	v.SetDefault("defaults.priority", string(cfg.DefaultPriority))
	v.SetDefault("defaults.type", string(cfg.DefaultType))
	v.SetDefault("id.slug_max", cfg.SlugMax)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading .taskgraph.yaml: %w", err)
	}

	cfg.StaleTimeout = v.GetDuration("claims.stale_timeout")
	cfg.ParentsReady = v.GetBool("graph.parents_ready")
	cfg.DefaultPriority = models.Priority(v.GetString("defaults.priority"))
	cfg.DefaultType = models.TaskType(v.GetString("defaults.type"))
	cfg.SlugMax = v.GetInt("id.slug_max")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for invalid values and returns a clear
// error naming every problem.
func (c *Config) Validate() error {
	var errs []string

	if c.StaleTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("claims.stale_timeout must be positive, got %s", c.StaleTimeout))
	}
	if !models.ValidPriority(c.DefaultPriority) {
		errs = append(errs, fmt.Sprintf("defaults.priority %q is invalid, must be one of: P0, P1, P2, P3", c.DefaultPriority))
	}
	if !models.ValidType(c.DefaultType) {
		errs = append(errs, fmt.Sprintf("defaults.type %q is invalid, must be one of: goal, project, epic, task, action", c.DefaultType))
	}
	if c.SlugMax < 8 || c.SlugMax > 120 {
		errs = append(errs, fmt.Sprintf("id.slug_max %d is invalid, must be between 8 and 120", c.SlugMax))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
