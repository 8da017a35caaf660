package app

import (
	"errors"
	"fmt"
	"slices"

	"github.com/specialistvlad/lintgrid/internal/classpath"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ProjectDir string // directory holding settings.hcl
	Tasks      []string

	ContinueOnFailure bool
	Stacktrace        bool
	// Isolated runs analysis in a separate worker process.
	Isolated bool
	// InjectClasspath adds coordinates to the isolated worker classpath on
	// top of what the plugin registers.
	InjectClasspath []string
	// WorkerBinary is the executable started for isolated analysis.
	WorkerBinary string
	// EventsURL, if set, is a Socket.IO endpoint receiving build events.
	EventsURL       string
	EventsNamespace string

	LogFormat   string
	LogLevel    string
	WorkerCount int
}

var (
	logLevels  = []string{"", "debug", "info", "warn", "error"}
	logFormats = []string{"", "text", "json"}
)

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ProjectDir == "" {
		return nil, errors.New("ProjectDir is a required configuration field and cannot be empty")
	}
	if !slices.Contains(logLevels, cfg.LogLevel) {
		return nil, fmt.Errorf("unknown log level %q", cfg.LogLevel)
	}
	if !slices.Contains(logFormats, cfg.LogFormat) {
		return nil, fmt.Errorf("unknown log format %q", cfg.LogFormat)
	}
	if cfg.WorkerCount < 0 {
		return nil, fmt.Errorf("worker count must not be negative, got %d", cfg.WorkerCount)
	}
	if _, err := classpath.ParseEntries(cfg.InjectClasspath); err != nil {
		return nil, err
	}
	cfg.Tasks = slices.Clone(cfg.Tasks)
	cfg.InjectClasspath = slices.Clone(cfg.InjectClasspath)
	return &cfg, nil
}
