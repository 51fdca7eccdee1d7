package app

import (
	"io"
	"log/slog"

	"github.com/google/uuid"
)

// State tracks the configuration pipeline lifecycle. The pipeline moves
// strictly forward; Resolved and Failed are terminal.
type State int

const (
	StateUnloaded State = iota
	StateMerged
	StateResolving
	StateResolved
	StateFailed
)

// String returns a human readable state name.
func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateMerged:
		return "merged"
	case StateResolving:
		return "resolving"
	case StateResolved:
		return "resolved"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// App encapsulates one invocation of the configuration pipeline: its
// settings, logger and lifecycle state.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config
	runID  string
	state  State
}

// New is the constructor for the application. The returned App owns an
// isolated logger stamped with a fresh run id.
func New(outW io.Writer, config *Config) *App {
	runID := uuid.NewString()
	logger := newLogger(config, outW).With("run_id", runID)
	logger.Debug("Logger configured successfully.")

	return &App{
		outW:   outW,
		logger: logger,
		config: config,
		runID:  runID,
		state:  StateUnloaded,
	}
}

// State returns the pipeline's lifecycle state. Primarily for testing.
func (a *App) State() State {
	return a.state
}

// RunID returns the identifier stamped on this invocation's logs.
func (a *App) RunID() string {
	return a.runID
}
