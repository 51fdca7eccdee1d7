package app

import (
	"io"
	"log/slog"
)

// logLevels maps the level names accepted by the cli package. Validation
// happens there; the fallback here only covers App construction in tests.
var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// newLogger builds the App's own logger from its invocation settings. The
// global default logger is never touched, so concurrent App instances (as in
// tests) stay isolated.
func newLogger(config *Config, outW io.Writer) *slog.Logger {
	level, ok := logLevels[config.LogLevel]
	if !ok {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if config.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(outW, opts))
	}
	return slog.New(slog.NewTextHandler(outW, opts))
}
