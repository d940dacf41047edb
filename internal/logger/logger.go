package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/medopaw/ai-cli/internal/config"
)

// LevelTrace sits below debug and is used for prompt and response bodies.
const LevelTrace = slog.LevelDebug - 4

// Setup initializes the application logger. Logs go to stderr because stdout
// carries the generated commit message.
func Setup(cfg *config.Config) *slog.Logger {
	return setup(os.Stderr, cfg.Log.Format, cfg.Log.Level)
}

func setup(w io.Writer, format, level string) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{
		Level:       parseLogLevel(level),
		ReplaceAttr: renameTrace,
	}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "json":
		handler = slog.NewJSONHandler(w, handlerOpts)
	default: // "text" or empty (already validated in config.go)
		handler = slog.NewTextHandler(w, handlerOpts)
	}

	logger := slog.New(handler)

	// Set as default logger for the entire application
	slog.SetDefault(logger)

	return logger
}

// Trace logs at LevelTrace on the default logger.
func Trace(msg string, args ...any) {
	slog.Default().Log(context.Background(), LevelTrace, msg, args...)
}

// renameTrace prints LevelTrace as TRACE instead of DEBUG-4
func renameTrace(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey {
		if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
			a.Value = slog.StringValue("TRACE")
		}
	}
	return a
}

// parseLogLevel converts string log level to slog.Level
// Note: Input is validated in config.go, so only valid values reach this function
func parseLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "info", "": // empty defaults to info
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		// Should never reach here due to validation in config.go
		return slog.LevelInfo
	}
}
