package modelview

import (
	"log/slog"

	"github.com/gogpu/modelview/internal/logging"
)

// SetLogger configures the logger for modelview and all its sub-packages.
// By default, modelview produces no log output. Call SetLogger to enable
// logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by modelview:
//   - [slog.LevelDebug]: per-frame diagnostics (fence stalls, reload steps)
//   - [slog.LevelInfo]: lifecycle events (device opened, reload applied)
//   - [slog.LevelWarn]: non-fatal issues (watcher errors, dropped commands)
//
// Example:
//
//	// Enable debug-level logging for full diagnostics:
//	modelview.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	logging.Set(l)
}

// Logger returns the current logger used by modelview.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return logging.L()
}
