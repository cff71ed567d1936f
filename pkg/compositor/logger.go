package compositor

import (
	"log/slog"
	"sync/atomic"
)

// loggerPtr stores the package logger. Renderers created without WithLogger use it.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(slog.DiscardHandler))
}

// SetLogger configures the logger for the compositor. By default nothing is
// logged. Pass nil to restore the silent default.
//
// Log levels used:
//   - [slog.LevelDebug]: per-frame details (tile layout, texture uploads)
//   - [slog.LevelWarn]: skipped tiles and thumbnail problems
//   - [slog.LevelError]: frames that completed with rendering errors
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	loggerPtr.Store(l)
}

// Logger returns the current package logger
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
