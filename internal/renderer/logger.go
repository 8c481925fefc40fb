package renderer

import (
	"context"
	"log/slog"
	"sync/atomic"
)

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger configures the logger used by the renderer. The renderer is
// silent until SetLogger is called; passing nil silences it again.
//
// Log levels used:
//   - [slog.LevelDebug]: per-frame diagnostics and frame statistics
//   - [slog.LevelInfo]: lifecycle events (instance created, GPU selected, shutdown)
//   - [slog.LevelWarn]: validation warnings, present mode fallback
//   - [slog.LevelError]: validation errors
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the current renderer logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

func debugLevel(severity DebugSeverity) slog.Level {
	switch {
	case severity&DebugSeverityError != 0:
		return slog.LevelError
	case severity&DebugSeverityWarning != 0:
		return slog.LevelWarn
	case severity&DebugSeverityInfo != 0:
		return slog.LevelInfo
	}
	return slog.LevelDebug
}

// logDebugMessage forwards validation layer output. It never affects
// control flow.
func logDebugMessage(l *slog.Logger, msg DebugMessage) {
	l.Log(context.Background(), debugLevel(msg.Severity), "validation", "type", msg.Type, "message", msg.Text)
}
