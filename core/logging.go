package core

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler silently discards every record. Enabled returns false so
// callers skip message formatting entirely when logging is disabled.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger configures the logger used by every package in this module
// (core, the root render facade, registry, pipeline, frame, descriptor,
// upload, taskgraph and both backends). By default nothing is logged.
//
// Levels:
//   - Debug: per-resource chatter (buffer reallocation, mip generation).
//   - Info: lifecycle events (pipeline reconstruction, swapchain resize).
//   - Warn: non-fatal recoverable conditions (upload buffer growth, lookup
//     miss substituting a placeholder).
//   - Error: not used by this module; ConstructionError and RecordingError
//     are returned to the caller, not logged.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Log returns the currently configured logger.
func Log() *slog.Logger { return loggerPtr.Load() }
