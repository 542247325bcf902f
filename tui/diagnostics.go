package tui

import (
	"github.com/safedep/dry/log"
)

// Diagnostics receives non-fatal warnings from the progress bar. It must
// not write to the stream the bar is drawn on.
type Diagnostics interface {
	Warnf(format string, args ...any)
}

// DiagnosticsFunc adapts a function to the Diagnostics interface.
type DiagnosticsFunc func(format string, args ...any)

// Warnf calls f(format, args...).
func (f DiagnosticsFunc) Warnf(format string, args ...any) {
	f(format, args...)
}

type logDiagnostics struct{}

func (logDiagnostics) Warnf(format string, args ...any) {
	log.Warnf(format, args...)
}

// LogDiagnostics reports warnings through the process logger.
var LogDiagnostics Diagnostics = logDiagnostics{}

// DiscardDiagnostics drops every warning.
var DiscardDiagnostics Diagnostics = DiagnosticsFunc(func(string, ...any) {})
