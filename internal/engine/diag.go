package engine

import (
	"fmt"
	"log/slog"
)

// Diagnostic categories.
const (
	DiagBank        = "bank"
	DiagFund        = "fund"
	DiagAllocator   = "allocator"
	DiagConsistency = "consistency"
)

// Diagnostic is a non-fatal invariant violation observed during a period.
// The run continues; the host decides what to do with the signal.
type Diagnostic struct {
	Month    int    `json:"month"`
	Category string `json:"category"`
	Message  string `json:"message"`
}

// warn records a diagnostic and mirrors it to the structured log.
func (w *World) warn(category, format string, args ...any) {
	d := Diagnostic{
		Month:    w.Month,
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
	w.Diagnostics = append(w.Diagnostics, d)
	slog.Warn("simulation diagnostic", "month", d.Month, "category", d.Category, "message", d.Message)
}

// DrainDiagnostics returns diagnostics recorded since the last drain and
// resets the buffer. Hosts persist or display them between steps.
func (w *World) DrainDiagnostics() []Diagnostic {
	out := w.Diagnostics
	w.Diagnostics = nil
	return out
}
