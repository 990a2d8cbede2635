// Package report is the error-reporting sink consumed by the entity stores.
// Load and parse failures are reported here — silently, without a user-facing
// toast — while ordinary query misses never are. The default sink logs
// through zerolog; deployments with a Rollbar token get crash aggregation on
// top (rollbar.go).
package report

import "github.com/rs/zerolog"

// Options qualify a report. ShowToast marks errors the UI layer should
// surface to the end user; store-internal recoveries always pass false.
// Context carries structured metadata (store key, operation, raw sizes).
type Options struct {
	ShowToast bool
	Context   map[string]any
}

// Reporter receives recovered errors. Implementations must be safe for
// concurrent use; Report must never panic.
type Reporter interface {
	Report(err error, opts Options)
}

// LogReporter writes reports to a zerolog logger. Toast-worthy errors log at
// error level, silent recoveries at warn.
type LogReporter struct {
	Log zerolog.Logger
}

// NewLogReporter wraps the given logger.
func NewLogReporter(log zerolog.Logger) *LogReporter {
	return &LogReporter{Log: log}
}

// Report implements Reporter.
func (r *LogReporter) Report(err error, opts Options) {
	ev := r.Log.Warn()
	if opts.ShowToast {
		ev = r.Log.Error()
	}
	ev.Err(err).
		Bool("show_toast", opts.ShowToast).
		Fields(opts.Context).
		Msg("recovered error")
}

var _ Reporter = (*LogReporter)(nil)

// Nop discards all reports. Used in tests that do not assert on reporting.
type Nop struct{}

// Report implements Reporter.
func (Nop) Report(error, Options) {}

var _ Reporter = Nop{}
