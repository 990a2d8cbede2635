package report

import (
	"github.com/rollbar/rollbar-go"
	"github.com/rs/zerolog"
)

// RollbarReporter forwards reports to Rollbar and mirrors them to the local
// log. Silent recoveries go out at warning level so dashboards can separate
// tolerated corruption from errors users actually saw.
type RollbarReporter struct {
	local *LogReporter
}

// NewRollbarReporter configures the global rollbar client and returns the
// reporter. environment is e.g. "production" or "staging"; version is the
// build identifier stamped into crash reports.
func NewRollbarReporter(log zerolog.Logger, token, environment, version string) *RollbarReporter {
	rollbar.SetToken(token)
	rollbar.SetEnvironment(environment)
	rollbar.SetCodeVersion(version)
	return &RollbarReporter{local: NewLogReporter(log)}
}

// Report implements Reporter.
func (r *RollbarReporter) Report(err error, opts Options) {
	extras := make(map[string]interface{}, len(opts.Context)+1)
	for k, v := range opts.Context {
		extras[k] = v
	}
	extras["show_toast"] = opts.ShowToast

	level := rollbar.WARN
	if opts.ShowToast {
		level = rollbar.ERR
	}
	rollbar.ErrorWithExtras(level, err, extras)

	r.local.Report(err, opts)
}

// Close flushes queued Rollbar items. Call during shutdown.
func (r *RollbarReporter) Close() {
	rollbar.Close()
}

var _ Reporter = (*RollbarReporter)(nil)
