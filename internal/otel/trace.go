package otel

import (
	"os"
	"sync/atomic"
)

// tracing mirrors GROWTHDESK_TRACE, read once at init.
var tracing atomic.Bool

func init() {
	tracing.Store(os.Getenv("GROWTHDESK_TRACE") != "")
}

// TraceEnabled reports whether every UI message should be recorded.
func TraceEnabled() bool {
	return tracing.Load()
}

// setTracing overrides the flag in tests.
func setTracing(on bool) {
	tracing.Store(on)
}
