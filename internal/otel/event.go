// Package otel records structured events for growthdesk.
//
// Events are written as JSONL by an async Logger. An optional RingBuffer
// keeps recent events in memory for the debug overlay.
package otel

import (
	"encoding/json"
	"time"
)

// Level is event severity.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// EventKind is "<subsystem>.<action>".
type EventKind string

const (
	// Gateway
	KindRequest  EventKind = "gateway.request"
	KindComplete EventKind = "gateway.complete"
	KindHTTPErr  EventKind = "gateway.error"
	KindRetry    EventKind = "gateway.retry"

	// Session controller
	KindAnalysis   EventKind = "session.analysis"
	KindRoster     EventKind = "session.roster"
	KindNavigate   EventKind = "session.navigate"
	KindStale      EventKind = "session.stale"
	KindRejected   EventKind = "session.rejected"
	KindOnboard    EventKind = "session.onboard"
	KindChurn      EventKind = "session.churn"
	KindAdvanced   EventKind = "session.advanced"
	KindIntegrity  EventKind = "metrics.integrity"
	KindProfile    EventKind = "profile.load"
	KindProfileErr EventKind = "profile.error"
	KindMutation   EventKind = "profile.mutation"

	// Notifications
	KindNotify  EventKind = "notify.push"
	KindDismiss EventKind = "notify.dismiss"
	KindExpire  EventKind = "notify.expire"

	// Journal
	KindStoreError EventKind = "store.error"

	// UI
	KindKeyPress    EventKind = "ui.key"
	KindMsgReceived EventKind = "trace.msg"

	// System
	KindStartup  EventKind = "sys.startup"
	KindShutdown EventKind = "sys.shutdown"
	KindHealth   EventKind = "sys.health"
)

// Event is one JSONL record. Only Kind is required; Time is filled on emit.
type Event struct {
	Time      time.Time      `json:"t"`
	Level     Level          `json:"level,omitempty"`
	Kind      EventKind      `json:"kind"`
	Comp      string         `json:"comp,omitempty"`       // "gateway", "session", "profile", "ui", "main"
	SessionID string         `json:"session_id,omitempty"` // same for the whole run
	Tag       string         `json:"tag,omitempty"`        // request tag for stale detection
	ArtistID  string         `json:"artist,omitempty"`
	Op        string         `json:"op,omitempty"`
	Status    int            `json:"status,omitempty"`
	Dur       time.Duration  `json:"-"`
	DurMs     float64        `json:"dur_ms,omitempty"`
	Count     int            `json:"count,omitempty"`
	Err       string         `json:"err,omitempty"`
	Msg       string         `json:"msg,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// MarshalJSON reports Dur as fractional milliseconds.
func (e Event) MarshalJSON() ([]byte, error) {
	type alias Event
	out := struct{ alias }{alias(e)}
	if e.Dur > 0 {
		out.DurMs = float64(e.Dur) / float64(time.Millisecond)
	}
	return json.Marshal(out)
}
