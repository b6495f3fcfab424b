// Package notify is the transient notification (toast) queue.
//
// Every notification carries its own expiry. Expiry is driven by a
// per-notification tick command, so dismissing or expiring one entry never
// touches another's timer. The queue is owned by the Bubble Tea update loop
// and is not safe for concurrent use.
package notify

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

// Kind classifies a notification for styling.
type Kind string

const (
	Success   Kind = "success"
	Error     Kind = "error"
	Warning   Kind = "warning"
	Info      Kind = "info"
	Milestone Kind = "milestone"
)

// DefaultTTL is how long a notification stays visible.
const DefaultTTL = 4 * time.Second

// Notification is a single toast.
type Notification struct {
	ID      string
	Message string
	Kind    Kind
	Created time.Time
	TTL     time.Duration
}

// ExpiresAt is the instant the notification is removed if not dismissed.
func (n Notification) ExpiresAt() time.Time {
	return n.Created.Add(n.TTL)
}

// Expired is delivered when a notification's timer fires.
type Expired struct {
	ID string
}

// Delayed is delivered when a scheduled push comes due.
type Delayed struct {
	Message string
	Kind    Kind
}

// Scheduler produces a command that yields fn's message after d.
// tea.Tick satisfies it.
type Scheduler func(d time.Duration, fn func(time.Time) tea.Msg) tea.Cmd

// Queue holds pending notifications in push order.
// Unbounded: entries leave only by expiry or dismissal.
type Queue struct {
	items    []Notification
	ttl      time.Duration
	now      func() time.Time
	schedule Scheduler

	// OnPush, if set, observes every notification as it is enqueued.
	OnPush func(Notification)
	// OnRemove, if set, observes removals. expired is false for dismissals.
	OnRemove func(n Notification, expired bool)
}

// New creates a Queue using the wall clock and tea.Tick.
func New(ttl time.Duration) *Queue {
	return NewWithScheduler(ttl, time.Now, tea.Tick)
}

// NewWithScheduler allows injecting the clock and timer (for testing).
func NewWithScheduler(ttl time.Duration, now func() time.Time, sched Scheduler) *Queue {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Queue{ttl: ttl, now: now, schedule: sched}
}

// Push enqueues a notification and returns its id plus the command that
// expires it. Push never fails.
func (q *Queue) Push(message string, kind Kind) (string, tea.Cmd) {
	n := Notification{
		ID:      uuid.NewString(),
		Message: message,
		Kind:    kind,
		Created: q.now(),
		TTL:     q.ttl,
	}
	q.items = append(q.items, n)
	if q.OnPush != nil {
		q.OnPush(n)
	}

	id := n.ID
	return id, q.schedule(n.TTL, func(time.Time) tea.Msg { return Expired{ID: id} })
}

// PushAfter schedules a push delay from now. The notification's own TTL
// starts when it is actually enqueued.
func (q *Queue) PushAfter(delay time.Duration, message string, kind Kind) tea.Cmd {
	return q.schedule(delay, func(time.Time) tea.Msg {
		return Delayed{Message: message, Kind: kind}
	})
}

// Dismiss removes a notification. Unknown or already-removed ids are a
// no-op; the return value reports whether anything was removed.
func (q *Queue) Dismiss(id string) bool {
	return q.remove(id, false)
}

// DismissOldest removes the oldest visible notification, if any.
func (q *Queue) DismissOldest() bool {
	if len(q.items) == 0 {
		return false
	}
	return q.remove(q.items[0].ID, false)
}

func (q *Queue) remove(id string, expired bool) bool {
	for i, n := range q.items {
		if n.ID != id {
			continue
		}
		q.items = append(q.items[:i:i], q.items[i+1:]...)
		if q.OnRemove != nil {
			q.OnRemove(n, expired)
		}
		return true
	}
	return false
}

// Update applies queue messages. Messages it does not own are ignored.
func (q *Queue) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case Expired:
		q.remove(msg.ID, true)
	case Delayed:
		_, cmd := q.Push(msg.Message, msg.Kind)
		return cmd
	}
	return nil
}

// Active returns a copy of the visible notifications, oldest first.
func (q *Queue) Active() []Notification {
	out := make([]Notification, len(q.items))
	copy(out, q.items)
	return out
}

// Len returns the number of visible notifications.
func (q *Queue) Len() int {
	return len(q.items)
}

// Remaining reports how long a notification has left, clamped at zero.
func (q *Queue) Remaining(id string) (time.Duration, bool) {
	for _, n := range q.items {
		if n.ID == id {
			left := n.ExpiresAt().Sub(q.now())
			if left < 0 {
				left = 0
			}
			return left, true
		}
	}
	return 0, false
}
