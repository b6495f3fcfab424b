package notify

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// recorder captures scheduled timers instead of sleeping.
type recorder struct {
	delays []time.Duration
}

func (r *recorder) schedule(d time.Duration, fn func(time.Time) tea.Msg) tea.Cmd {
	r.delays = append(r.delays, d)
	return func() tea.Msg { return fn(time.Time{}) }
}

func newTestQueue() (*Queue, *fakeClock, *recorder) {
	clk := &fakeClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	rec := &recorder{}
	return NewWithScheduler(4*time.Second, clk.Now, rec.schedule), clk, rec
}

func TestPushAssignsUniqueIDs(t *testing.T) {
	q, _, _ := newTestQueue()
	a, _ := q.Push("one", Info)
	b, _ := q.Push("two", Info)
	if a == "" || b == "" || a == b {
		t.Errorf("ids not unique: %q %q", a, b)
	}
	if q.Len() != 2 {
		t.Errorf("Len() = %d, want 2", q.Len())
	}
}

func TestPushSchedulesExpiry(t *testing.T) {
	q, _, rec := newTestQueue()
	id, cmd := q.Push("saved", Success)
	if cmd == nil {
		t.Fatal("Push should return an expiry command")
	}
	if len(rec.delays) != 1 || rec.delays[0] != 4*time.Second {
		t.Errorf("delays = %v, want [4s]", rec.delays)
	}

	msg := cmd()
	exp, ok := msg.(Expired)
	if !ok || exp.ID != id {
		t.Fatalf("cmd() = %#v, want Expired{%q}", msg, id)
	}
	q.Update(msg)
	if q.Len() != 0 {
		t.Errorf("Len() = %d after expiry, want 0", q.Len())
	}
}

func TestDismissIsIdempotent(t *testing.T) {
	q, _, _ := newTestQueue()
	id, _ := q.Push("x", Warning)

	if !q.Dismiss(id) {
		t.Error("first Dismiss should remove")
	}
	if q.Dismiss(id) {
		t.Error("second Dismiss should be a no-op")
	}
	if q.Dismiss("missing") {
		t.Error("unknown id should be a no-op")
	}
	// Late expiry of a dismissed entry is harmless.
	q.Update(Expired{ID: id})
	if q.Len() != 0 {
		t.Errorf("Len() = %d, want 0", q.Len())
	}
}

func TestDismissDoesNotAffectOthers(t *testing.T) {
	q, clk, _ := newTestQueue()
	a, _ := q.Push("a", Info)
	clk.Advance(1 * time.Second)
	b, _ := q.Push("b", Info)
	clk.Advance(500 * time.Millisecond)

	before, ok := q.Remaining(b)
	if !ok {
		t.Fatal("b should be present")
	}

	q.Dismiss(a)

	after, ok := q.Remaining(b)
	if !ok {
		t.Fatal("b should survive dismissal of a")
	}
	if before != after {
		t.Errorf("remaining changed on unrelated dismiss: %v -> %v", before, after)
	}
	if after != 3500*time.Millisecond {
		t.Errorf("remaining = %v, want 3.5s", after)
	}
}

func TestRemainingDecreasesMonotonically(t *testing.T) {
	q, clk, _ := newTestQueue()
	id, _ := q.Push("tick", Info)

	prev, _ := q.Remaining(id)
	for i := 0; i < 6; i++ {
		clk.Advance(900 * time.Millisecond)
		cur, ok := q.Remaining(id)
		if !ok {
			t.Fatal("entry disappeared without expiry message")
		}
		if cur > prev {
			t.Errorf("remaining grew: %v -> %v", prev, cur)
		}
		if cur < 0 {
			t.Errorf("remaining negative: %v", cur)
		}
		prev = cur
	}
}

func TestPushAfterDeliversDelayed(t *testing.T) {
	q, _, rec := newTestQueue()
	cmd := q.PushAfter(1500*time.Millisecond, "Reached 1000 followers!", Milestone)
	if q.Len() != 0 {
		t.Error("PushAfter should not enqueue immediately")
	}
	if len(rec.delays) != 1 || rec.delays[0] != 1500*time.Millisecond {
		t.Errorf("delays = %v", rec.delays)
	}

	expire := q.Update(cmd())
	if expire == nil {
		t.Error("delayed push should return its expiry command")
	}
	active := q.Active()
	if len(active) != 1 || active[0].Kind != Milestone {
		t.Fatalf("active = %+v", active)
	}
}

func TestHooks(t *testing.T) {
	q, _, _ := newTestQueue()
	var pushed []string
	var expired []bool
	q.OnPush = func(n Notification) { pushed = append(pushed, n.Message) }
	q.OnRemove = func(_ Notification, e bool) { expired = append(expired, e) }

	a, _ := q.Push("a", Info)
	b, _ := q.Push("b", Error)
	q.Dismiss(a)
	q.Update(Expired{ID: b})

	if len(pushed) != 2 || pushed[0] != "a" || pushed[1] != "b" {
		t.Errorf("pushed = %v", pushed)
	}
	if len(expired) != 2 || expired[0] || !expired[1] {
		t.Errorf("expired flags = %v, want [false true]", expired)
	}
}

func TestDismissOldest(t *testing.T) {
	q, _, _ := newTestQueue()
	if q.DismissOldest() {
		t.Error("empty queue should report false")
	}
	q.Push("first", Info)
	q.Push("second", Info)
	q.DismissOldest()
	active := q.Active()
	if len(active) != 1 || active[0].Message != "second" {
		t.Errorf("active = %+v", active)
	}
}
