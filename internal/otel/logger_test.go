package otel

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func decodeLines(t *testing.T, data string) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(data), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid JSON line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestEmitWritesJSONL(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)

	l.Emit(Event{Kind: KindRequest, Level: LevelInfo, Comp: "gateway", Op: "analyze", ArtistID: "a1"})
	l.Close()

	lines := decodeLines(t, buf.String())
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	ev := lines[0]
	if ev["kind"] != "gateway.request" {
		t.Errorf("kind = %v", ev["kind"])
	}
	if ev["comp"] != "gateway" || ev["op"] != "analyze" || ev["artist"] != "a1" {
		t.Errorf("fields not serialized: %v", ev)
	}
}

func TestEmitStampsTimeAndSession(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)

	before := time.Now()
	l.Emit(Event{Kind: KindStartup})
	l.Close()
	after := time.Now()

	var ev Event
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ev.Time.Before(before) || ev.Time.After(after) {
		t.Errorf("time %v outside [%v, %v]", ev.Time, before, after)
	}
	if len(ev.SessionID) != 16 || ev.SessionID != l.SessionID() {
		t.Errorf("session_id = %q, want %q", ev.SessionID, l.SessionID())
	}
}

func TestDurSerializedAsMillis(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)
	l.Emit(Event{Kind: KindComplete, Dur: 250 * time.Millisecond})
	l.Close()

	ev := decodeLines(t, buf.String())[0]
	if ev["dur_ms"] != float64(250) {
		t.Errorf("dur_ms = %v, want 250", ev["dur_ms"])
	}
}

func TestZeroFieldsOmitted(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)
	l.Emit(Event{Kind: KindShutdown})
	l.Close()

	line := buf.String()
	for _, field := range []string{"dur_ms", "count", "tag", "artist", "op", "status", "err", "msg", "extra"} {
		if strings.Contains(line, `"`+field+`"`) {
			t.Errorf("field %q should be omitted: %s", field, line)
		}
	}
}

func TestConcurrentEmit(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Emit(Event{Kind: KindNotify})
		}()
	}
	wg.Wait()
	l.Close()

	if got := len(decodeLines(t, buf.String())); got != 64 {
		t.Errorf("lines = %d, want 64", got)
	}
}

func TestCloseIdempotentAndDropsLateEmits(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)
	l.Info(KindStartup, "main", "up")
	l.Close()
	l.Close()

	l.Emit(Event{Kind: KindShutdown})
	if l.Dropped() != 1 {
		t.Errorf("Dropped() = %d, want 1", l.Dropped())
	}
	if got := len(decodeLines(t, buf.String())); got != 1 {
		t.Errorf("lines = %d, want 1", got)
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var l *Logger
	l.Emit(Event{Kind: KindStartup})
	l.Info(KindStartup, "main", "x")
	l.Close()
}

type stallWriter struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (w *stallWriter) Write(p []byte) (int, error) {
	w.once.Do(func() {
		close(w.entered)
		<-w.release
	})
	return len(p), nil
}

func TestFullQueueDrops(t *testing.T) {
	w := &stallWriter{entered: make(chan struct{}), release: make(chan struct{})}
	l := NewLogger(w)

	l.Emit(Event{Kind: KindRequest})
	<-w.entered

	for i := 0; i < queueSize+5; i++ {
		l.Emit(Event{Kind: KindRequest})
	}
	if l.Dropped() == 0 {
		t.Error("expected drops with a stalled writer")
	}
	close(w.release)
	l.Close()
}

func TestHelpersSetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)
	l.Info(KindStartup, "main", "starting")
	l.Warn(KindIntegrity, "metrics", "cluster 1 missing count")
	l.Error(KindHTTPErr, "gateway", errors.New("connection refused"))
	l.Close()

	lines := decodeLines(t, buf.String())
	want := []struct{ level, kind string }{
		{"info", "sys.startup"},
		{"warn", "metrics.integrity"},
		{"error", "gateway.error"},
	}
	if len(lines) != len(want) {
		t.Fatalf("lines = %d, want %d", len(lines), len(want))
	}
	for i, w := range want {
		if lines[i]["level"] != w.level || lines[i]["kind"] != w.kind {
			t.Errorf("line %d = %v/%v, want %s/%s", i, lines[i]["level"], lines[i]["kind"], w.level, w.kind)
		}
	}
	if lines[2]["err"] != "connection refused" {
		t.Errorf("err = %v", lines[2]["err"])
	}
}

func TestRingMirrorsEmits(t *testing.T) {
	l := NewNullLogger()
	rb := NewRingBuffer(8)
	l.SetRingBuffer(rb)
	l.Emit(Event{Kind: KindStale, Tag: "t1", Dur: time.Second})
	l.Close()

	got := rb.Snapshot()
	if len(got) != 1 || got[0].Tag != "t1" || got[0].Dur != time.Second {
		t.Errorf("ring = %+v", got)
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "events.jsonl")
	l, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	l.Info(KindStartup, "main", "hello")
	l.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"hello"`) {
		t.Errorf("file contents = %s", data)
	}
}
