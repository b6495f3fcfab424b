package logging

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestHelpersBeforeInit(t *testing.T) {
	Close()
	Info("ignored")
	Warn("ignored", "k", 1)
	Error("ignored")
	WithPrefix("gateway").Info("ignored")
}

func TestSetupRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	if err := Setup(&buf, "warn"); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	defer Close()

	Info("hidden")
	Warn("roster load failed", "status", 502)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info line should be filtered at warn level")
	}
	if !strings.Contains(out, "roster load failed") || !strings.Contains(out, "status=502") {
		t.Errorf("warn line missing: %q", out)
	}
}

func TestSetupBadLevel(t *testing.T) {
	if err := Setup(&bytes.Buffer{}, "loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestInitCreatesFile(t *testing.T) {
	dir := t.TempDir()
	if err := Init(dir, "debug"); err != nil {
		t.Fatalf("Init: %v", err)
	}
	Info("started")
	Close()

	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("entries = %v, err = %v", entries, err)
	}
	if !strings.HasPrefix(entries[0].Name(), "growthdesk-") {
		t.Errorf("file = %q", entries[0].Name())
	}
}
