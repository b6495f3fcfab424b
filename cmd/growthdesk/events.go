package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// eventRecord mirrors otel.Event for JSON decoding. Decoding from JSONL
// rather than importing otel keeps old logs readable as the schema grows.
type eventRecord struct {
	Time      time.Time      `json:"t"`
	Level     string         `json:"level"`
	Kind      string         `json:"kind"`
	Comp      string         `json:"comp"`
	SessionID string         `json:"session_id"`
	Tag       string         `json:"tag"`
	ArtistID  string         `json:"artist"`
	Op        string         `json:"op"`
	Status    int            `json:"status"`
	DurMs     float64        `json:"dur_ms"`
	Count     int            `json:"count"`
	Err       string         `json:"err"`
	Msg       string         `json:"msg"`
	Extra     map[string]any `json:"extra"`
}

// eventFilter selects and formats event lines.
type eventFilter struct {
	Kind    string
	Level   string
	Comp    string
	Artist  string
	Op      string
	Session string
	RawJSON bool
}

// levelRank returns a numeric rank for filtering (higher = more severe).
func levelRank(level string) int {
	switch level {
	case "debug":
		return 0
	case "info":
		return 1
	case "warn":
		return 2
	case "error":
		return 3
	default:
		return 0
	}
}

func (f eventFilter) match(ev eventRecord) bool {
	if f.Kind != "" && !strings.HasPrefix(ev.Kind, f.Kind) {
		return false
	}
	if f.Level != "" && levelRank(ev.Level) < levelRank(f.Level) {
		return false
	}
	if f.Comp != "" && ev.Comp != f.Comp {
		return false
	}
	if f.Artist != "" && ev.ArtistID != f.Artist {
		return false
	}
	if f.Op != "" && ev.Op != f.Op {
		return false
	}
	if f.Session != "" && ev.SessionID != f.Session {
		return false
	}
	return true
}

func (f eventFilter) format(ev eventRecord, raw []byte) string {
	if f.RawJSON {
		return string(raw)
	}
	lvl := strings.ToUpper(ev.Level)
	if lvl == "" {
		lvl = "?"
	}
	parts := []string{fmt.Sprintf("%s %-5s [%-7s] %-18s", ev.Time.Format("15:04:05.000"), lvl, ev.Comp, ev.Kind)}

	if ev.Msg != "" {
		parts = append(parts, "- "+ev.Msg)
	}
	if ev.Op != "" {
		parts = append(parts, "op="+ev.Op)
	}
	if ev.Status != 0 {
		parts = append(parts, fmt.Sprintf("status=%d", ev.Status))
	}
	if ev.DurMs > 0 {
		parts = append(parts, fmt.Sprintf("(%.*fms)", durPrecision(ev.DurMs), ev.DurMs))
	}
	if ev.Count > 0 {
		parts = append(parts, fmt.Sprintf("n=%d", ev.Count))
	}
	if ev.ArtistID != "" {
		parts = append(parts, "artist="+ev.ArtistID)
	}
	if ev.Err != "" {
		parts = append(parts, "err="+ev.Err)
	}
	return strings.Join(parts, " ")
}

var (
	eventsTail   int
	eventsFollow bool
	eventsFilter eventFilter
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Tail and filter the structured event log",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.EventLogPath()
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("event log not found at %s (run the dashboard first): %w", path, err)
		}
		defer f.Close()

		out := cmd.OutOrStdout()
		for _, l := range readTailLines(f, eventsTail, eventsFilter.match) {
			fmt.Fprintln(out, eventsFilter.format(l.ev, l.raw))
		}
		if !eventsFollow {
			return nil
		}
		return followEvents(cmdContext(cmd), f, out, eventsFilter)
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	fs := eventsCmd.Flags()
	fs.IntVar(&eventsTail, "tail", 50, "number of recent lines to show")
	fs.BoolVarP(&eventsFollow, "follow", "f", false, "follow mode (like tail -f)")
	fs.StringVar(&eventsFilter.Kind, "kind", "", "filter by event kind prefix (e.g. 'gateway')")
	fs.StringVar(&eventsFilter.Level, "level", "", "minimum level: debug, info, warn, error")
	fs.StringVar(&eventsFilter.Comp, "comp", "", "filter by component name")
	fs.StringVar(&eventsFilter.Artist, "artist", "", "filter by artist id")
	fs.StringVar(&eventsFilter.Op, "op", "", "filter by gateway operation")
	fs.StringVar(&eventsFilter.Session, "session", "", "filter by session id")
	fs.BoolVar(&eventsFilter.RawJSON, "json", false, "output raw JSON lines")
}

// followEvents polls r for appended lines until ctx is done.
func followEvents(ctx context.Context, r io.Reader, out io.Writer, filter eventFilter) error {
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			if err != io.EOF {
				return err
			}
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(100 * time.Millisecond):
			}
			continue
		}
		line = trimLine(line)
		if len(line) == 0 {
			continue
		}
		var ev eventRecord
		if json.Unmarshal(line, &ev) != nil {
			continue
		}
		if filter.match(ev) {
			fmt.Fprintln(out, filter.format(ev, line))
		}
	}
}

type parsedLine struct {
	ev  eventRecord
	raw []byte
}

// readTailLines returns the last n lines of r matching the filter.
func readTailLines(r io.Reader, n int, match func(eventRecord) bool) []parsedLine {
	if n <= 0 {
		return nil
	}
	scanner := bufio.NewScanner(r)
	// Extra maps can make lines long.
	scanner.Buffer(make([]byte, 0, 64*1024), 256*1024)

	ring := make([]parsedLine, 0, n)
	for scanner.Scan() {
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var ev eventRecord
		if json.Unmarshal(raw, &ev) != nil {
			continue
		}
		if !match(ev) {
			continue
		}
		// The scanner reuses its buffer.
		rawCopy := make([]byte, len(raw))
		copy(rawCopy, raw)

		if len(ring) < n {
			ring = append(ring, parsedLine{ev: ev, raw: rawCopy})
		} else {
			copy(ring, ring[1:])
			ring[n-1] = parsedLine{ev: ev, raw: rawCopy}
		}
	}
	return ring
}

func trimLine(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return b
}

func durPrecision(ms float64) int {
	if ms >= 100 {
		return 0
	}
	if ms >= 1 {
		return 1
	}
	return 2
}
