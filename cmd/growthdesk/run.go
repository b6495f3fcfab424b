package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/abelbrown/growthdesk/internal/gateway"
	"github.com/abelbrown/growthdesk/internal/logging"
	"github.com/abelbrown/growthdesk/internal/notify"
	"github.com/abelbrown/growthdesk/internal/otel"
	"github.com/abelbrown/growthdesk/internal/session"
	"github.com/abelbrown/growthdesk/internal/store"
	"github.com/abelbrown/growthdesk/internal/ui"
)

// ringSize is how many recent events the debug overlay can show.
const ringSize = 512

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open the dashboard (default)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmdContext(cmd))
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runTUI(parent context.Context) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	if err := logging.Init(cfg.Log.Dir, cfg.Log.Level); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	defer logging.Close()

	events, err := otel.OpenFile(cfg.EventLogPath())
	if err != nil {
		logging.Warn("event log unavailable", "path", cfg.EventLogPath(), "err", err)
		events = otel.NewNullLogger()
	}
	defer events.Close()
	ring := otel.NewRingBuffer(ringSize)
	events.SetRingBuffer(ring)

	opts := session.Options{
		Context: ctx,
		Queue:   notify.New(cfg.UI.ToastTTL),
		Events:  events,
		Timing:  session.TimingFromConfig(cfg.UI),
	}

	// The journal is an audit trail; the dashboard runs without it.
	st, err := store.Open(cfg.ActivityDBPath())
	if err != nil {
		logging.Warn("activity journal unavailable", "path", cfg.ActivityDBPath(), "err", err)
		events.Emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindStoreError, Comp: "main", Err: err.Error()})
	} else {
		defer st.Close()
		opts.Journal = st
	}

	client := newClient(events)
	opts.Backend = client

	events.Emit(otel.Event{
		Level: otel.LevelInfo,
		Kind:  otel.KindStartup,
		Comp:  "main",
		Msg:   "growthdesk starting",
		Extra: map[string]any{"api": client.BaseURL(), "trace": otel.TraceEnabled()},
	})
	logging.Info("growthdesk starting", "api", client.BaseURL(), "session", events.SessionID())

	ctl := session.New(opts)
	app := ui.NewApp(ctl, events, ring, healthCheck(ctx, client, events))

	program := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	_, runErr := program.Run()

	events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindShutdown, Comp: "main", Msg: "growthdesk stopped"})
	logging.Info("growthdesk stopped")

	if runErr != nil && ctx.Err() == nil {
		return fmt.Errorf("run dashboard: %w", runErr)
	}
	return nil
}

// healthCheck pings the backend once at boot. Failure shows a banner and
// is logged; it never blocks the dashboard.
func healthCheck(ctx context.Context, client *gateway.Client, events *otel.Logger) func() tea.Cmd {
	return func() tea.Cmd {
		return func() tea.Msg {
			start := time.Now()
			err := client.Health(ctx)
			e := otel.Event{Level: otel.LevelInfo, Kind: otel.KindHealth, Comp: "main", Op: gateway.OpHealth, Dur: time.Since(start)}
			if err != nil {
				e.Level = otel.LevelWarn
				e.Err = err.Error()
				logging.Warn("backend health check failed", "err", err)
			}
			events.Emit(e)
			return ui.HealthChecked{Err: err}
		}
	}
}
