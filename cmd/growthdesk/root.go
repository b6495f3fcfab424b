package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/abelbrown/growthdesk/internal/config"
	"github.com/abelbrown/growthdesk/internal/gateway"
	"github.com/abelbrown/growthdesk/internal/otel"
)

var (
	cfgFile string
	cfg     *config.Config
)

// rootCmd launches the TUI when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "growthdesk",
	Short: "Coaching dashboard for artist growth",
	Long: `growthdesk is a terminal client for the artist analytics backend.

Run it without arguments to open the dashboard, or use a subcommand for
one-shot output suitable for scripts.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmdContext(cmd))
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.growthdesk/config.yaml)")
	flags.String("api", "", "backend base URL, e.g. http://localhost:5001/api")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("data-dir", "", "directory for the event log and activity journal")

	bindFlag(flags, "api.base_url", "api")
	bindFlag(flags, "log.level", "log-level")
	bindFlag(flags, "data_dir", "data-dir")
}

func bindFlag(flags *pflag.FlagSet, key, name string) {
	if err := viper.BindPFlag(key, flags.Lookup(name)); err != nil {
		panic(fmt.Sprintf("bind %s: %v", name, err))
	}
}

// loadConfig resolves flags, env, file and defaults into cfg. Bound flags
// only win when set on the command line.
func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := config.Load(viper.GetViper(), cfgFile)
	if err != nil {
		return err
	}
	cfg = c
	return nil
}

// newClient builds a gateway client from cfg.
func newClient(events *otel.Logger) *gateway.Client {
	return gateway.New(gateway.Options{
		BaseURL:       cfg.API.BaseURL,
		Timeout:       cfg.API.Timeout,
		RatePerSecond: cfg.API.RatePerSecond,
		Burst:         cfg.API.Burst,
		RetryAttempts: cfg.API.RetryAttempts,
		Events:        events,
	})
}
