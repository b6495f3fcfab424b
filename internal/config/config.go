// Package config loads growthdesk settings from defaults, a yaml file,
// GROWTHDESK_* environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment override, e.g.
// GROWTHDESK_API_BASE_URL.
const EnvPrefix = "GROWTHDESK"

// Config is the full application configuration.
type Config struct {
	API     APIConfig `mapstructure:"api" yaml:"api"`
	UI      UIConfig  `mapstructure:"ui" yaml:"ui"`
	Log     LogConfig `mapstructure:"log" yaml:"log"`
	DataDir string    `mapstructure:"data_dir" yaml:"data_dir"`
}

// APIConfig controls the backend gateway.
type APIConfig struct {
	BaseURL       string        `mapstructure:"base_url" yaml:"base_url"`
	Timeout       time.Duration `mapstructure:"timeout" yaml:"timeout"`
	RatePerSecond float64       `mapstructure:"rate_per_second" yaml:"rate_per_second"`
	Burst         int           `mapstructure:"burst" yaml:"burst"`
	RetryAttempts uint          `mapstructure:"retry_attempts" yaml:"retry_attempts"`
}

// UIConfig holds notification and transition timings.
type UIConfig struct {
	ToastTTL           time.Duration `mapstructure:"toast_ttl" yaml:"toast_ttl"`
	MilestoneDelay     time.Duration `mapstructure:"milestone_delay" yaml:"milestone_delay"`
	MilestoneStagger   time.Duration `mapstructure:"milestone_stagger" yaml:"milestone_stagger"`
	ProgressCloseDelay time.Duration `mapstructure:"progress_close_delay" yaml:"progress_close_delay"`
	GoalsCloseDelay    time.Duration `mapstructure:"goals_close_delay" yaml:"goals_close_delay"`
	OnboardDelay       time.Duration `mapstructure:"onboard_delay" yaml:"onboard_delay"`
	Theme              string        `mapstructure:"theme" yaml:"theme"`
}

// LogConfig controls the human-readable log file.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	Dir   string `mapstructure:"dir" yaml:"dir"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:       "http://localhost:5001/api",
			Timeout:       30 * time.Second,
			RatePerSecond: 10,
			Burst:         4,
			RetryAttempts: 3,
		},
		UI: UIConfig{
			ToastTTL:           4 * time.Second,
			MilestoneDelay:     1 * time.Second,
			MilestoneStagger:   600 * time.Millisecond,
			ProgressCloseDelay: 2 * time.Second,
			GoalsCloseDelay:    1500 * time.Millisecond,
			OnboardDelay:       1 * time.Second,
			Theme:              "dark",
		},
		Log: LogConfig{
			Level: "info",
			Dir:   "~/.growthdesk/logs",
		},
		DataDir: "~/.growthdesk",
	}
}

// SetDefaults registers every key with v so env and flag overrides apply.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.timeout", d.API.Timeout)
	v.SetDefault("api.rate_per_second", d.API.RatePerSecond)
	v.SetDefault("api.burst", d.API.Burst)
	v.SetDefault("api.retry_attempts", d.API.RetryAttempts)
	v.SetDefault("ui.toast_ttl", d.UI.ToastTTL)
	v.SetDefault("ui.milestone_delay", d.UI.MilestoneDelay)
	v.SetDefault("ui.milestone_stagger", d.UI.MilestoneStagger)
	v.SetDefault("ui.progress_close_delay", d.UI.ProgressCloseDelay)
	v.SetDefault("ui.goals_close_delay", d.UI.GoalsCloseDelay)
	v.SetDefault("ui.onboard_delay", d.UI.OnboardDelay)
	v.SetDefault("ui.theme", d.UI.Theme)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.dir", d.Log.Dir)
	v.SetDefault("data_dir", d.DataDir)
}

// DefaultPath is ~/.growthdesk/config.yaml.
func DefaultPath() string {
	p, err := homedir.Expand("~/.growthdesk/config.yaml")
	if err != nil {
		return filepath.Join(".growthdesk", "config.yaml")
	}
	return p
}

// Load resolves configuration through v. An empty file means DefaultPath;
// a missing file is not an error.
func Load(v *viper.Viper, file string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file == "" {
		file = DefaultPath()
	}
	v.SetConfigFile(file)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config: read %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) expandPaths() error {
	var err error
	if c.DataDir, err = homedir.Expand(c.DataDir); err != nil {
		return fmt.Errorf("config: data_dir: %w", err)
	}
	if c.Log.Dir, err = homedir.Expand(c.Log.Dir); err != nil {
		return fmt.Errorf("config: log.dir: %w", err)
	}
	return nil
}

// Validate rejects settings the client cannot run with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: api.base_url %q is not an absolute URL", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("config: api.timeout must be positive")
	}
	if c.API.RatePerSecond <= 0 || c.API.Burst < 1 {
		return fmt.Errorf("config: api rate limit must be positive")
	}
	if c.UI.ToastTTL <= 0 {
		return fmt.Errorf("config: ui.toast_ttl must be positive")
	}
	if c.UI.MilestoneStagger <= 0 {
		return fmt.Errorf("config: ui.milestone_stagger must be positive")
	}
	return nil
}

// EventLogPath is the JSONL event log location.
func (c *Config) EventLogPath() string {
	return filepath.Join(c.DataDir, "events.jsonl")
}

// ActivityDBPath is the SQLite activity journal location.
func (c *Config) ActivityDBPath() string {
	return filepath.Join(c.DataDir, "activity.db")
}

// Save writes c as yaml to path, creating the directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: create dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write: %w", err)
	}
	return nil
}
