// Package config defines the linkcheck options with defaults applied by
// construction, loaded from an optional YAML file with environment
// variable expansion.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/linkcheck/internal/errors"
)

// Options configures a validation run. Construct with Default and
// override; zero-value fields never carry implicit behavior.
type Options struct {
	Root              string   `yaml:"root"`
	CheckExternal     bool     `yaml:"check_external"`
	FailOnBrokenLinks bool     `yaml:"fail_on_broken_links"`
	Exclude           []string `yaml:"exclude"`
	Include           []string `yaml:"include"`
	ExternalTimeout   string   `yaml:"external_timeout"`
	Base              string   `yaml:"base"`
	RedirectsFile     string   `yaml:"redirects_file"`

	Events  EventsConfig  `yaml:"events"`
	History HistoryConfig `yaml:"history"`
	Metrics MetricsConfig `yaml:"metrics"`
	Watch   WatchConfig   `yaml:"watch"`
	Daemon  DaemonConfig  `yaml:"daemon"`
}

// EventsConfig configures broken-link event publishing over NATS.
type EventsConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// HistoryConfig configures the run-history store. An empty path disables it.
type HistoryConfig struct {
	Path string `yaml:"path"`
}

// MetricsConfig configures the Prometheus metrics listener (daemon mode).
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// WatchConfig configures filesystem watch mode.
type WatchConfig struct {
	Debounce string `yaml:"debounce"`
}

// DaemonConfig configures periodic re-checking.
type DaemonConfig struct {
	Interval string `yaml:"interval"`
}

// Default returns the option set with all defaults applied.
func Default() Options {
	return Options{
		Root:              ".",
		FailOnBrokenLinks: true,
		Include:           []string{"**/*.html"},
		ExternalTimeout:   "5s",
		Events: EventsConfig{
			URL:     "nats://localhost:4222",
			Subject: "linkcheck.broken",
		},
		Metrics: MetricsConfig{
			Listen: ":9105",
		},
		Watch: WatchConfig{
			Debounce: "2s",
		},
		Daemon: DaemonConfig{
			Interval: "1h",
		},
	}
}

// Timeout returns the external probe deadline, falling back to the
// default when the configured value does not parse.
func (o Options) Timeout() time.Duration {
	d, err := time.ParseDuration(o.ExternalTimeout)
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}

// DebounceDelay returns the watch-mode debounce window.
func (o Options) DebounceDelay() time.Duration {
	d, err := time.ParseDuration(o.Watch.Debounce)
	if err != nil || d <= 0 {
		return 2 * time.Second
	}
	return d
}

// CheckInterval returns the daemon re-check interval.
func (o Options) CheckInterval() time.Duration {
	d, err := time.ParseDuration(o.Daemon.Interval)
	if err != nil || d <= 0 {
		return time.Hour
	}
	return d
}

// Load reads options from a YAML file, layered over defaults. A missing
// file is not an error; the defaults are returned. Environment variables
// are expanded in the raw YAML, and a .env file is honored when present.
func Load(configPath string) (Options, error) {
	opts := Default()

	// Best effort; absence of .env is normal.
	_ = godotenv.Load()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return opts, nil
		}
		return opts, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").WithContext("path", configPath)
	}

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), &opts); err != nil {
		return opts, errors.WrapError(err, errors.CategoryConfig, "failed to parse config file").WithContext("path", configPath)
	}

	if err := opts.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}

// Validate rejects option combinations the engine cannot honor.
func (o Options) Validate() error {
	if len(o.Include) == 0 {
		return errors.ConfigError("include patterns must not be empty")
	}
	if o.ExternalTimeout != "" {
		if _, err := time.ParseDuration(o.ExternalTimeout); err != nil {
			return errors.ConfigError(fmt.Sprintf("invalid external_timeout %q", o.ExternalTimeout))
		}
	}
	return nil
}
