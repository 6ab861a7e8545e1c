package commands

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/linkcheck/internal/config"
	"git.home.luguber.info/inful/linkcheck/internal/logfields"
)

// Version reported by the version flag.
const Version = "1.0.0"

// Global context passed to subcommands if we need to share global state later.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"linkcheck.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Check   CheckCmd   `cmd:"" default:"withargs" help:"Check links in a build output directory once"`
	Watch   WatchCmd   `cmd:"" help:"Re-check links whenever the build output changes"`
	Daemon  DaemonCmd  `cmd:"" help:"Re-check links periodically, with optional metrics endpoint"`
	History HistoryCmd `cmd:"" help:"Show recent check runs from the history database"`
}

// AfterApply runs after flag parsing; setup logging once.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// loadOptions layers CLI overrides over the config file over defaults.
func loadOptions(root *CLI, overrides func(*config.Options)) (config.Options, error) {
	opts, err := config.Load(root.Config)
	if err != nil {
		return opts, err
	}
	if overrides != nil {
		overrides(&opts)
	}
	return opts, opts.Validate()
}

// warnSink logs a failure of an optional result sink (history, events).
func warnSink(name string, err error) {
	slog.Warn("Optional sink failed", slog.String("sink", name), logfields.Error(err))
}
