package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"git.home.luguber.info/inful/linkcheck/internal/checker"
	"git.home.luguber.info/inful/linkcheck/internal/config"
	"git.home.luguber.info/inful/linkcheck/internal/errors"
	"git.home.luguber.info/inful/linkcheck/internal/events"
	"git.home.luguber.info/inful/linkcheck/internal/history"
	"git.home.luguber.info/inful/linkcheck/internal/report"
)

// CheckCmd implements the 'check' command.
type CheckCmd struct {
	Root            string        `arg:"" optional:"" help:"Build output directory to validate (defaults to config root)"`
	CheckExternal   bool          `short:"e" help:"Also probe external links over the network"`
	Format          string        `short:"f" default:"text" help:"Output format (text or json)" enum:"text,json"`
	Exclude         []string      `help:"Substrings excluding matching hrefs from validation"`
	Include         []string      `help:"Glob-like include patterns (defaults to **/*.html)"`
	ExternalTimeout time.Duration `help:"Timeout per external probe (e.g. 5s)"`
	RedirectsFile   string        `help:"Redirect rule file, relative to the build root unless absolute"`
	NoFail          bool          `help:"Exit successfully even when broken links are found"`
}

// Run executes a single validation run and renders the report.
func (c *CheckCmd) Run(_ *Global, root *CLI) error {
	opts, err := loadOptions(root, func(o *config.Options) {
		if c.Root != "" {
			o.Root = c.Root
		}
		if c.CheckExternal {
			o.CheckExternal = true
		}
		if len(c.Exclude) > 0 {
			o.Exclude = c.Exclude
		}
		if len(c.Include) > 0 {
			o.Include = c.Include
		}
		if c.ExternalTimeout > 0 {
			o.ExternalTimeout = c.ExternalTimeout.String()
		}
		if c.RedirectsFile != "" {
			o.RedirectsFile = c.RedirectsFile
		}
		if c.NoFail {
			o.FailOnBrokenLinks = false
		}
	})
	if err != nil {
		return err
	}

	ctx := context.Background()
	result, err := checker.NewRunner(opts).Run(ctx, opts.Root)
	if err != nil {
		return err
	}

	if err := report.NewFormatter(c.Format).Format(os.Stdout, result); err != nil {
		return err
	}

	recordAndPublish(ctx, opts, result)

	if opts.FailOnBrokenLinks && result.HasBrokenLinks() {
		return errors.New(errors.CategoryValidation, errors.SeverityError,
			fmt.Sprintf("%d broken links found", len(result.BrokenLinks)))
	}
	return nil
}

// recordAndPublish applies the optional history and event sinks to a
// completed run. Sink failures are reported but never fail the check.
func recordAndPublish(ctx context.Context, opts config.Options, result *checker.Result) {
	if opts.History.Path != "" {
		if store, err := history.Open(opts.History.Path); err != nil {
			warnSink("history", err)
		} else {
			if err := store.RecordRun(ctx, result); err != nil {
				warnSink("history", err)
			}
			_ = store.Close()
		}
	}

	if opts.Events.Enabled && result.HasBrokenLinks() {
		if publisher, err := events.NewPublisher(opts.Events); err != nil {
			warnSink("events", err)
		} else {
			publisher.PublishResult(ctx, result)
			_ = publisher.Close()
		}
	}
}
