package commands

import (
	"context"
	"fmt"
	"os"

	"git.home.luguber.info/inful/linkcheck/internal/errors"
	"git.home.luguber.info/inful/linkcheck/internal/history"
	"git.home.luguber.info/inful/linkcheck/internal/report"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit int    `short:"n" default:"20" help:"Number of recent runs to show"`
	RunID string `name:"run" help:"Show the broken links recorded for one run ID"`
}

func (h *HistoryCmd) Run(_ *Global, root *CLI) error {
	opts, err := loadOptions(root, nil)
	if err != nil {
		return err
	}
	if opts.History.Path == "" {
		return errors.ConfigError("history is not configured (set history.path)")
	}

	store, err := history.Open(opts.History.Path)
	if err != nil {
		return err
	}
	defer func() {
		_ = store.Close()
	}()

	ctx := context.Background()

	if h.RunID != "" {
		links, err := store.BrokenLinksForRun(ctx, h.RunID)
		if err != nil {
			return err
		}
		for _, bl := range links {
			fmt.Fprintf(os.Stdout, "%s  %s [%s] %s\n", bl.SourceFile, bl.Href, bl.Reason, bl.Error)
		}
		return nil
	}

	runs, err := store.RecentRuns(ctx, h.Limit)
	if err != nil {
		return err
	}
	return report.FormatRuns(os.Stdout, runs)
}
