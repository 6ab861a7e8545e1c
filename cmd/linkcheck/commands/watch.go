package commands

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"git.home.luguber.info/inful/linkcheck/internal/checker"
	"git.home.luguber.info/inful/linkcheck/internal/config"
	"git.home.luguber.info/inful/linkcheck/internal/daemon"
	"git.home.luguber.info/inful/linkcheck/internal/report"
)

// WatchCmd implements the 'watch' command: an initial check followed by
// debounced re-checks on filesystem change, until interrupted.
type WatchCmd struct {
	Root          string `arg:"" optional:"" help:"Build output directory to watch (defaults to config root)"`
	CheckExternal bool   `short:"e" help:"Also probe external links over the network"`
}

func (w *WatchCmd) Run(_ *Global, root *CLI) error {
	opts, err := loadOptions(root, func(o *config.Options) {
		if w.Root != "" {
			o.Root = w.Root
		}
		if w.CheckExternal {
			o.CheckExternal = true
		}
	})
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runner := checker.NewRunner(opts)
	formatter := report.NewFormatter("text")

	var mu sync.Mutex
	runOnce := func() {
		mu.Lock()
		defer mu.Unlock()
		result, err := runner.Run(ctx, opts.Root)
		if err != nil {
			warnSink("check", err)
			return
		}
		_ = formatter.Format(os.Stdout, result)
		recordAndPublish(ctx, opts, result)
	}

	runOnce()

	watcher, err := daemon.NewWatcher(opts.Root, opts.DebounceDelay(), runOnce)
	if err != nil {
		return err
	}
	if err := watcher.Start(ctx); err != nil {
		return err
	}
	defer func() {
		_ = watcher.Stop()
	}()

	<-ctx.Done()
	return nil
}
