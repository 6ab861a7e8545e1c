package commands

import (
	"context"
	"log/slog"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/linkcheck/internal/checker"
	"git.home.luguber.info/inful/linkcheck/internal/config"
	"git.home.luguber.info/inful/linkcheck/internal/daemon"
	"git.home.luguber.info/inful/linkcheck/internal/logfields"
	"git.home.luguber.info/inful/linkcheck/internal/metrics"
)

// DaemonCmd implements the 'daemon' command: periodic re-checks with
// optional Prometheus metrics.
type DaemonCmd struct {
	Root     string        `arg:"" optional:"" help:"Build output directory to check (defaults to config root)"`
	Interval time.Duration `help:"Override the re-check interval (e.g. 30m)"`
}

func (d *DaemonCmd) Run(_ *Global, root *CLI) error {
	opts, err := loadOptions(root, func(o *config.Options) {
		if d.Root != "" {
			o.Root = d.Root
		}
		if d.Interval > 0 {
			o.Daemon.Interval = d.Interval.String()
		}
	})
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	recorder := metrics.Recorder(metrics.NoopRecorder{})
	var metricsServer *http.Server
	if opts.Metrics.Enabled {
		registry := prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(registry)

		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.HTTPHandler(registry))
		metricsServer = &http.Server{Addr: opts.Metrics.Listen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			slog.Info("Serving metrics", slog.String("listen", opts.Metrics.Listen))
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("Metrics server failed", logfields.Error(err))
			}
		}()
	}

	runner := checker.NewRunner(opts, checker.WithRecorder(recorder))

	var mu sync.Mutex
	runOnce := func() {
		mu.Lock()
		defer mu.Unlock()
		result, err := runner.Run(ctx, opts.Root)
		if err != nil {
			warnSink("check", err)
			return
		}
		recordAndPublish(ctx, opts, result)
	}

	scheduler, err := daemon.NewScheduler()
	if err != nil {
		return err
	}
	if _, err := scheduler.SchedulePeriodicCheck(opts.CheckInterval(), runOnce); err != nil {
		return err
	}
	scheduler.Start(ctx)
	defer func() {
		_ = scheduler.Stop(ctx)
	}()

	// First check immediately; the schedule covers subsequent runs.
	runOnce()

	<-ctx.Done()

	if metricsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}
	return nil
}
