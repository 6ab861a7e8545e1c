// Package checker implements the link validation engine: internal
// filesystem resolution, external existence probing, per-file batched
// validation, and run orchestration over a build output tree.
package checker

import (
	"context"
	"io/fs"
	"log/slog"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/linkcheck/internal/config"
	"git.home.luguber.info/inful/linkcheck/internal/errors"
	"git.home.luguber.info/inful/linkcheck/internal/logfields"
	"git.home.luguber.info/inful/linkcheck/internal/metrics"
	"git.home.luguber.info/inful/linkcheck/internal/redirects"
)

// Runner walks a build root and aggregates per-file validation results.
type Runner struct {
	opts     config.Options
	recorder metrics.Recorder
}

// RunnerOption customizes a Runner.
type RunnerOption func(*Runner)

// WithRecorder injects a metrics recorder (NoopRecorder by default).
func WithRecorder(r metrics.Recorder) RunnerOption {
	return func(run *Runner) {
		if r != nil {
			run.recorder = r
		}
	}
}

// NewRunner creates a runner with the given options.
func NewRunner(opts config.Options, rops ...RunnerOption) *Runner {
	r := &Runner{
		opts:     opts,
		recorder: metrics.NoopRecorder{},
	}
	for _, op := range rops {
		op(r)
	}
	return r
}

// Run validates every included document under buildRoot. A single bad
// file never aborts the run; it is recorded under skipped files. The
// only fatal condition is an unreadable build root.
func (r *Runner) Run(ctx context.Context, buildRoot string) (*Result, error) {
	started := time.Now()

	rootAbs, err := filepath.Abs(buildRoot)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to resolve build root").WithContext("root", buildRoot)
	}

	files, err := r.collectFiles(rootAbs)
	if err != nil {
		return nil, err
	}

	rules := redirects.Load(rootAbs, r.opts.RedirectsFile)

	result := &Result{
		RunID:        uuid.NewString(),
		Root:         rootAbs,
		StartedAt:    started,
		BrokenLinks:  make([]BrokenLink, 0),
		CheckedFiles: make([]string, 0, len(files)),
		SkippedFiles: make([]string, 0),
	}

	slog.Info("Starting link check",
		logfields.RunID(result.RunID),
		logfields.Root(rootAbs),
		logfields.FileCount(len(files)))

	prober := NewProber(r.opts.Timeout(), r.opts.Base)
	validator := NewValidator(rootAbs, rules, r.opts, prober, r.recorder)

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.CategoryInternal, errors.SeverityError, "link check canceled")
		}

		total, broken, err := validator.ValidateFile(ctx, file)
		if err != nil {
			slog.Warn("Skipping file after read/parse failure",
				logfields.Path(file),
				logfields.Error(err))
			result.SkippedFiles = append(result.SkippedFiles, file)
			r.recorder.IncFileResult("skipped")
			continue
		}

		result.TotalLinks += total
		result.BrokenLinks = append(result.BrokenLinks, broken...)
		result.CheckedFiles = append(result.CheckedFiles, file)
		r.recorder.IncFileResult("checked")

		slog.Debug("Checked file",
			logfields.Path(file),
			logfields.LinkCount(total),
			logfields.BrokenCount(len(broken)))
	}

	result.Duration = time.Since(started)
	r.recorder.ObserveRunDuration(result.Duration)

	slog.Info("Link check completed",
		logfields.RunID(result.RunID),
		logfields.LinkCount(result.TotalLinks),
		logfields.BrokenCount(len(result.BrokenLinks)),
		logfields.DurationMS(float64(result.Duration.Milliseconds())))

	return result, nil
}

// collectFiles walks the build root and returns included documents in
// deterministic (lexical walk) order.
func (r *Runner) collectFiles(rootAbs string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(rootAbs, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == rootAbs {
				return err
			}
			// Unreadable subtrees degrade to a warning.
			slog.Warn("Skipping unreadable path", logfields.Path(p), logfields.Error(err))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(rootAbs, p)
		if relErr != nil {
			return nil
		}
		if matchInclude(r.opts.Include, filepath.ToSlash(rel)) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to walk build root").WithContext("root", rootAbs)
	}
	sort.Strings(files)
	return files, nil
}

// matchInclude tests a slash-separated relative path against glob-like
// include patterns. A leading "**/" matches any directory depth,
// including none.
func matchInclude(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if ok, err := path.Match(pattern, rel); err == nil && ok {
			return true
		}
		if rest, found := strings.CutPrefix(pattern, "**/"); found {
			if ok, err := path.Match(rest, rel); err == nil && ok {
				return true
			}
			if ok, err := path.Match(rest, path.Base(rel)); err == nil && ok {
				return true
			}
		}
	}
	return false
}
