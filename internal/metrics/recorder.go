// Package metrics provides observability hooks for validation runs.
// Components receive a Recorder through dependency injection; the
// NoopRecorder default makes metrics strictly optional.
package metrics

import "time"

// Recorder defines observability hooks for run, file, and probe metrics.
// All methods must be safe for zero-value receivers so injection stays optional.
type Recorder interface {
	ObserveRunDuration(d time.Duration)
	ObserveProbeDuration(d time.Duration, success bool)
	IncLinkChecked(linkType string)
	IncBrokenLink(reason string)
	IncFileResult(outcome string) // outcome: checked|skipped
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveRunDuration(time.Duration)         {}
func (NoopRecorder) ObserveProbeDuration(time.Duration, bool) {}
func (NoopRecorder) IncLinkChecked(string)                    {}
func (NoopRecorder) IncBrokenLink(string)                     {}
func (NoopRecorder) IncFileResult(string)                     {}
