package checker

import (
	"time"

	"git.home.luguber.info/inful/linkcheck/internal/extract"
)

// Reason classifies why a link failed validation.
type Reason string

const (
	// ReasonNotFound: filesystem resolution exhausted all fallbacks.
	ReasonNotFound Reason = "not-found"
	// ReasonNetworkError: non-success response or transport failure.
	ReasonNetworkError Reason = "network-error"
	// ReasonTimeout: external probe exceeded its deadline.
	ReasonTimeout Reason = "timeout"
	// ReasonInvalid: security/path-containment violation.
	ReasonInvalid Reason = "invalid"
)

// BrokenLink is a Link decorated with failure detail. It is created only
// when validation fails; valid links produce no record.
type BrokenLink struct {
	extract.Link
	Error  string `json:"error"`
	Reason Reason `json:"reason"`
}

// Result aggregates one validation run. It is mutated only by the runner
// as files complete and is immutable once returned.
type Result struct {
	RunID        string        `json:"run_id"`
	Root         string        `json:"root"`
	StartedAt    time.Time     `json:"started_at"`
	Duration     time.Duration `json:"duration"`
	TotalLinks   int           `json:"total_links"`
	BrokenLinks  []BrokenLink  `json:"broken_links"`
	CheckedFiles []string      `json:"checked_files"`
	SkippedFiles []string      `json:"skipped_files"`
}

// HasBrokenLinks reports whether any link failed validation.
func (r *Result) HasBrokenLinks() bool {
	return len(r.BrokenLinks) > 0
}
