package checker

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"git.home.luguber.info/inful/linkcheck/internal/config"
	"git.home.luguber.info/inful/linkcheck/internal/extract"
	"git.home.luguber.info/inful/linkcheck/internal/metrics"
	"git.home.luguber.info/inful/linkcheck/internal/redirects"
)

// batchSize bounds concurrent in-flight checks per file. Batch N+1 does
// not start until batch N fully completes.
const batchSize = 10

// Validator orchestrates extraction and per-link dispatch for one
// document at a time.
type Validator struct {
	buildRoot string
	rules     []redirects.Rule
	opts      config.Options
	prober    *Prober
	recorder  metrics.Recorder
}

// NewValidator creates a file validator rooted at buildRoot.
func NewValidator(buildRoot string, rules []redirects.Rule, opts config.Options, prober *Prober, recorder metrics.Recorder) *Validator {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Validator{
		buildRoot: buildRoot,
		rules:     rules,
		opts:      opts,
		prober:    prober,
		recorder:  recorder,
	}
}

// ValidateFile extracts links from one document and validates them in
// fixed-size concurrent batches. It returns the total link count and the
// broken links in extraction order. A read/parse failure propagates so
// the caller can record the file as skipped.
func (v *Validator) ValidateFile(ctx context.Context, path string) (int, []BrokenLink, error) {
	var links []extract.Link
	var err error
	if isMarkdown(path) {
		links, err = extract.ExtractMarkdownFile(path)
	} else {
		links, err = extract.ExtractFile(path)
	}
	if err != nil {
		return 0, nil, err
	}

	total := len(links)
	checkable := v.filterExcluded(links)

	var broken []BrokenLink
	for start := 0; start < len(checkable); start += batchSize {
		end := min(start+batchSize, len(checkable))
		batch := checkable[start:end]

		results := make([]*BrokenLink, len(batch))
		var wg sync.WaitGroup
		for i, link := range batch {
			wg.Add(1)
			go func(i int, link extract.Link) {
				defer wg.Done()
				results[i] = v.checkLink(ctx, link)
			}(i, link)
		}
		wg.Wait()

		for _, r := range results {
			if r != nil {
				broken = append(broken, *r)
			}
		}
	}

	return total, broken, nil
}

// checkLink dispatches a single link to the resolver or prober. Anchor
// links are never checked; external links only when enabled.
func (v *Validator) checkLink(ctx context.Context, link extract.Link) *BrokenLink {
	switch link.Type {
	case extract.TypeAnchor:
		return nil
	case extract.TypeExternal:
		if !v.opts.CheckExternal {
			return nil
		}
		v.recorder.IncLinkChecked(string(link.Type))
		started := time.Now()
		bl := v.prober.Probe(ctx, link)
		v.recorder.ObserveProbeDuration(time.Since(started), bl == nil)
		if bl != nil {
			v.recorder.IncBrokenLink(string(bl.Reason))
		}
		return bl
	default: // internal and asset
		v.recorder.IncLinkChecked(string(link.Type))
		bl := ResolveInternal(link, v.buildRoot, v.rules)
		if bl != nil {
			v.recorder.IncBrokenLink(string(bl.Reason))
		}
		return bl
	}
}

// filterExcluded drops links whose href contains any configured
// exclusion substring.
func (v *Validator) filterExcluded(links []extract.Link) []extract.Link {
	if len(v.opts.Exclude) == 0 {
		return links
	}
	filtered := make([]extract.Link, 0, len(links))
	for _, link := range links {
		if v.isExcluded(link.Href) {
			continue
		}
		filtered = append(filtered, link)
	}
	return filtered
}

func (v *Validator) isExcluded(href string) bool {
	for _, pattern := range v.opts.Exclude {
		if strings.Contains(href, pattern) {
			return true
		}
	}
	return false
}

func isMarkdown(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".md" || ext == ".markdown"
}
