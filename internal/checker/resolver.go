package checker

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/linkcheck/internal/extract"
	"git.home.luguber.info/inful/linkcheck/internal/redirects"
)

// maxRedirectDepth bounds redirect-rule recursion. Rule chains are
// expected to be short; anything deeper is a rule cycle.
const maxRedirectDepth = 10

// containmentViolation is the fixed message reported whenever a resolved
// candidate would escape the build root, regardless of whether a file
// exists at that location.
const containmentViolation = "link resolves outside the build root"

// ResolveInternal determines whether a link resolves against the build
// root, following redirect rules before concluding not-found. A nil
// return means the link is valid (or deferred to the external pipeline).
func ResolveInternal(link extract.Link, buildRoot string, rules []redirects.Rule) *BrokenLink {
	return resolveHref(link, link.Href, buildRoot, rules, 0)
}

func resolveHref(link extract.Link, href, buildRoot string, rules []redirects.Rule, depth int) *BrokenLink {
	if depth > maxRedirectDepth {
		return &BrokenLink{
			Link:   link,
			Error:  fmt.Sprintf("redirect loop detected following rules for %q", link.Href),
			Reason: ReasonInvalid,
		}
	}

	// Absolute URLs are handled by the external prober pipeline.
	if isAbsoluteURL(href) {
		return nil
	}

	clean := stripQueryFragment(href)

	// Pure-fragment links reference the current document.
	if clean == "" {
		return nil
	}

	// Root-relative paths may be intentionally redirected rather than broken.
	if strings.HasPrefix(clean, "/") && len(rules) > 0 {
		if rule := redirects.Match(clean, rules); rule != nil {
			dest := redirects.Resolve(clean, *rule)
			if isAbsoluteURL(dest) {
				return nil
			}
			return resolveHref(link, dest, buildRoot, rules, depth+1)
		}
	}

	var candidate string
	if strings.HasPrefix(clean, "/") {
		candidate = filepath.Join(buildRoot, filepath.FromSlash(clean))
	} else {
		candidate = filepath.Join(filepath.Dir(link.SourceFile), filepath.FromSlash(clean))
	}

	rootAbs, err := filepath.Abs(buildRoot)
	if err != nil {
		rootAbs = buildRoot
	}
	candAbs, err := filepath.Abs(candidate)
	if err != nil {
		candAbs = candidate
	}
	if !within(candAbs, rootAbs) {
		return &BrokenLink{Link: link, Error: containmentViolation, Reason: ReasonInvalid}
	}

	// Resolution order: exact file, extensionless + .html, index document.
	if isFile(candAbs) {
		return nil
	}
	if filepath.Ext(candAbs) == "" && isFile(candAbs+".html") {
		return nil
	}
	if isFile(filepath.Join(candAbs, "index.html")) {
		return nil
	}

	rel, err := filepath.Rel(rootAbs, candAbs)
	if err != nil {
		rel = candAbs
	}
	return &BrokenLink{
		Link:   link,
		Error:  fmt.Sprintf("file not found: %s", filepath.ToSlash(rel)),
		Reason: ReasonNotFound,
	}
}

// stripQueryFragment removes a trailing fragment and query string from a
// raw href, leaving a clean path.
func stripQueryFragment(href string) string {
	if i := strings.IndexByte(href, '#'); i >= 0 {
		href = href[:i]
	}
	if i := strings.IndexByte(href, '?'); i >= 0 {
		href = href[:i]
	}
	return href
}

// isAbsoluteURL reports whether a reference targets a network endpoint
// rather than the local tree.
func isAbsoluteURL(href string) bool {
	return strings.HasPrefix(href, "http://") ||
		strings.HasPrefix(href, "https://") ||
		strings.HasPrefix(href, "//")
}

// within reports whether path sits at or below root. Both arguments must
// already be absolute and cleaned.
func within(path, root string) bool {
	if path == root {
		return true
	}
	return strings.HasPrefix(path, root+string(os.PathSeparator))
}

// isFile reports whether path exists and is a regular file.
func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
