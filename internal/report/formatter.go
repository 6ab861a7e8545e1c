// Package report renders aggregated validation results for the console
// and for machine consumption.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/linkcheck/internal/checker"
)

// Formatter renders a validation result for output.
type Formatter interface {
	Format(w io.Writer, result *checker.Result) error
}

// NewFormatter selects a formatter by name ("json" or anything else for text).
func NewFormatter(format string) Formatter {
	if strings.EqualFold(format, "json") {
		return &JSONFormatter{}
	}
	return &TextFormatter{}
}

// TextFormatter formats results as human-readable text.
type TextFormatter struct{}

// Format outputs results in human-readable text format, grouped by
// source document in document order.
func (f *TextFormatter) Format(w io.Writer, result *checker.Result) error {
	if _, err := fmt.Fprintf(w, "Checked links in: %s\n", result.Root); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, strings.Repeat("━", 60)); err != nil {
		return err
	}

	lastSource := ""
	for _, bl := range result.BrokenLinks {
		if bl.SourceFile != lastSource {
			lastSource = bl.SourceFile
			if _, err := fmt.Fprintf(w, "\n%s\n", displayPath(result.Root, bl.SourceFile)); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "  ✗ %s [%s] %s\n", bl.Href, bl.Reason, bl.Error); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, strings.Repeat("━", 60)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Results:\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "  %d file%s checked, %d skipped\n",
		len(result.CheckedFiles), pluralize(len(result.CheckedFiles)), len(result.SkippedFiles)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "  %d link%s found\n", result.TotalLinks, pluralize(result.TotalLinks)); err != nil {
		return err
	}

	broken := len(result.BrokenLinks)
	if broken > 0 {
		_, err := fmt.Fprintf(w, "  %d broken link%s\n", broken, pluralize(broken))
		return err
	}
	_, err := fmt.Fprintln(w, "  all links ok")
	return err
}

// JSONFormatter formats results as a single JSON document.
type JSONFormatter struct{}

// Format outputs the result structure as indented JSON.
func (f *JSONFormatter) Format(w io.Writer, result *checker.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// displayPath shortens an absolute source path to build-root relative
// when possible.
func displayPath(root, p string) string {
	if rel, err := filepath.Rel(root, p); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return p
}

func pluralize(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
