package report

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/linkcheck/internal/checker"
	"git.home.luguber.info/inful/linkcheck/internal/extract"
)

func resultWithBrokenLinks() *checker.Result {
	return &checker.Result{
		RunID:      "run-1",
		Root:       "/srv/site",
		StartedAt:  time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
		Duration:   2 * time.Second,
		TotalLinks: 7,
		BrokenLinks: []checker.BrokenLink{
			{
				Link:   extract.Link{Href: "/gone.html", SourceFile: "/srv/site/index.html", Type: extract.TypeInternal},
				Reason: checker.ReasonNotFound,
				Error:  "file not found: gone.html",
			},
			{
				Link:   extract.Link{Href: "/also-gone.html", SourceFile: "/srv/site/index.html", Type: extract.TypeInternal},
				Reason: checker.ReasonNotFound,
				Error:  "file not found: also-gone.html",
			},
			{
				Link:   extract.Link{Href: "https://example.com/x", SourceFile: "/srv/site/docs/guide.html", Type: extract.TypeExternal},
				Reason: checker.ReasonTimeout,
				Error:  "request timed out",
			},
		},
		CheckedFiles: []string{"/srv/site/index.html", "/srv/site/docs/guide.html"},
		SkippedFiles: []string{"/srv/site/bad.html"},
	}
}

func TestNewFormatter(t *testing.T) {
	assert.IsType(t, &JSONFormatter{}, NewFormatter("json"))
	assert.IsType(t, &JSONFormatter{}, NewFormatter("JSON"))
	assert.IsType(t, &TextFormatter{}, NewFormatter("text"))
	assert.IsType(t, &TextFormatter{}, NewFormatter(""))
}

func TestTextFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&TextFormatter{}).Format(&buf, resultWithBrokenLinks()))
	out := buf.String()

	assert.Contains(t, out, "Checked links in: /srv/site")

	// Broken links are grouped under their source document, shown
	// root-relative, with the source printed once per group.
	assert.Contains(t, out, "\nindex.html\n")
	assert.Contains(t, out, "\ndocs/guide.html\n")
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("\nindex.html\n")))

	assert.Contains(t, out, "✗ /gone.html [not-found] file not found: gone.html")
	assert.Contains(t, out, "✗ https://example.com/x [timeout] request timed out")

	assert.Contains(t, out, "2 files checked, 1 skipped")
	assert.Contains(t, out, "7 links found")
	assert.Contains(t, out, "3 broken links")
	assert.NotContains(t, out, "all links ok")
}

func TestTextFormatterCleanRun(t *testing.T) {
	result := resultWithBrokenLinks()
	result.BrokenLinks = nil
	result.TotalLinks = 1
	result.CheckedFiles = result.CheckedFiles[:1]
	result.SkippedFiles = nil

	var buf bytes.Buffer
	require.NoError(t, (&TextFormatter{}).Format(&buf, result))
	out := buf.String()

	assert.Contains(t, out, "1 file checked, 0 skipped")
	assert.Contains(t, out, "1 link found")
	assert.Contains(t, out, "all links ok")
	assert.NotContains(t, out, "✗")
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSONFormatter{}).Format(&buf, resultWithBrokenLinks()))

	var decoded checker.Result
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, "run-1", decoded.RunID)
	assert.Equal(t, "/srv/site", decoded.Root)
	assert.Equal(t, 7, decoded.TotalLinks)
	require.Len(t, decoded.BrokenLinks, 3)
	assert.Equal(t, "/gone.html", decoded.BrokenLinks[0].Href)
	assert.Equal(t, checker.ReasonNotFound, decoded.BrokenLinks[0].Reason)
	assert.Equal(t, extract.TypeExternal, decoded.BrokenLinks[2].Type)
}
