package checker

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"git.home.luguber.info/inful/linkcheck/internal/config"
)

func writeHTML(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func newTestValidator(root string, opts config.Options) *Validator {
	return NewValidator(root, nil, opts, NewProber(time.Second, ""), nil)
}

func TestValidateFile_CountsAllAndReportsBroken(t *testing.T) {
	root := t.TempDir()
	writeHTML(t, filepath.Join(root, "ok.html"), "ok")
	page := filepath.Join(root, "index.html")
	writeHTML(t, page, `<a href="/ok.html">ok</a><a href="/missing.html">gone</a><a href="#top">top</a>`)

	v := newTestValidator(root, config.Default())
	total, broken, err := v.ValidateFile(context.Background(), page)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if total != 3 {
		t.Fatalf("total=%d, want 3", total)
	}
	if len(broken) != 1 {
		t.Fatalf("broken=%d, want 1", len(broken))
	}
	if broken[0].Href != "/missing.html" {
		t.Fatalf("broken href=%q", broken[0].Href)
	}
}

func TestValidateFile_ExclusionRemovesExactlyThatLink(t *testing.T) {
	root := t.TempDir()
	page := filepath.Join(root, "index.html")
	writeHTML(t, page, `<a href="/gone-one.html">a</a><a href="/gone-two.html">b</a>`)

	opts := config.Default()
	opts.Exclude = []string{"gone-one"}
	v := newTestValidator(root, opts)

	_, broken, err := v.ValidateFile(context.Background(), page)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(broken) != 1 {
		t.Fatalf("broken=%d, want 1", len(broken))
	}
	if broken[0].Href != "/gone-two.html" {
		t.Fatalf("surviving broken link=%q, want /gone-two.html", broken[0].Href)
	}
}

func TestValidateFile_ExternalSkippedWhenDisabled(t *testing.T) {
	root := t.TempDir()
	page := filepath.Join(root, "index.html")
	// Nothing listens on this address; the link only fails if probed.
	writeHTML(t, page, `<a href="http://127.0.0.1:1/down">external</a>`)

	v := newTestValidator(root, config.Default())
	total, broken, err := v.ValidateFile(context.Background(), page)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if total != 1 {
		t.Fatalf("total=%d, want 1", total)
	}
	if len(broken) != 0 {
		t.Fatalf("external link must not be probed when disabled, got %v", broken)
	}
}

func TestValidateFile_ExternalProbedWhenEnabled(t *testing.T) {
	root := t.TempDir()
	page := filepath.Join(root, "index.html")
	writeHTML(t, page, `<a href="http://127.0.0.1:1/down">external</a>`)

	opts := config.Default()
	opts.CheckExternal = true
	v := newTestValidator(root, opts)

	_, broken, err := v.ValidateFile(context.Background(), page)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(broken) != 1 {
		t.Fatalf("broken=%d, want 1", len(broken))
	}
	if broken[0].Reason != ReasonNetworkError {
		t.Fatalf("reason=%s, want %s", broken[0].Reason, ReasonNetworkError)
	}
}

func TestValidateFile_BrokenLinksKeepExtractionOrder(t *testing.T) {
	root := t.TempDir()
	page := filepath.Join(root, "index.html")

	// More links than one batch to exercise the batch barrier.
	var body string
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"} {
		body += `<a href="/missing-` + name + `.html">` + name + `</a>`
	}
	writeHTML(t, page, body)

	v := newTestValidator(root, config.Default())
	_, broken, err := v.ValidateFile(context.Background(), page)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(broken) != 12 {
		t.Fatalf("broken=%d, want 12", len(broken))
	}
	for i, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"} {
		want := "/missing-" + name + ".html"
		if broken[i].Href != want {
			t.Fatalf("broken[%d]=%q, want %q", i, broken[i].Href, want)
		}
	}
}

func TestValidateFile_ReadFailurePropagates(t *testing.T) {
	root := t.TempDir()
	v := newTestValidator(root, config.Default())
	if _, _, err := v.ValidateFile(context.Background(), filepath.Join(root, "absent.html")); err == nil {
		t.Fatal("expected error for unreadable file")
	}
}
