package checker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"git.home.luguber.info/inful/linkcheck/internal/extract"
)

// userAgent identifies outbound existence probes.
const userAgent = "linkcheck/1.0 (+https://git.home.luguber.info/inful/linkcheck)"

// Prober issues bounded-time network existence probes for external links.
type Prober struct {
	client  *http.Client
	timeout time.Duration
	base    string
}

// NewProber creates a prober. Each probe is bounded by timeout; base is
// used to absolutize protocol-relative URLs (https when base is unset).
func NewProber(timeout time.Duration, base string) *Prober {
	// Cloning the default transport keeps HTTP_PROXY/NO_PROXY support.
	transport := http.DefaultTransport.(*http.Transport).Clone()

	return &Prober{
		client:  &http.Client{Transport: transport},
		timeout: timeout,
		base:    base,
	}
}

// Probe issues a HEAD request against the link's absolute URL. A nil
// return means the endpoint exists. No body is transferred.
func (p *Prober) Probe(ctx context.Context, link extract.Link) *BrokenLink {
	target := p.absolutize(link.Href)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		return &BrokenLink{
			Link:   link,
			Error:  fmt.Sprintf("failed to create request: %v", err),
			Reason: ReasonNetworkError,
		}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return &BrokenLink{
				Link:   link,
				Error:  fmt.Sprintf("probe timed out after %s", p.timeout),
				Reason: ReasonTimeout,
			}
		}
		return &BrokenLink{
			Link:   link,
			Error:  fmt.Sprintf("request failed: %v", err),
			Reason: ReasonNetworkError,
		}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	_, _ = io.Copy(io.Discard, resp.Body)

	if !acceptableStatus(resp.StatusCode) {
		return &BrokenLink{
			Link:   link,
			Error:  fmt.Sprintf("HTTP %d: %s", resp.StatusCode, resp.Status),
			Reason: ReasonNetworkError,
		}
	}

	return nil
}

// acceptableStatus treats 2xx-3xx as reachable. Auth-gated status codes
// indicate the URL exists but requires credentials.
func acceptableStatus(code int) bool {
	if code >= http.StatusOK && code < http.StatusBadRequest {
		return true
	}
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusMethodNotAllowed:
		return true
	}
	return false
}

// absolutize resolves a protocol-relative reference against the
// configured base URL's scheme, defaulting to https.
func (p *Prober) absolutize(href string) string {
	if !strings.HasPrefix(href, "//") {
		return href
	}
	scheme := "https"
	if p.base != "" {
		if u, err := url.Parse(p.base); err == nil && u.Scheme != "" {
			scheme = u.Scheme
		}
	}
	return scheme + ":" + href
}
