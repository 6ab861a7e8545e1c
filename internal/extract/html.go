// Package extract mines reference-bearing attributes out of generated
// documents and classifies each reference for validation dispatch.
package extract

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/linkcheck/internal/errors"
)

// hrefSchemesSkipped lists href schemes that never resolve to a resource.
var hrefSchemesSkipped = []string{"javascript:", "mailto:", "tel:"}

// srcSchemesSkipped lists src/srcset schemes carrying embedded data.
var srcSchemesSkipped = []string{"data:", "blob:"}

// hrefTags and srcTags form the tag -> attribute match table. href-bearing
// and src-bearing values are classified; srcset candidates are always assets.
var (
	hrefTags   = map[string]bool{"a": true, "link": true}
	srcTags    = map[string]bool{"img": true, "script": true, "iframe": true, "source": true, "video": true, "audio": true}
	srcsetTags = map[string]bool{"img": true, "source": true}
)

// ExtractFile extracts all links from an HTML file on disk.
func ExtractFile(htmlPath string) ([]Link, error) {
	file, err := os.Open(filepath.Clean(htmlPath))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to open HTML file").WithContext("path", htmlPath)
	}
	defer func() {
		_ = file.Close() // Ignore close errors on read-only operation
	}()

	return Extract(file, htmlPath)
}

// Extract parses HTML from r and returns every reachable link/asset
// reference, classified and materialized in document order.
func Extract(r io.Reader, sourceFile string) ([]Link, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "failed to parse HTML").WithContext("path", sourceFile)
	}

	links := make([]Link, 0)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			collectElementLinks(n, sourceFile, &links)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(doc)
	return links, nil
}

// collectElementLinks appends links found on a single HTML element.
func collectElementLinks(n *html.Node, sourceFile string, links *[]Link) {
	if hrefTags[n.Data] {
		if href := getAttr(n, "href"); href != "" && !hasScheme(href, hrefSchemesSkipped) {
			*links = append(*links, Link{
				Href:       href,
				Text:       labelFor(n, href),
				SourceFile: sourceFile,
				Type:       Classify(href),
			})
		}
	}
	if srcTags[n.Data] {
		if src := getAttr(n, "src"); src != "" && !hasScheme(src, srcSchemesSkipped) {
			*links = append(*links, Link{
				Href:       src,
				Text:       labelFor(n, src),
				SourceFile: sourceFile,
				Type:       Classify(src),
			})
		}
	}
	if srcsetTags[n.Data] {
		for _, candidate := range splitSrcset(getAttr(n, "srcset")) {
			if hasScheme(candidate, srcSchemesSkipped) {
				continue
			}
			*links = append(*links, Link{
				Href:       candidate,
				Text:       candidate,
				SourceFile: sourceFile,
				Type:       TypeAsset,
			})
		}
	}
}

// splitSrcset splits a srcset value on commas and keeps only the URL token
// of each candidate, discarding the width/density descriptor.
func splitSrcset(srcset string) []string {
	if srcset == "" {
		return nil
	}
	var urls []string
	for _, candidate := range strings.Split(srcset, ",") {
		fields := strings.Fields(candidate)
		if len(fields) == 0 {
			continue
		}
		urls = append(urls, fields[0])
	}
	return urls
}

// labelFor derives a human-readable label for a link: element text, then
// title, then alt, then the raw reference itself.
func labelFor(n *html.Node, href string) string {
	if text := extractText(n); text != "" {
		return text
	}
	if title := getAttr(n, "title"); title != "" {
		return title
	}
	if alt := getAttr(n, "alt"); alt != "" {
		return alt
	}
	return href
}

// hasScheme reports whether the value starts with any of the given schemes.
func hasScheme(value string, schemes []string) bool {
	lower := strings.ToLower(strings.TrimSpace(value))
	for _, scheme := range schemes {
		if strings.HasPrefix(lower, scheme) {
			return true
		}
	}
	return false
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// extractText extracts text content from an HTML node and its children.
func extractText(n *html.Node) string {
	if n.Type == html.TextNode {
		return strings.TrimSpace(n.Data)
	}

	var text strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		text.WriteString(extractText(c))
	}

	return strings.TrimSpace(text.String())
}
