package extract

import (
	"path"
	"strings"
)

// LinkType classifies a discovered reference by how it must be validated.
type LinkType string

const (
	// TypeInternal links resolve against the build root filesystem tree.
	TypeInternal LinkType = "internal"
	// TypeExternal links resolve against a live network endpoint.
	TypeExternal LinkType = "external"
	// TypeAsset references non-document resources (images, scripts, ...).
	TypeAsset LinkType = "asset"
	// TypeAnchor references a fragment within the current document.
	TypeAnchor LinkType = "anchor"
)

// Link is one discovered reference. One record per occurrence, no dedup.
type Link struct {
	Href       string   `json:"href"`        // Raw reference string as written in markup
	Text       string   `json:"text"`        // Human-readable label; falls back to Href
	SourceFile string   `json:"source_file"` // Absolute path of the document containing the reference
	Type       LinkType `json:"type"`        // Assigned once at extraction time, never revised
}

// assetExtensions is the fixed extension set that classifies a reference
// as an asset: images, stylesheets, scripts, fonts, media, documents, archives.
var assetExtensions = map[string]bool{
	// images
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".svg": true,
	".webp": true, ".avif": true, ".ico": true, ".bmp": true,
	// stylesheets and scripts
	".css": true, ".js": true, ".mjs": true, ".map": true,
	// fonts
	".woff": true, ".woff2": true, ".ttf": true, ".otf": true, ".eot": true,
	// media
	".mp4": true, ".webm": true, ".mp3": true, ".wav": true, ".ogg": true, ".m4a": true,
	// documents
	".pdf": true, ".txt": true, ".xml": true, ".json": true, ".csv": true,
	// archives
	".zip": true, ".gz": true, ".tgz": true, ".tar": true, ".bz2": true,
}

// Classify assigns a link type to a raw href/src value. It is a pure
// function of the string: the same value always yields the same type.
// First match wins: fragment, external scheme, asset extension, internal.
func Classify(href string) LinkType {
	if strings.HasPrefix(href, "#") {
		return TypeAnchor
	}
	if strings.HasPrefix(href, "http://") ||
		strings.HasPrefix(href, "https://") ||
		strings.HasPrefix(href, "//") {
		return TypeExternal
	}
	if assetExtensions[extensionOf(href)] {
		return TypeAsset
	}
	return TypeInternal
}

// extensionOf returns the lowercased file extension of a reference with
// any query string and fragment stripped.
func extensionOf(href string) string {
	if i := strings.IndexAny(href, "?#"); i >= 0 {
		href = href[:i]
	}
	return strings.ToLower(path.Ext(href))
}
