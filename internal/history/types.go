package history

import "git.home.luguber.info/inful/linkcheck/internal/extract"

// linkTypeFrom maps a persisted type string back onto the link type enum.
func linkTypeFrom(s string) extract.LinkType {
	switch extract.LinkType(s) {
	case extract.TypeInternal, extract.TypeExternal, extract.TypeAsset, extract.TypeAnchor:
		return extract.LinkType(s)
	default:
		return extract.TypeInternal
	}
}
