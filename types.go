package inkpress

// ViewMode selects how the listing page renders its posts.
type ViewMode string

const (
	// ViewGrid is the default card grid.
	ViewGrid ViewMode = "grid"
	// ViewList is the compact list layout, selected with ?view=list.
	ViewList ViewMode = "list"
)

// ParseViewMode maps a navigation parameter to a ViewMode; anything other
// than "list" falls back to the card grid.
func ParseViewMode(s string) ViewMode {
	if s == string(ViewList) {
		return ViewList
	}
	return ViewGrid
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
}
