package inkpress

import (
	"strings"

	"github.com/ewestberg/inkpress/content"
)

// Filter returns the posts whose title, description, or tags contain term as
// a case-insensitive substring. A term that trims to empty returns posts
// unchanged. The relative order of kept posts is preserved; there is no
// relevance ranking.
func Filter(posts []content.Post, term string) []content.Post {
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return posts
	}
	var matched []content.Post
	for _, p := range posts {
		if matchesTerm(p, needle) {
			matched = append(matched, p)
		}
	}
	return matched
}

// matchesTerm checks the three searchable fields; a hit in any one keeps the
// post. needle must already be lower-cased and trimmed.
func matchesTerm(p content.Post, needle string) bool {
	if strings.Contains(strings.ToLower(p.Title), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(p.Description), needle) {
		return true
	}
	return strings.Contains(strings.ToLower(strings.Join(p.Tags, " ")), needle)
}
