package inkpress

import (
	"sort"

	"github.com/ewestberg/inkpress/content"
)

// TagCount is one entry of the tag cloud, recomputed from the full post set
// on every request.
type TagCount struct {
	Name  string
	Count int
}

// AggregateTags counts tag occurrences across posts. A tag repeated within
// one post counts once per occurrence. Output is sorted by count descending;
// equal counts are ordered alphabetically by name so the cloud is stable
// across requests.
func AggregateTags(posts []content.Post) []TagCount {
	counts := make(map[string]int)
	for _, p := range posts {
		for _, t := range p.Tags {
			counts[t]++
		}
	}
	out := make([]TagCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, TagCount{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}
