package inkpress

import (
	"testing"

	"github.com/ewestberg/inkpress/content"
)

func TestAggregateTagsScenarioC(t *testing.T) {
	posts := []content.Post{
		{Tags: []string{"java", "spring"}},
		{Tags: []string{"java"}},
		{Tags: []string{"sql"}},
	}
	got := AggregateTags(posts)
	if len(got) != 3 {
		t.Fatalf("got %d tags, want 3", len(got))
	}
	if got[0].Name != "java" || got[0].Count != 2 {
		t.Errorf("got[0] = %+v, want {java 2}", got[0])
	}
	// Equal counts break ties alphabetically.
	if got[1].Name != "spring" || got[1].Count != 1 {
		t.Errorf("got[1] = %+v, want {spring 1}", got[1])
	}
	if got[2].Name != "sql" || got[2].Count != 1 {
		t.Errorf("got[2] = %+v, want {sql 1}", got[2])
	}
}

func TestAggregateTagsDuplicateWithinPost(t *testing.T) {
	posts := []content.Post{{Tags: []string{"go", "go"}}}
	got := AggregateTags(posts)
	if len(got) != 1 || got[0].Count != 2 {
		t.Errorf("got %+v, want go counted once per occurrence", got)
	}
}

func TestAggregateTagsCountSum(t *testing.T) {
	posts := []content.Post{
		{Tags: []string{"a", "b", "c"}},
		{Tags: nil},
		{Tags: []string{"a"}},
		{Tags: []string{"b", "b"}},
	}
	pairs := 0
	for _, p := range posts {
		pairs += len(p.Tags)
	}
	got := AggregateTags(posts)
	sum := 0
	for _, tc := range got {
		if tc.Count < 1 {
			t.Errorf("tag %q has count %d, want >= 1", tc.Name, tc.Count)
		}
		sum += tc.Count
	}
	if sum != pairs {
		t.Errorf("counts sum to %d, want %d (post, tag) pairs", sum, pairs)
	}
}

func TestAggregateTagsSortedNonIncreasing(t *testing.T) {
	posts := []content.Post{
		{Tags: []string{"z", "m", "z", "a"}},
		{Tags: []string{"m", "z"}},
		{Tags: []string{"a"}},
	}
	got := AggregateTags(posts)
	for i := 1; i < len(got); i++ {
		if got[i].Count > got[i-1].Count {
			t.Fatalf("counts not non-increasing: %+v", got)
		}
		if got[i].Count == got[i-1].Count && got[i].Name < got[i-1].Name {
			t.Fatalf("alphabetical tie-break violated: %+v", got)
		}
	}
}

func TestAggregateTagsEmpty(t *testing.T) {
	if got := AggregateTags(nil); len(got) != 0 {
		t.Errorf("AggregateTags(nil) = %v, want empty", got)
	}
	if got := AggregateTags([]content.Post{{}, {}}); len(got) != 0 {
		t.Errorf("untagged posts contributed %v", got)
	}
}

func TestAggregateTagsVerbatim(t *testing.T) {
	// Display names are not normalized; "Go" and "go" are distinct entries.
	posts := []content.Post{{Tags: []string{"Go"}}, {Tags: []string{"go"}}}
	got := AggregateTags(posts)
	if len(got) != 2 {
		t.Errorf("got %+v, want verbatim tags kept distinct", got)
	}
}
