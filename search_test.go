package inkpress

import (
	"strings"
	"testing"

	"github.com/ewestberg/inkpress/content"
)

func TestFilterEmptyTermIsIdentity(t *testing.T) {
	posts := []content.Post{
		{Title: "One"},
		{Title: "Two"},
	}
	for _, term := range []string{"", "   ", "\t\n"} {
		got := Filter(posts, term)
		if len(got) != len(posts) {
			t.Errorf("Filter(posts, %q) dropped posts", term)
		}
		for i := range got {
			if got[i].Title != posts[i].Title {
				t.Errorf("Filter(posts, %q) reordered posts", term)
			}
		}
	}
}

func TestFilterScenarioB(t *testing.T) {
	posts := []content.Post{
		{Title: "Spring Boot", Tags: []string{"java", "spring"}},
		{Title: "SQL Tips", Tags: []string{"sql"}},
	}
	got := Filter(posts, "java")
	if len(got) != 1 || got[0].Title != "Spring Boot" {
		t.Errorf("Filter = %+v, want only Spring Boot", got)
	}
}

func TestFilterFieldsAreORed(t *testing.T) {
	posts := []content.Post{
		{Title: "Generics in Go"},
		{Title: "Misc", Description: "Notes on go routines"},
		{Title: "Other", Tags: []string{"golang"}},
		{Title: "Unrelated", Description: "Nothing here", Tags: []string{"sql"}},
	}
	got := Filter(posts, "go")
	if len(got) != 3 {
		t.Fatalf("Filter matched %d posts, want 3 (title, description, tag)", len(got))
	}
}

func TestFilterCaseInsensitive(t *testing.T) {
	posts := []content.Post{{Title: "Spring Boot"}}
	for _, term := range []string{"SPRING", "spring", "SpRiNg", "  spring  "} {
		if got := Filter(posts, term); len(got) != 1 {
			t.Errorf("Filter(posts, %q) = %d matches, want 1", term, len(got))
		}
	}
}

func TestFilterStableOrder(t *testing.T) {
	posts := []content.Post{
		{Title: "go alpha"},
		{Title: "no match"},
		{Title: "go beta"},
		{Title: "go gamma"},
	}
	got := Filter(posts, "go")
	want := []string{"go alpha", "go beta", "go gamma"}
	if len(got) != len(want) {
		t.Fatalf("matched %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Title != want[i] {
			t.Errorf("got[%d] = %q, want %q (input order must be kept)", i, got[i].Title, want[i])
		}
	}
}

func TestFilterSoundAndComplete(t *testing.T) {
	posts := []content.Post{
		{Title: "Alpha", Description: "d one", Tags: []string{"x"}},
		{Title: "Beta", Description: "needle here", Tags: []string{"y"}},
		{Title: "Gamma needle", Description: "d three"},
		{Title: "Delta", Tags: []string{"needle"}},
		{Title: "Epsilon", Description: "d five"},
	}
	term := "needle"
	got := Filter(posts, term)

	contains := func(p content.Post) bool {
		hay := strings.ToLower(p.Title + " " + p.Description + " " + strings.Join(p.Tags, " "))
		return strings.Contains(hay, term)
	}
	kept := make(map[string]bool)
	for _, p := range got {
		if !contains(p) {
			t.Errorf("kept post %q does not contain %q", p.Title, term)
		}
		kept[p.Title] = true
	}
	for _, p := range posts {
		if contains(p) && !kept[p.Title] {
			t.Errorf("post %q contains %q but was dropped", p.Title, term)
		}
	}
}
