package inkpress

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/a-h/templ"

	"github.com/ewestberg/inkpress/content"
)

func textComponent(s string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	})
}

// testViews render flat marker strings so handler behavior can be asserted
// without generated templates.
func testViews() ViewFuncs {
	return ViewFuncs{
		Home: func(posts []content.Post, state PageState, term string, view ViewMode, tags []TagCount, siteURL string) templ.Component {
			return textComponent(fmt.Sprintf("home:%d:page=%d/%d:view=%s:tags=%d", len(posts), state.Page, state.TotalPages, view, len(tags)))
		},
		HomePartial: func(posts []content.Post, state PageState, term string, view ViewMode, tags []TagCount) templ.Component {
			return textComponent(fmt.Sprintf("partial:%d", len(posts)))
		},
		TagDetail: func(tag string, posts []content.Post, state PageState, siteURL string) templ.Component {
			return textComponent(fmt.Sprintf("tag:%s:%d:page=%d/%d", tag, len(posts), state.Page, state.TotalPages))
		},
		Post: func(post content.Post, adjacent content.Adjacent, siteURL string) templ.Component {
			prev, next := "-", "-"
			if adjacent.Previous != nil {
				prev = adjacent.Previous.Path
			}
			if adjacent.Next != nil {
				next = adjacent.Next.Path
			}
			return textComponent(fmt.Sprintf("post:%s:prev=%s:next=%s", post.Path, prev, next))
		},
		Empty:       func(query string, tags []TagCount) templ.Component { return textComponent("empty:" + query) },
		NotFound:    func() templ.Component { return textComponent("notfound") },
		ServerError: func() templ.Component { return textComponent("servererror") },
	}
}

func testPostFile(title, description, date string, tags ...string) []byte {
	src := "---\ntitle: " + title + "\ndescription: " + description + "\npublishedAt: " + date + "\n"
	if len(tags) > 0 {
		src += "tags: [" + strings.Join(tags, ", ") + "]\n"
	}
	src += "---\nBody of " + title + ".\n"
	return []byte(src)
}

func newTestApp(t *testing.T, fsys fstest.MapFS) *App {
	t.Helper()
	a := New(SiteConfig{
		URL:          "http://example.com",
		DatabasePath: filepath.Join(t.TempDir(), "posts.db"),
		PageSize:     6,
	}, testViews())

	store, err := content.NewStore(a.Config.DatabasePath)
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if _, err := store.Ingest(fsys); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	a.Store = store
	a.searchLimiter = NewSearchLimiter(100, time.Minute)
	a.Echo.HTTPErrorHandler = a.httpErrorHandler
	a.setupRoutes()
	return a
}

func get(a *App, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	return rec
}

func thirteenPosts() fstest.MapFS {
	fsys := fstest.MapFS{}
	for i := 1; i <= 13; i++ {
		name := fmt.Sprintf("post-%02d.md", i)
		fsys[name] = &fstest.MapFile{Data: testPostFile(
			fmt.Sprintf("Post %02d", i),
			"A sufficiently long description.",
			fmt.Sprintf("2024-01-%02d", i),
			"go",
		)}
	}
	return fsys
}

func TestHomeFirstPage(t *testing.T) {
	a := newTestApp(t, thirteenPosts())
	rec := get(a, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Body.String(); got != "home:6:page=1/3:view=grid:tags=1" {
		t.Errorf("body = %q", got)
	}
}

func TestHomeSecondPage(t *testing.T) {
	a := newTestApp(t, thirteenPosts())
	if got := get(a, "/?page=2").Body.String(); got != "home:6:page=2/3:view=grid:tags=1" {
		t.Errorf("body = %q", got)
	}
}

func TestHomeOutOfRangePageStaysOnFirst(t *testing.T) {
	a := newTestApp(t, thirteenPosts())
	if got := get(a, "/?page=99").Body.String(); got != "home:6:page=1/3:view=grid:tags=1" {
		t.Errorf("body = %q", got)
	}
}

func TestHomeListViewMode(t *testing.T) {
	a := newTestApp(t, thirteenPosts())
	if got := get(a, "/?view=list").Body.String(); !strings.Contains(got, "view=list") {
		t.Errorf("body = %q, want list view", got)
	}
}

func TestHomeSearch(t *testing.T) {
	fsys := fstest.MapFS{
		"spring-boot.md": &fstest.MapFile{Data: testPostFile("Spring Boot", "Boot configuration tricks explained.", "2024-01-02", "java", "spring")},
		"sql-tips.md":    &fstest.MapFile{Data: testPostFile("SQL Tips", "Queries that do not fall over.", "2024-01-01", "sql")},
	}
	a := newTestApp(t, fsys)

	if got := get(a, "/?q=java").Body.String(); got != "home:1:page=1/1:view=grid:tags=3" {
		t.Errorf("search body = %q", got)
	}
	if got := get(a, "/?q=zebra").Body.String(); got != "empty:zebra" {
		t.Errorf("no-match body = %q", got)
	}
}

func TestHomeEmptyStore(t *testing.T) {
	a := newTestApp(t, fstest.MapFS{})
	rec := get(a, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Body.String(); got != "empty:" {
		t.Errorf("body = %q", got)
	}
}

func TestHomePartial(t *testing.T) {
	a := newTestApp(t, thirteenPosts())
	req := httptest.NewRequest(http.MethodGet, "/?partial=posts", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	if got := rec.Body.String(); got != "partial:6" {
		t.Errorf("body = %q", got)
	}
}

func TestPostDetailWithNeighbors(t *testing.T) {
	a := newTestApp(t, thirteenPosts())
	if got := get(a, "/blog/post-05/").Body.String(); got != "post:post-05:prev=post-06:next=post-04" {
		t.Errorf("body = %q", got)
	}
	// Newest post has no previous.
	if got := get(a, "/blog/post-13/").Body.String(); got != "post:post-13:prev=-:next=post-12" {
		t.Errorf("body = %q", got)
	}
}

func TestPostNotFound(t *testing.T) {
	a := newTestApp(t, thirteenPosts())
	rec := get(a, "/blog/never-written/")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if got := rec.Body.String(); got != "notfound" {
		t.Errorf("body = %q", got)
	}
}

func TestTagDetail(t *testing.T) {
	a := newTestApp(t, thirteenPosts())
	if got := get(a, "/tags/go/").Body.String(); got != "tag:go:6:page=1/3" {
		t.Errorf("body = %q", got)
	}
	if got := get(a, "/tags/rust/").Body.String(); got != "empty:rust" {
		t.Errorf("unknown tag body = %q", got)
	}
}

func TestFeedAndSitemap(t *testing.T) {
	a := newTestApp(t, thirteenPosts())

	rec := get(a, "/feed.xml")
	if rec.Code != http.StatusOK {
		t.Fatalf("feed status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "rss+xml") {
		t.Errorf("feed content type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "http://example.com/blog/post-13/") {
		t.Error("feed missing newest post URL")
	}

	rec = get(a, "/sitemap.xml")
	if rec.Code != http.StatusOK {
		t.Fatalf("sitemap status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "http://example.com/blog/post-01/") {
		t.Error("sitemap missing post URL")
	}
	if !strings.Contains(body, "http://example.com/tags/go/") {
		t.Error("sitemap missing tag URL")
	}
}

func TestSearchRateLimit(t *testing.T) {
	a := newTestApp(t, thirteenPosts())
	a.searchLimiter = NewSearchLimiter(2, time.Minute)

	get(a, "/?q=go")
	get(a, "/?q=go")
	rec := get(a, "/?q=go")
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429 after limit", rec.Code)
	}
	// Plain listing requests are not limited.
	if rec := get(a, "/"); rec.Code != http.StatusOK {
		t.Errorf("unfiltered listing status = %d", rec.Code)
	}
}
