package inkpress

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ewestberg/inkpress/content"
)

func pageParam(c echo.Context) int {
	n, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// fetchPage issues one windowed query that also reports the total, then
// re-fetches only if the requested page turned out to be out of range (the
// window had to be guessed before the total was known).
func (a *App) fetchPage(newQuery func() *content.Query, requested int) ([]content.Post, PageState, error) {
	offset := 0
	if requested > 1 {
		offset = (requested - 1) * a.Config.PageSize
	}
	posts, total, err := newQuery().Limit(a.Config.PageSize).Skip(offset).AllWithTotal()
	if err != nil {
		return nil, PageState{}, err
	}
	state := Paginate(total, a.Config.PageSize, requested)
	if state.Offset() != offset {
		posts, _, err = newQuery().Limit(a.Config.PageSize).Skip(state.Offset()).AllWithTotal()
		if err != nil {
			return nil, PageState{}, err
		}
	}
	return posts, state, nil
}

// handleHome serves the listing page. Page number, search term, and view
// mode all live in the URL so the rendered state survives reload/sharing.
func (a *App) handleHome(c echo.Context) error {
	term := strings.TrimSpace(c.QueryParam("q"))
	requested := pageParam(c)
	view := a.viewModeFor(c)

	if term != "" && !a.searchLimiter.Allow(c.RealIP()) {
		return c.String(http.StatusTooManyRequests, "Too many search requests. Try again later.")
	}

	// The tag cloud always reflects the full post set, independent of any
	// active search. A store failure renders like the empty result.
	all, err := a.Store.Query().All()
	if err != nil {
		c.Logger().Errorf("list posts: %v", err)
		all = nil
	}
	tags := AggregateTags(all)

	var page []content.Post
	var state PageState
	if term == "" {
		page, state, err = a.fetchPage(func() *content.Query { return a.Store.Query() }, requested)
		if err != nil {
			c.Logger().Errorf("page window: %v", err)
			page, state = nil, Paginate(0, a.Config.PageSize, requested)
		}
	} else {
		// Free-text search runs over the fetched set, so filter first and
		// page the filtered sequence in memory.
		visible := Filter(all, term)
		state = Paginate(len(visible), a.Config.PageSize, requested)
		page = PageSlice(visible, state)
	}

	if len(page) == 0 {
		return Render(c, a.Views.Empty(term, tags))
	}
	if c.Request().Header.Get("HX-Request") == "true" && c.QueryParam("partial") == "posts" {
		return Render(c, a.Views.HomePartial(page, state, term, view, tags))
	}
	return Render(c, a.Views.Home(page, state, term, view, tags, a.Config.URL))
}

// handleTag serves the tag-detail listing; the tag name is a path segment.
func (a *App) handleTag(c echo.Context) error {
	tag, err := url.PathUnescape(c.Param("tag"))
	if err != nil || strings.TrimSpace(tag) == "" {
		return echo.NewHTTPError(http.StatusNotFound)
	}

	posts, state, err := a.fetchPage(func() *content.Query { return a.Store.Query().Tag(tag) }, pageParam(c))
	if err != nil {
		c.Logger().Errorf("tag %q: %v", tag, err)
		posts, state = nil, Paginate(0, a.Config.PageSize, 1)
	}
	if len(posts) == 0 {
		return Render(c, a.Views.Empty(tag, nil))
	}
	return Render(c, a.Views.TagDetail(tag, posts, state, a.Config.URL))
}

// handlePost serves a single post with its chronological neighbors.
func (a *App) handlePost(c echo.Context) error {
	path := c.Param("path")
	post, err := a.Store.Path(path)
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		}
		// Store failure degrades to the not-found rendering rather than a
		// crashed page.
		c.Logger().Errorf("get post %q: %v", path, err)
		return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
	}

	adjacent, err := a.Store.Adjacent(path)
	if err != nil {
		c.Logger().Errorf("adjacent %q: %v", path, err)
		adjacent = content.Adjacent{}
	}
	return Render(c, a.Views.Post(post, adjacent, a.Config.URL))
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Store.Query().All()
	if err != nil {
		return err
	}
	return a.renderSitemap(c, posts, AggregateTags(posts))
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Store.Query().All()
	if err != nil {
		return err
	}
	return a.renderRSS(c, posts)
}

func handleBlogRedirect(c echo.Context) error {
	return c.Redirect(http.StatusMovedPermanently, "/")
}

func (a *App) handleFavicon(c echo.Context) error {
	return c.File(a.staticDir + "/favicon.svg")
}

func (a *App) handleRobots(c echo.Context) error {
	body := fmt.Sprintf("User-agent: *\nAllow: /\n\nSitemap: %s/sitemap.xml\n", a.Config.URL)
	return c.String(http.StatusOK, body)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
