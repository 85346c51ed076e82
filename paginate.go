package inkpress

import "github.com/ewestberg/inkpress/content"

// PageState is the request-scoped pagination state for a listing view. It is
// rebuilt from the navigation parameters on every request; render logic is a
// pure function of (posts, PageState, search term).
type PageState struct {
	Page       int // current page, 1-based; 0 when there is nothing to show
	PageSize   int
	TotalPages int
}

// Paginate derives the page state for totalCount items at pageSize per page
// and navigates to requestedPage. With zero items TotalPages and Page are
// both 0 and the caller renders the empty state instead of a synthetic
// page 1. An out-of-range requestedPage leaves the state on page 1.
func Paginate(totalCount, pageSize, requestedPage int) PageState {
	if pageSize < 1 {
		pageSize = 1
	}
	state := PageState{PageSize: pageSize}
	if totalCount <= 0 {
		return state
	}
	state.TotalPages = (totalCount + pageSize - 1) / pageSize
	state.Page = 1
	state.GoToPage(requestedPage)
	return state
}

// GoToPage is the only page transition. Requests below 1 or above TotalPages
// are ignored, leaving the current page unchanged.
func (s *PageState) GoToPage(p int) {
	if p < 1 || p > s.TotalPages {
		return
	}
	s.Page = p
}

// Offset is the zero-based skip fed into the query window for the current
// page.
func (s PageState) Offset() int {
	if s.Page < 1 {
		return 0
	}
	return (s.Page - 1) * s.PageSize
}

// Window returns the query window for the current page, or nil when there
// are no pages at all.
func (s PageState) Window() *content.Window {
	if s.Empty() {
		return nil
	}
	return &content.Window{Limit: s.PageSize, Skip: s.Offset()}
}

// Empty reports whether there is nothing to page over.
func (s PageState) Empty() bool {
	return s.TotalPages == 0
}

// HasPrevious reports whether page-1 is a valid navigation target.
func (s PageState) HasPrevious() bool {
	return s.Page > 1
}

// HasNext reports whether page+1 is a valid navigation target.
func (s PageState) HasNext() bool {
	return s.Page >= 1 && s.Page < s.TotalPages
}

// PageSlice cuts the current page out of an already-filtered in-memory
// sequence. Used when a free-text search has to run over the full fetched
// set before paging.
func PageSlice(posts []content.Post, state PageState) []content.Post {
	if state.Empty() {
		return nil
	}
	start := state.Offset()
	if start >= len(posts) {
		return nil
	}
	end := start + state.PageSize
	if end > len(posts) {
		end = len(posts)
	}
	return posts[start:end]
}
