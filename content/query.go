package content

import (
	"database/sql"
	"fmt"
	"strings"
)

const postColumns = "path, title, description, published_at, tags, read_time, image, author, body, html, toc"

// orderFields whitelists sortable columns; anything else falls back to the
// default date ordering.
var orderFields = map[string]bool{
	"published_at": true,
	"title":        true,
	"path":         true,
}

// Window selects one page of an ordered result sequence: at most Limit posts
// after skipping Skip posts (zero-based offset).
type Window struct {
	Limit int
	Skip  int
}

// Query builds a request against the post index. The zero configuration
// lists every post ordered by publication date, newest first.
type Query struct {
	store *Store
	field string
	asc   bool
	win   *Window
	tag   string
}

// Query starts a new query with the default ordering (published_at desc).
func (s *Store) Query() *Query {
	return &Query{store: s, field: "published_at"}
}

// Order sets the sort field and direction. Unknown fields keep the default.
func (q *Query) Order(field string, ascending bool) *Query {
	if orderFields[field] {
		q.field = field
	}
	q.asc = ascending
	return q
}

// Limit caps the number of returned posts and implies a window.
func (q *Query) Limit(n int) *Query {
	if q.win == nil {
		q.win = &Window{}
	}
	q.win.Limit = n
	return q
}

// Skip offsets into the ordered sequence and implies a window.
func (q *Query) Skip(n int) *Query {
	if q.win == nil {
		q.win = &Window{}
	}
	q.win.Skip = n
	return q
}

// Window applies a (limit, skip) pair in one call. A nil window clears any
// previously set limit/skip.
func (q *Query) Window(w *Window) *Query {
	q.win = w
	return q
}

// Tag restricts results to posts carrying the tag, matched case-insensitively.
func (q *Query) Tag(tag string) *Query {
	q.tag = strings.ToLower(strings.TrimSpace(tag))
	return q
}

func (q *Query) build(withTotal bool) (string, []any) {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(postColumns)
	if withTotal {
		// COUNT(*) OVER () rides along on every row so the window and the
		// total come from one statement and can never disagree.
		sb.WriteString(", COUNT(*) OVER ()")
	}
	sb.WriteString(" FROM posts")

	var args []any
	if q.tag != "" {
		sb.WriteString(" WHERE instr(lower(tags), ',' || ? || ',') > 0")
		args = append(args, q.tag)
	}

	dir := "DESC"
	if q.asc {
		dir = "ASC"
	}
	// Secondary ordering on path keeps results deterministic for equal dates.
	fmt.Fprintf(&sb, " ORDER BY %s %s, path ASC", q.field, dir)

	if q.win != nil {
		sb.WriteString(" LIMIT ? OFFSET ?")
		limit := q.win.Limit
		if limit <= 0 {
			limit = -1 // SQLite: no limit
		}
		args = append(args, limit, q.win.Skip)
	}
	return sb.String(), args
}

// All runs the query and returns the matching posts. No matches is a normal
// state and yields an empty slice, not an error.
func (q *Query) All() ([]Post, error) {
	stmt, args := q.build(false)
	rows, err := q.store.db.Query(stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		p, err := scanPost(rows.Scan)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// AllWithTotal runs the query and additionally reports how many posts match
// before the window is applied.
func (q *Query) AllWithTotal() ([]Post, int, error) {
	stmt, args := q.build(true)
	rows, err := q.store.db.Query(stmt, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var posts []Post
	total := 0
	for rows.Next() {
		p, err := scanPost(func(dest ...any) error {
			return rows.Scan(append(dest, &total)...)
		})
		if err != nil {
			return nil, 0, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(posts) == 0 && q.win != nil && q.win.Skip > 0 {
		// The window fell past the end; re-count so the caller still learns
		// the real total.
		if err := q.store.db.QueryRow(countStmt(q.tag), countArgs(q.tag)...).Scan(&total); err != nil {
			return nil, 0, err
		}
	}
	return posts, total, nil
}

func countStmt(tag string) string {
	if tag != "" {
		return "SELECT COUNT(*) FROM posts WHERE instr(lower(tags), ',' || ? || ',') > 0"
	}
	return "SELECT COUNT(*) FROM posts"
}

func countArgs(tag string) []any {
	if tag != "" {
		return []any{tag}
	}
	return nil
}

// First returns the first matching post, or ErrNotFound when nothing matches.
func (q *Query) First() (Post, error) {
	posts, err := q.Limit(1).All()
	if err != nil {
		return Post{}, err
	}
	if len(posts) == 0 {
		return Post{}, ErrNotFound
	}
	return posts[0], nil
}

// Path returns the post with the exact path, or ErrNotFound.
func (s *Store) Path(path string) (Post, error) {
	row := s.db.QueryRow("SELECT "+postColumns+" FROM posts WHERE path = ?", path)
	p, err := scanPost(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return Post{}, ErrNotFound
		}
		return Post{}, err
	}
	return p, nil
}

// Adjacent holds a post's neighbors in the full date-ordered (newest first)
// sequence. Previous is the next newer post, Next the next older one; either
// is nil at the ends of the list, and both are nil for an unknown path.
type Adjacent struct {
	Previous *Post
	Next     *Post
}

// Adjacent locates path in the full ordered list and returns its immediate
// chronological neighbors.
func (s *Store) Adjacent(path string) (Adjacent, error) {
	posts, err := s.Query().All()
	if err != nil {
		return Adjacent{}, err
	}
	for i := range posts {
		if posts[i].Path != path {
			continue
		}
		var adj Adjacent
		if i > 0 {
			adj.Previous = &posts[i-1]
		}
		if i < len(posts)-1 {
			adj.Next = &posts[i+1]
		}
		return adj, nil
	}
	return Adjacent{}, nil
}
