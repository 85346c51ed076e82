// Package content implements the markdown-backed content store. Posts are
// parsed and validated once at ingest, indexed into an embedded SQLite
// database, and queried through a small order/limit/skip surface.
package content

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ewestberg/inkpress/markdown"
)

// ErrNotFound is returned when a requested post path does not exist.
// Absence is a normal outcome; callers render a not-found view for it.
var ErrNotFound = sql.ErrNoRows

// Store indexes ingested posts in SQLite and serves all runtime queries.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL with NORMAL synchronous avoids an fsync per transaction; the busy
	// timeout makes writers wait instead of failing with SQLITE_BUSY, and a
	// larger cache plus mmap reduce disk I/O for post scans.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
		PRAGMA mmap_size=268435456;
	`); err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS posts (
    path TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT NOT NULL,
    published_at TEXT NOT NULL,
    tags TEXT NOT NULL,
    read_time TEXT NOT NULL,
    image TEXT NOT NULL DEFAULT '',
    author TEXT NOT NULL DEFAULT '',
    body TEXT NOT NULL,
    html TEXT NOT NULL,
    toc TEXT NOT NULL DEFAULT '[]'
);
CREATE INDEX IF NOT EXISTS idx_posts_published_at ON posts (published_at DESC);
`)
	return err
}

// Ingest rebuilds the post index from every *.md file under fsys. Any file
// failing schema validation aborts the whole ingest: malformed content is a
// build-time error, the runtime never serves a partially valid set.
func (s *Store) Ingest(fsys fs.FS) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM posts`); err != nil {
		return 0, err
	}

	seen := make(map[string]string)
	count := 0
	err = fs.WalkDir(fsys, ".", func(file string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}
		src, err := fs.ReadFile(fsys, file)
		if err != nil {
			return fmt.Errorf("read %s: %w", file, err)
		}
		path := slugFromFile(d.Name())
		if prev, dup := seen[path]; dup {
			return fmt.Errorf("duplicate post path %q: %s and %s", path, prev, file)
		}
		seen[path] = file

		post, err := ParsePost(path, src)
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		if err := insertPost(tx, post); err != nil {
			return fmt.Errorf("index %s: %w", file, err)
		}
		count++
		return nil
	})
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return count, nil
}

// slugFromFile derives the immutable post path from the file name:
// "notes/hello-world.md" ingests as "hello-world".
func slugFromFile(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func insertPost(tx *sql.Tx, p Post) error {
	toc, err := json.Marshal(p.Headings)
	if err != nil {
		return err
	}
	_, err = tx.Exec(
		`INSERT INTO posts (path, title, description, published_at, tags, read_time, image, author, body, html, toc)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Path, p.Title, p.Description, p.PublishedAt.UTC().Format(time.RFC3339),
		joinTags(p.Tags), p.ReadTime, p.Image, p.Author, p.Body, p.HTML, string(toc),
	)
	return err
}

// joinTags stores tags comma-delimited with sentinel commas (",go,web,") so
// a single tag can be matched with instr() without hitting substrings.
func joinTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return "," + strings.Join(tags, ",") + ","
}

// ParseTags splits a sentinel-delimited tag string back into a slice.
func ParseTags(tagString string) []string {
	tagString = strings.Trim(tagString, ",")
	if tagString == "" {
		return nil
	}
	parts := strings.Split(tagString, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func scanPost(scan func(dest ...any) error) (Post, error) {
	var p Post
	var publishedAt, tags, toc string
	if err := scan(&p.Path, &p.Title, &p.Description, &publishedAt, &tags,
		&p.ReadTime, &p.Image, &p.Author, &p.Body, &p.HTML, &toc); err != nil {
		return Post{}, err
	}
	t, err := time.Parse(time.RFC3339, publishedAt)
	if err != nil {
		return Post{}, fmt.Errorf("post %s: bad published_at %q: %w", p.Path, publishedAt, err)
	}
	p.PublishedAt = t
	p.Tags = ParseTags(tags)
	if toc != "" {
		var headings []markdown.Heading
		if err := json.Unmarshal([]byte(toc), &headings); err != nil {
			return Post{}, fmt.Errorf("post %s: bad toc: %w", p.Path, err)
		}
		p.Headings = headings
	}
	p.Link = "/blog/" + p.Path
	return p, nil
}
