package content

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/ewestberg/inkpress/markdown"
)

// DefaultReadTime is displayed when a post does not declare its own.
const DefaultReadTime = "5 min read"

// Post is a single blog entry, constructed once from a validated markdown
// file at ingest time and read-only afterwards.
type Post struct {
	Path        string // unique slug derived from the file location
	Title       string
	Description string
	PublishedAt time.Time
	Tags        []string // verbatim for display; lower-cased only for matching
	ReadTime    string
	Image       string // cover asset reference, may be empty
	Author      string
	Body        string // raw markdown
	HTML        string
	Headings    []markdown.Heading
	Link        string
}

// frontMatterEnvelope mirrors the supported front-matter schema. publishedAt
// and readTime each have a legacy alias carried by older content files.
type frontMatterEnvelope struct {
	Title       string    `yaml:"title"`
	Description string    `yaml:"description"`
	PublishedAt time.Time `yaml:"publishedAt"`
	Date        time.Time `yaml:"date"`
	Tags        []string  `yaml:"tags"`
	ReadTime    string    `yaml:"readTime"`
	ReadingTime string    `yaml:"readingTime"`
	Image       string    `yaml:"image"`
	Author      string    `yaml:"author"`
}

func (m frontMatterEnvelope) publishedAt() time.Time {
	if !m.PublishedAt.IsZero() {
		return m.PublishedAt
	}
	return m.Date
}

func (m frontMatterEnvelope) readTime() string {
	if m.ReadTime != "" {
		return m.ReadTime
	}
	if m.ReadingTime != "" {
		return m.ReadingTime
	}
	return DefaultReadTime
}

func (m frontMatterEnvelope) validate() error {
	err := validation.ValidateStruct(&m,
		validation.Field(&m.Title, validation.Required, validation.Length(3, 0)),
		validation.Field(&m.Description, validation.Required, validation.Length(10, 0)),
		validation.Field(&m.Tags, validation.Each(validation.Required)),
	)
	if err != nil {
		return err
	}
	if m.publishedAt().IsZero() {
		return fmt.Errorf("publishedAt: missing or unparseable date")
	}
	return nil
}

// ParsePost builds a Post from raw markdown source. The path is the slug
// assigned from the file location by the caller. Schema violations are
// returned as errors so malformed files are rejected at ingest, never served.
func ParsePost(path string, source []byte) (Post, error) {
	var meta frontMatterEnvelope
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return Post{}, fmt.Errorf("parse front-matter: %w", err)
	}
	if err := meta.validate(); err != nil {
		return Post{}, fmt.Errorf("invalid front-matter: %w", err)
	}

	html, headings, err := markdown.Render(body)
	if err != nil {
		return Post{}, err
	}

	tags := make([]string, 0, len(meta.Tags))
	for _, t := range meta.Tags {
		tags = append(tags, strings.TrimSpace(t))
	}

	return Post{
		Path:        path,
		Title:       meta.Title,
		Description: meta.Description,
		PublishedAt: meta.publishedAt().UTC(),
		Tags:        tags,
		ReadTime:    meta.readTime(),
		Image:       meta.Image,
		Author:      meta.Author,
		Body:        string(body),
		HTML:        string(html),
		Headings:    headings,
		Link:        "/blog/" + path,
	}, nil
}

// HasTag reports whether the post carries tag, compared case-insensitively.
func (p Post) HasTag(tag string) bool {
	needle := strings.ToLower(strings.TrimSpace(tag))
	for _, t := range p.Tags {
		if strings.ToLower(strings.TrimSpace(t)) == needle {
			return true
		}
	}
	return false
}
