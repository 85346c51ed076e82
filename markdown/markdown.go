// Package markdown renders post bodies to HTML via goldmark and extracts
// the heading outline used for the table of contents on post pages.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// Heading is one entry of a post's generated table of contents.
type Heading struct {
	ID    string // anchor id assigned by goldmark's auto heading IDs
	Text  string
	Level int // 2 or 3
}

// engine is stateless and safe for concurrent use, so a single instance
// serves all renders.
var engine = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

// Render converts markdown source to HTML and collects h2/h3 headings in
// document order. Top-level h1 is the post title's job and is skipped.
func Render(source []byte) ([]byte, []Heading, error) {
	doc := engine.Parser().Parse(text.NewReader(source))

	var headings []Heading
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok || h.Level < 2 || h.Level > 3 {
			return ast.WalkContinue, nil
		}
		id := ""
		if v, ok := h.AttributeString("id"); ok {
			if b, ok := v.([]byte); ok {
				id = string(b)
			}
		}
		headings = append(headings, Heading{
			ID:    id,
			Text:  string(h.Text(source)),
			Level: h.Level,
		})
		return ast.WalkSkipChildren, nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("walk markdown ast: %w", err)
	}

	var buf bytes.Buffer
	if err := engine.Renderer().Render(&buf, source, doc); err != nil {
		return nil, nil, fmt.Errorf("render markdown: %w", err)
	}
	return buf.Bytes(), headings, nil
}
