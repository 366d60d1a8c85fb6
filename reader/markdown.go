// Package reader builds document trees from raw Markdown, HTML or plain
// text. Readers are upstream collaborators of the chunking engine: the
// engine itself only ever consumes the finished tree.
package reader

import (
	"bytes"
	"strings"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"documents-chunker/document"
)

// Markdown parses Markdown source into a document tree, nesting sections by
// heading level.
type Markdown struct {
	md goldmark.Markdown
}

// NewMarkdown creates a Markdown reader with GFM table support.
func NewMarkdown() *Markdown {
	return &Markdown{
		md: goldmark.New(goldmark.WithExtensions(extension.Table)),
	}
}

// Parse builds the document tree. An empty id gets a generated UUID.
func (m *Markdown) Parse(src []byte, id string) (*document.Document, error) {
	if id == "" {
		id = uuid.NewString()
	}

	root := m.md.Parser().Parse(text.NewReader(src))

	// Track nesting with a stack keyed by heading level; level 0 is the
	// implicit root that holds content before the first heading.
	type stackEntry struct {
		section *document.Section
		level   int
	}
	rootSection := &document.Section{}
	stack := []stackEntry{{section: rootSection, level: 0}}
	top := func() *document.Section { return stack[len(stack)-1].section }

	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			section := &document.Section{
				Elements: []document.Element{document.Header{Level: node.Level, Text: string(node.Text(src))}},
			}
			for len(stack) > 1 && stack[len(stack)-1].level >= node.Level {
				stack = stack[:len(stack)-1]
			}
			parent := stack[len(stack)-1].section
			parent.Children = append(parent.Children, section)
			stack = append(stack, stackEntry{section: section, level: node.Level})

		case *east.Table:
			top().Elements = append(top().Elements, parseTable(node, src))

		default:
			if txt := extractText(n, src); txt != "" {
				top().Elements = append(top().Elements, document.Paragraph{Text: txt})
			}
		}
	}

	doc := &document.Document{ID: id}
	if len(rootSection.Elements) > 0 || len(rootSection.Children) > 0 {
		doc.Sections = append(doc.Sections, rootSection)
	}
	return doc, nil
}

func parseTable(table *east.Table, src []byte) document.Table {
	var rows [][]document.Element
	for r := table.FirstChild(); r != nil; r = r.NextSibling() {
		switch r.(type) {
		case *east.TableHeader, *east.TableRow:
			var cells []document.Element
			for c := r.FirstChild(); c != nil; c = c.NextSibling() {
				cells = append(cells, document.Paragraph{Text: extractText(c, src)})
			}
			rows = append(rows, cells)
		}
	}
	return document.Table{Rows: rows}
}

// extractText gets the text content of a goldmark AST node. Leaf blocks
// (code blocks) carry their text in source lines; everything else carries it
// in inline children.
func extractText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock && n.FirstChild() == nil {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		} else {
			buf.WriteString(extractText(c, src))
		}
	}
	return strings.TrimSpace(buf.String())
}
