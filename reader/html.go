package reader

import (
	"fmt"

	md "github.com/JohannesKaufmann/html-to-markdown"

	"documents-chunker/document"
)

// HTML converts HTML to clean Markdown first, then reuses the Markdown
// reader to build the tree.
type HTML struct {
	converter *md.Converter
	markdown  *Markdown
}

// NewHTML creates an HTML reader configured for RAG-friendly Markdown output.
func NewHTML() *HTML {
	converter := md.NewConverter("", true, &md.Options{
		HorizontalRule:     "---",
		BulletListMarker:   "*",
		CodeBlockStyle:     "fenced",
		Fence:              "```",
		EmDelimiter:        "*",
		StrongDelimiter:    "**",
		LinkStyle:          "inlined",
		LinkReferenceStyle: "full",
	})

	return &HTML{
		converter: converter,
		markdown:  NewMarkdown(),
	}
}

// Parse converts the HTML source and builds the document tree.
func (h *HTML) Parse(src []byte, id string) (*document.Document, error) {
	markdown, err := h.converter.ConvertString(string(src))
	if err != nil {
		return nil, fmt.Errorf("failed to convert HTML to Markdown: %w", err)
	}
	return h.markdown.Parse([]byte(markdown), id)
}
