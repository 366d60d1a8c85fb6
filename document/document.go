// Package document holds the parsed document tree consumed by the chunking
// engine. Documents are produced by upstream readers and are read-only here.
package document

import "strings"

// Document is the root of a parsed document.
type Document struct {
	ID       string     // Stable identifier (usually the source filename or a UUID)
	Sections []*Section // Top-level sections in source order
}

// Section is an ordered list of elements, optionally nesting child sections.
// A section owns its children exclusively; traversal order matches source
// document order (elements first, then children).
type Section struct {
	Elements []Element
	Children []*Section
}

// Markdown renders the whole document back to Markdown text.
func (d *Document) Markdown() string {
	var sb strings.Builder
	stream := d.Content()
	for el, ok := stream.Next(); ok; el, ok = stream.Next() {
		md := el.Markdown()
		if md == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(md)
	}
	return sb.String()
}
