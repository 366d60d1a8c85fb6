package chunking

import (
	"context"

	"documents-chunker/document"
	"documents-chunker/splitter"
	"documents-chunker/tokenizer"
)

// SectionChunker recurses into the section tree. When a section opens with a
// header, that header's text extends the breadcrumb for the section and its
// descendants; each section's run is committed before its children are
// entered.
type SectionChunker struct {
	packer *Packer
}

// NewSectionChunker creates a section-hierarchy chunker.
func NewSectionChunker(tok tokenizer.Tokenizer, opts *Options, split splitter.Strategy) *SectionChunker {
	return &SectionChunker{packer: NewPacker(tok, opts, split)}
}

// Process implements Chunker.
func (s *SectionChunker) Process(ctx context.Context, doc *document.Document) ([]Chunk, error) {
	var chunks []Chunk
	for _, section := range doc.Sections {
		if err := s.walk(ctx, section, "", &chunks); err != nil {
			return nil, err
		}
	}
	return stampDocument(chunks, doc.ID), nil
}

func (s *SectionChunker) walk(ctx context.Context, section *document.Section, breadcrumb string, chunks *[]Chunk) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	elements := section.Elements
	if len(elements) > 0 {
		if header, ok := elements[0].(document.Header); ok {
			breadcrumb = extendBreadcrumb(breadcrumb, header.Text)
			elements = elements[1:]
		}
	}

	if len(elements) > 0 {
		packed, err := s.packer.Process(ctx, breadcrumb, elements)
		if err != nil {
			return err
		}
		*chunks = append(*chunks, packed...)
	}

	for _, child := range section.Children {
		if err := s.walk(ctx, child, breadcrumb, chunks); err != nil {
			return err
		}
	}
	return nil
}

func extendBreadcrumb(breadcrumb, header string) string {
	if header == "" {
		return breadcrumb
	}
	if breadcrumb == "" {
		return header
	}
	return breadcrumb + " " + header
}
