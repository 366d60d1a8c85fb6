package chunking

import (
	"context"

	"documents-chunker/document"
	"documents-chunker/splitter"
	"documents-chunker/tokenizer"
)

// MarkdownChunker parses the flattened content stream recursively by header
// level, cutting a new chunk whenever a header at or below the configured
// split level appears. Nested breadcrumbs are joined with ";". Headers deeper
// than the split level stay in the chunk body.
type MarkdownChunker struct {
	packer       *Packer
	splitLevel   int
	stripHeaders bool
}

// NewMarkdownChunker creates a recursive markdown-header chunker.
// splitLevel is the deepest header level that starts a new chunk; when
// stripHeaders is set, splitting headers are dropped from chunk bodies and
// survive only in the breadcrumb.
func NewMarkdownChunker(tok tokenizer.Tokenizer, opts *Options, split splitter.Strategy, splitLevel int, stripHeaders bool) *MarkdownChunker {
	if splitLevel < 1 {
		splitLevel = 1
	}
	return &MarkdownChunker{
		packer:       NewPacker(tok, opts, split),
		splitLevel:   splitLevel,
		stripHeaders: stripHeaders,
	}
}

// Process implements Chunker.
func (m *MarkdownChunker) Process(ctx context.Context, doc *document.Document) ([]Chunk, error) {
	stack := newElementStack(doc.FlattenedContent())
	var chunks []Chunk
	if err := m.chunkLevel(ctx, stack, "", 1, nil, &chunks); err != nil {
		return nil, err
	}
	return stampDocument(chunks, doc.ID), nil
}

func (m *MarkdownChunker) chunkLevel(ctx context.Context, stack *elementStack, breadcrumb string, minLevel int, seed []document.Element, chunks *[]Chunk) error {
	run := seed
	for stack.len() > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		header, isSplit := splitHeader(stack.peek(), m.splitLevel)
		if !isSplit {
			run = append(run, stack.pop())
			continue
		}
		if header.Level < minLevel {
			// Belongs to an ancestor level; hand control back.
			break
		}

		stack.pop()
		if err := m.flush(ctx, breadcrumb, &run, chunks); err != nil {
			return err
		}

		childCrumb := breadcrumb
		if childCrumb == "" {
			childCrumb = header.Text
		} else {
			childCrumb += ";" + header.Text
		}
		var childSeed []document.Element
		if !m.stripHeaders {
			childSeed = []document.Element{header}
		}
		if err := m.chunkLevel(ctx, stack, childCrumb, header.Level+1, childSeed, chunks); err != nil {
			return err
		}
	}
	return m.flush(ctx, breadcrumb, &run, chunks)
}

func (m *MarkdownChunker) flush(ctx context.Context, breadcrumb string, run *[]document.Element, chunks *[]Chunk) error {
	if len(*run) == 0 {
		return nil
	}
	packed, err := m.packer.Process(ctx, breadcrumb, *run)
	if err != nil {
		return err
	}
	*chunks = append(*chunks, packed...)
	*run = nil
	return nil
}

func splitHeader(el document.Element, splitLevel int) (document.Header, bool) {
	header, ok := el.(document.Header)
	return header, ok && header.Level <= splitLevel
}

// elementStack is a reversed view of the flattened content stream; the next
// document element is always at the top.
type elementStack struct {
	items []document.Element
}

func newElementStack(elements []document.Element) *elementStack {
	items := make([]document.Element, len(elements))
	for i, el := range elements {
		items[len(elements)-1-i] = el
	}
	return &elementStack{items: items}
}

func (s *elementStack) len() int { return len(s.items) }

func (s *elementStack) peek() document.Element { return s.items[len(s.items)-1] }

func (s *elementStack) pop() document.Element {
	el := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return el
}
