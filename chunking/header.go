package chunking

import (
	"context"
	"strings"

	"documents-chunker/document"
	"documents-chunker/splitter"
	"documents-chunker/tokenizer"
)

// HeaderChunker walks the flattened content stream and groups elements under
// the most recent header seen at each level. Headers only contribute to the
// breadcrumb context; they are not packed as content themselves.
type HeaderChunker struct {
	packer *Packer
}

// NewHeaderChunker creates a header-hierarchy chunker. split may be nil to
// use the delimiter strategy for oversized elements.
func NewHeaderChunker(tok tokenizer.Tokenizer, opts *Options, split splitter.Strategy) *HeaderChunker {
	return &HeaderChunker{packer: NewPacker(tok, opts, split)}
}

// Process implements Chunker.
func (h *HeaderChunker) Process(ctx context.Context, doc *document.Document) ([]Chunk, error) {
	var chunks []Chunk
	var headers []string // indexed by header level - 1
	var run []document.Element

	flush := func() error {
		if len(run) == 0 {
			return nil
		}
		packed, err := h.packer.Process(ctx, joinBreadcrumb(headers), run)
		if err != nil {
			return err
		}
		chunks = append(chunks, packed...)
		run = nil
		return nil
	}

	stream := doc.Content()
	for el, ok := stream.Next(); ok; el, ok = stream.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		header, isHeader := el.(document.Header)
		if !isHeader {
			run = append(run, el)
			continue
		}

		// A header closes the current run before it amends the breadcrumb.
		if err := flush(); err != nil {
			return nil, err
		}
		level := header.Level
		if level < 1 {
			level = 1
		}
		for len(headers) < level {
			headers = append(headers, "")
		}
		headers[level-1] = header.Text
		// Deeper levels no longer apply under the new header.
		headers = headers[:level]
	}

	if err := flush(); err != nil {
		return nil, err
	}
	return stampDocument(chunks, doc.ID), nil
}

// joinBreadcrumb joins non-empty header texts in level order.
func joinBreadcrumb(headers []string) string {
	var parts []string
	for _, h := range headers {
		if h != "" {
			parts = append(parts, h)
		}
	}
	return strings.Join(parts, " ")
}
