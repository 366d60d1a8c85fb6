package chunking

import (
	"context"
	"strings"

	"documents-chunker/document"
	"documents-chunker/tokenizer"
)

// TokenWindowChunker slides a fixed-size token window across the document's
// joined semantic content. It is the only strategy that realizes the
// configured sliding overlap between consecutive chunks.
type TokenWindowChunker struct {
	tok  tokenizer.Tokenizer
	opts *Options
}

// NewTokenWindowChunker creates a plain token-window chunker.
func NewTokenWindowChunker(tok tokenizer.Tokenizer, opts *Options) *TokenWindowChunker {
	return &TokenWindowChunker{tok: tok, opts: opts}
}

// Process implements Chunker.
func (t *TokenWindowChunker) Process(ctx context.Context, doc *document.Document) ([]Chunk, error) {
	var parts []string
	stream := doc.Content()
	for el, ok := stream.Next(); ok; el, ok = stream.Next() {
		content := el.SemanticContent()
		if strings.TrimSpace(content) == "" {
			continue
		}
		parts = append(parts, content)
	}
	if len(parts) == 0 {
		return nil, nil
	}

	ids := t.tok.Encode(strings.Join(parts, "\n"))
	if len(ids) == 0 {
		return nil, nil
	}

	maxTokens := t.opts.MaxTokensPerChunk()
	step := maxTokens - t.opts.OverlapTokens() // positive: overlap < max is invariant

	var chunks []Chunk
	for start := 0; start < len(ids); start += step {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := start + maxTokens
		if end > len(ids) {
			end = len(ids)
		}
		content := t.tok.Decode(ids[start:end])
		if strings.TrimSpace(content) != "" {
			chunks = append(chunks, Chunk{
				Content:    content,
				TokenCount: end - start,
				DocumentID: doc.ID,
			})
		}
		if end == len(ids) {
			break
		}
	}
	return chunks, nil
}
