package chunking

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"documents-chunker/document"
	"documents-chunker/pkg/errors"
	"documents-chunker/splitter"
	"documents-chunker/tokenizer"
)

// Packer is the budget accumulator every boundary strategy delegates to. It
// consumes an ordered run of elements plus a context string and emits chunks
// that respect the token budget, splitting oversized elements through a
// text-splitting strategy, or row by row for tables.
type Packer struct {
	tok   tokenizer.Tokenizer
	opts  *Options
	split splitter.Strategy
	log   zerolog.Logger
}

// NewPacker creates a packer. split handles oversized non-table elements; a
// nil split falls back to the delimiter strategy.
func NewPacker(tok tokenizer.Tokenizer, opts *Options, split splitter.Strategy) *Packer {
	if split == nil {
		split = splitter.NewDelimiter(tok)
	}
	return &Packer{tok: tok, opts: opts, split: split, log: zerolog.Nop()}
}

// SetLogger attaches a logger; the default discards everything.
func (p *Packer) SetLogger(log zerolog.Logger) { p.log = log }

// Process packs elements into chunks prefixed with contextStr. It is a pure
// function of (context, elements, options): the document is never mutated.
func (p *Packer) Process(ctx context.Context, contextStr string, elements []document.Element) ([]Chunk, error) {
	maxTokens := p.opts.MaxTokensPerChunk()
	contextTokens := p.tok.CountTokens(contextStr)
	if contextTokens >= maxTokens {
		return nil, errors.Newf(errors.BudgetExceeded, "CONTEXT_TOO_LARGE",
			"context occupies %d of %d tokens, leaving no room for content; raise max tokens per chunk", contextTokens, maxTokens)
	}

	var chunks []Chunk
	buf := newRunBuffer(contextStr, contextTokens)

	for _, el := range elements {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		content := el.SemanticContent()
		if strings.TrimSpace(content) == "" {
			continue
		}
		cost := p.appendCost(buf, content)

		switch {
		case buf.tokens+cost <= maxTokens:
			buf.append(content, cost)
		default:
			if table, ok := el.(document.Table); ok {
				if err := p.packTable(ctx, table, buf, &chunks); err != nil {
					return nil, err
				}
			} else if err := p.packSplit(ctx, content, buf, &chunks); err != nil {
				return nil, err
			}
		}
	}

	if buf.tokens > buf.contextTokens {
		chunks = append(chunks, p.commit(buf))
	}
	return chunks, nil
}

// packTable appends data rows one at a time, repeating the header row and
// separator after every commit. Tables are never split mid-row: a row that
// cannot fit a fresh chunk alongside context and header is fatal.
func (p *Packer) packTable(ctx context.Context, table document.Table, buf *runBuffer, chunks *[]Chunk) error {
	maxTokens := p.opts.MaxTokensPerChunk()
	header := table.HeaderMarkdown()
	headerTokens := p.tok.CountTokens(header)

	// Every chunk of this table pays for the context, the header and the
	// newline joining them before the first data row lands.
	overhead := buf.contextTokens + headerTokens
	if buf.context != "" {
		overhead += p.separatorTokens()
	}
	if overhead >= maxTokens {
		return errors.Newf(errors.BudgetExceeded, "TABLE_HEADER_TOO_LARGE",
			"table header and context occupy %d of %d tokens; raise max tokens per chunk", overhead, maxTokens)
	}

	if buf.tokens+p.appendCost(buf, header) > maxTokens && buf.tokens > buf.contextTokens {
		*chunks = append(*chunks, p.commit(buf))
		buf.reset()
	}
	headerCost := p.appendCost(buf, header)
	if buf.tokens+headerCost > maxTokens {
		return errors.Newf(errors.BudgetExceeded, "TABLE_HEADER_TOO_LARGE",
			"table header and context occupy %d of %d tokens; raise max tokens per chunk", buf.tokens+headerCost, maxTokens)
	}
	buf.append(header, headerCost)

	for i := 1; i < table.RowCount(); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		row := table.RowMarkdown(i)
		rowTokens := p.tok.CountTokens(row)
		if overhead+p.separatorTokens()+rowTokens > maxTokens {
			return errors.Newf(errors.BudgetExceeded, "TABLE_ROW_TOO_LARGE",
				"table row %d cannot fit a fresh chunk; raise max tokens per chunk", i)
		}
		if buf.tokens+p.appendCost(buf, row) > maxTokens {
			*chunks = append(*chunks, p.commit(buf))
			buf.reset()
			buf.append(header, p.appendCost(buf, header))
		}
		rowCost := p.appendCost(buf, row)
		if buf.tokens+rowCost > maxTokens {
			return errors.Newf(errors.BudgetExceeded, "TABLE_ROW_TOO_LARGE",
				"table row %d cannot fit a fresh chunk; raise max tokens per chunk", i)
		}
		buf.append(row, rowCost)
	}
	return nil
}

// packSplit routes an oversized text element through the splitting strategy,
// then appends the segments, committing whenever one would overflow. The
// budget handed to the splitter reserves the newline a fresh chunk pays
// between the context and its first segment, so every segment is guaranteed
// to fit a fresh chunk.
func (p *Packer) packSplit(ctx context.Context, content string, buf *runBuffer, chunks *[]Chunk) error {
	maxTokens := p.opts.MaxTokensPerChunk()
	budget := maxTokens - buf.contextTokens
	if buf.context != "" {
		budget -= p.separatorTokens()
	}

	offsets, err := p.split.SplitOffsets(ctx, content, budget)
	if err != nil {
		return err
	}
	p.log.Debug().Int("segments", len(offsets)).Int("budget", budget).Msg("split oversized element")

	start := 0
	for _, end := range offsets {
		segment := content[start:end]
		if strings.TrimSpace(segment) == "" {
			start = end
			continue
		}
		if buf.tokens+p.appendCost(buf, segment) > maxTokens && buf.tokens > buf.contextTokens {
			*chunks = append(*chunks, p.commit(buf))
			buf.reset()
		}
		cost := p.appendCost(buf, segment)
		if buf.tokens+cost > maxTokens {
			return errors.Newf(errors.BudgetExceeded, "SEGMENT_TOO_LARGE",
				"split segment of %d tokens cannot fit a fresh chunk of %d; raise max tokens per chunk", p.tok.CountTokens(segment), maxTokens)
		}
		buf.appendSpan(segment, cost, SourceSpan{Start: start, End: end})
		start = end
	}
	return nil
}

// appendCost counts the tokens appending text would add, including the
// newline separator when the buffer already holds content.
func (p *Packer) appendCost(buf *runBuffer, text string) int {
	if buf.sb.Len() > 0 {
		return p.tok.CountTokens("\n" + text)
	}
	return p.tok.CountTokens(text)
}

// separatorTokens is the cost of the newline joining buffer entries.
func (p *Packer) separatorTokens() int {
	return p.tok.CountTokens("\n")
}

func (p *Packer) commit(buf *runBuffer) Chunk {
	content := buf.sb.String()
	chunk := Chunk{
		Content:    content,
		TokenCount: p.tok.CountTokens(content),
		Context:    buf.context,
		Spans:      buf.takeSpans(),
	}
	return chunk
}

// runBuffer is the mutable accumulator for one packer run. It is seeded with
// the context string and discarded when the run ends.
type runBuffer struct {
	sb            strings.Builder
	tokens        int
	context       string
	contextTokens int
	spans         []SourceSpan
}

func newRunBuffer(contextStr string, contextTokens int) *runBuffer {
	b := &runBuffer{context: contextStr, contextTokens: contextTokens}
	b.seed()
	return b
}

func (b *runBuffer) seed() {
	if b.context != "" {
		b.sb.WriteString(b.context)
	}
	b.tokens = b.contextTokens
}

func (b *runBuffer) append(text string, cost int) {
	if b.sb.Len() > 0 {
		b.sb.WriteByte('\n')
	}
	b.sb.WriteString(text)
	b.tokens += cost
}

func (b *runBuffer) appendSpan(text string, cost int, span SourceSpan) {
	b.append(text, cost)
	b.spans = append(b.spans, span)
}

func (b *runBuffer) reset() {
	b.sb.Reset()
	b.spans = nil
	b.seed()
}

func (b *runBuffer) takeSpans() []SourceSpan {
	spans := b.spans
	b.spans = nil
	return spans
}
