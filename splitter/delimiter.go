package splitter

import (
	"context"
	"strings"

	"documents-chunker/pkg/errors"
	"documents-chunker/tokenizer"
)

// Delimiter repeatedly takes the largest token-bounded prefix of the
// remaining text. When that prefix contains a newline, the cut backtracks to
// just after the last newline so line-oriented structure (code blocks, list
// items) is never decoded mid-line.
type Delimiter struct {
	tok tokenizer.Tokenizer
}

// NewDelimiter creates a delimiter-based splitting strategy.
func NewDelimiter(tok tokenizer.Tokenizer) *Delimiter {
	return &Delimiter{tok: tok}
}

// SplitOffsets implements Strategy.
func (d *Delimiter) SplitOffsets(ctx context.Context, text string, maxTokens int) ([]int, error) {
	if text == "" {
		return nil, nil
	}

	var offsets []int
	pos := 0
	for pos < len(text) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rest := text[pos:]
		idx, tokens := d.tok.IndexByTokenCount(rest, maxTokens)
		if tokens == 0 || idx == 0 {
			return nil, errors.Newf(errors.BudgetExceeded, "BUDGET_EXCEEDED", "no tokens fit within a budget of %d; raise max tokens per chunk", maxTokens)
		}
		if idx < len(rest) {
			// Keep whole lines together when the prefix spans one.
			if nl := strings.LastIndexByte(rest[:idx], '\n'); nl >= 0 && nl+1 < idx {
				idx = nl + 1
			}
		}
		pos += idx
		offsets = append(offsets, pos)
	}
	return offsets, nil
}
