package chunking

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"documents-chunker/document"
	"documents-chunker/pkg/errors"
)

func TestPackerProcess(t *testing.T) {
	ctx := context.Background()

	t.Run("context that fills the budget is rejected up front", func(t *testing.T) {
		packer := NewPacker(byteTok{}, testOptions(t, 10), nil)
		_, err := packer.Process(ctx, "exactly10!", []document.Element{document.Paragraph{Text: "x"}})
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.BudgetExceeded))
	})

	t.Run("elements that fit share one chunk", func(t *testing.T) {
		packer := NewPacker(byteTok{}, testOptions(t, 20), nil)
		chunks, err := packer.Process(ctx, "ctx", []document.Element{
			document.Paragraph{Text: "hello"},
			document.Paragraph{Text: "world"},
		})
		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, "ctx\nhello\nworld", chunks[0].Content)
		assert.Equal(t, 15, chunks[0].TokenCount)
		assert.Equal(t, "ctx", chunks[0].Context)
	})

	t.Run("whitespace-only elements are skipped", func(t *testing.T) {
		packer := NewPacker(byteTok{}, testOptions(t, 20), nil)
		chunks, err := packer.Process(ctx, "", []document.Element{
			document.Paragraph{Text: "   "},
			document.Footer{Text: "page 1"},
		})
		require.NoError(t, err)
		assert.Empty(t, chunks)
	})

	t.Run("overflow commits the buffer and continues", func(t *testing.T) {
		packer := NewPacker(byteTok{}, testOptions(t, 12), nil)
		chunks, err := packer.Process(ctx, "", []document.Element{
			document.Paragraph{Text: "aaaaaaaa"},
			document.Paragraph{Text: "bbbbbbbb"},
		})
		require.NoError(t, err)
		require.Len(t, chunks, 2)
		assert.Equal(t, "aaaaaaaa", chunks[0].Content)
		assert.Equal(t, "bbbbbbbb", chunks[1].Content)
		assert.Equal(t, []SourceSpan{{Start: 0, End: 8}}, chunks[1].Spans)
	})

	t.Run("oversized element is split along newlines within the budget", func(t *testing.T) {
		packer := NewPacker(byteTok{}, testOptions(t, 10), nil)
		chunks, err := packer.Process(ctx, "", []document.Element{
			document.Paragraph{Text: "line1\nline2\nline3"},
		})
		require.NoError(t, err)
		require.Len(t, chunks, 3)
		assert.Equal(t, []string{"line1\n", "line2\n", "line3"}, chunkContents(chunks))
		assert.Equal(t, []SourceSpan{{Start: 0, End: 6}}, chunks[0].Spans)
		assert.Equal(t, []SourceSpan{{Start: 6, End: 12}}, chunks[1].Spans)
		assert.Equal(t, []SourceSpan{{Start: 12, End: 17}}, chunks[2].Spans)
		for _, chunk := range chunks {
			assert.LessOrEqual(t, chunk.TokenCount, 10)
		}
	})

	t.Run("oversized element behind a context stays within budget", func(t *testing.T) {
		packer := NewPacker(byteTok{}, testOptions(t, 10), nil)
		chunks, err := packer.Process(ctx, "cc", []document.Element{
			document.Paragraph{Text: "aaaaaaaaaaaaaaaa"}, // 16 tokens
		})
		require.NoError(t, err)
		require.Len(t, chunks, 3)
		// The separator between context and segment is part of the budget, so
		// a 7-token segment is the most a fresh chunk can take.
		assert.Equal(t, []string{"cc\naaaaaaa", "cc\naaaaaaa", "cc\naa"}, chunkContents(chunks))
		for _, chunk := range chunks {
			assert.LessOrEqual(t, chunk.TokenCount, 10)
			assert.NotEqual(t, "cc", chunk.Content, "chunk must hold more than the bare context")
		}
	})

	t.Run("token counts reflect the committed content", func(t *testing.T) {
		packer := NewPacker(byteTok{}, testOptions(t, 30), nil)
		chunks, err := packer.Process(ctx, "topic", []document.Element{
			document.Paragraph{Text: "body"},
		})
		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, len("topic\nbody"), chunks[0].TokenCount)
	})

	t.Run("cancelled context stops packing", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		packer := NewPacker(byteTok{}, testOptions(t, 20), nil)
		_, err := packer.Process(cancelled, "", []document.Element{document.Paragraph{Text: "x"}})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestPackerTables(t *testing.T) {
	ctx := context.Background()

	table := document.Table{Rows: [][]document.Element{
		{document.Paragraph{Text: "H"}},
		{document.Paragraph{Text: "r1"}},
		{document.Paragraph{Text: "r2"}},
		{document.Paragraph{Text: "r3"}},
	}}
	// Header renders as "| H |\n| --- |": 13 tokens. Each row is 6 tokens.

	t.Run("header and separator repeat in every chunk", func(t *testing.T) {
		packer := NewPacker(byteTok{}, testOptions(t, 25), nil)
		chunks, err := packer.Process(ctx, "", []document.Element{table})
		require.NoError(t, err)
		require.Len(t, chunks, 3)
		for i, chunk := range chunks {
			assert.True(t, strings.HasPrefix(chunk.Content, "| H |\n| --- |"), "chunk %d: %q", i, chunk.Content)
			assert.LessOrEqual(t, chunk.TokenCount, 25)
		}
		assert.Contains(t, chunks[0].Content, "| r1 |")
		assert.Contains(t, chunks[1].Content, "| r2 |")
		assert.Contains(t, chunks[2].Content, "| r3 |")
	})

	t.Run("header larger than the budget is fatal", func(t *testing.T) {
		packer := NewPacker(byteTok{}, testOptions(t, 10), nil)
		_, err := packer.Process(ctx, "", []document.Element{table})
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.BudgetExceeded))
	})

	t.Run("row that cannot fit a fresh chunk is fatal", func(t *testing.T) {
		wide := document.Table{Rows: [][]document.Element{
			{document.Paragraph{Text: "H"}},
			{document.Paragraph{Text: "this row is far too wide for the budget"}},
		}}
		packer := NewPacker(byteTok{}, testOptions(t, 25), nil)
		_, err := packer.Process(ctx, "", []document.Element{wide})
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.BudgetExceeded))
	})

	t.Run("rows exactly filling the budget account for separators", func(t *testing.T) {
		// Context (2) + separator + header (13) + separator + row (6) is
		// exactly 23 tokens per chunk.
		packer := NewPacker(byteTok{}, testOptions(t, 23), nil)
		chunks, err := packer.Process(ctx, "cc", []document.Element{table})
		require.NoError(t, err)
		require.Len(t, chunks, 3)
		assert.Equal(t, "cc\n| H |\n| --- |\n| r1 |", chunks[0].Content)
		for _, chunk := range chunks {
			assert.Equal(t, 23, chunk.TokenCount)
		}
	})

	t.Run("row overflowing only by its separator is fatal", func(t *testing.T) {
		packer := NewPacker(byteTok{}, testOptions(t, 22), nil)
		_, err := packer.Process(ctx, "cc", []document.Element{table})
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.BudgetExceeded))
	})

	t.Run("small table packs alongside other content", func(t *testing.T) {
		small := document.Table{Rows: [][]document.Element{
			{document.Paragraph{Text: "A"}},
			{document.Paragraph{Text: "1"}},
		}}
		packer := NewPacker(byteTok{}, testOptions(t, 100), nil)
		chunks, err := packer.Process(ctx, "", []document.Element{
			document.Paragraph{Text: "before"},
			small,
		})
		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, "before\n| A |\n| --- |\n| 1 |", chunks[0].Content)
	})
}
