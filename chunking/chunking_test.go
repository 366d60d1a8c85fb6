package chunking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"documents-chunker/document"
)

// byteTok treats every byte as one token, making budget math exact in tests.
type byteTok struct{}

func (byteTok) CountTokens(text string) int { return len(text) }

func (byteTok) Encode(text string) []int {
	ids := make([]int, len(text))
	for i := 0; i < len(text); i++ {
		ids[i] = int(text[i])
	}
	return ids
}

func (byteTok) Decode(ids []int) string {
	b := make([]byte, len(ids))
	for i, id := range ids {
		b[i] = byte(id)
	}
	return string(b)
}

func (byteTok) IndexByTokenCount(text string, maxTokens int) (int, int) {
	if maxTokens < 0 {
		maxTokens = 0
	}
	if maxTokens > len(text) {
		maxTokens = len(text)
	}
	return maxTokens, maxTokens
}

func (byteTok) TokenOffsets(text string) ([]int, []int) {
	ids := make([]int, len(text))
	offsets := make([]int, len(text))
	for i := 0; i < len(text); i++ {
		ids[i] = int(text[i])
		offsets[i] = i
	}
	return ids, offsets
}

// testOptions builds options with the given budget and zero overlap.
func testOptions(t *testing.T, maxTokens int) *Options {
	t.Helper()
	opts := NewOptions()
	require.NoError(t, opts.SetOverlapTokens(0))
	require.NoError(t, opts.SetMaxTokensPerChunk(maxTokens))
	return opts
}

func singleSectionDoc(id string, elements ...document.Element) *document.Document {
	return &document.Document{
		ID:       id,
		Sections: []*document.Section{{Elements: elements}},
	}
}

func chunkContents(chunks []Chunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Content
	}
	return out
}

func TestOptions(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		opts := NewOptions()
		assert.Equal(t, DefaultMaxTokensPerChunk, opts.MaxTokensPerChunk())
		assert.Equal(t, DefaultOverlapTokens, opts.OverlapTokens())
	})

	t.Run("rejects non-positive max tokens", func(t *testing.T) {
		opts := NewOptions()
		err := opts.SetMaxTokensPerChunk(0)
		require.Error(t, err)
		assert.Equal(t, DefaultMaxTokensPerChunk, opts.MaxTokensPerChunk())
	})

	t.Run("rejects max tokens at or below the overlap", func(t *testing.T) {
		opts := NewOptions()
		err := opts.SetMaxTokensPerChunk(DefaultOverlapTokens)
		require.Error(t, err)
		assert.Equal(t, DefaultMaxTokensPerChunk, opts.MaxTokensPerChunk())
	})

	t.Run("rejects negative overlap", func(t *testing.T) {
		opts := NewOptions()
		err := opts.SetOverlapTokens(-1)
		require.Error(t, err)
		assert.Equal(t, DefaultOverlapTokens, opts.OverlapTokens())
	})

	t.Run("rejects overlap at or above max tokens", func(t *testing.T) {
		opts := NewOptions()
		err := opts.SetOverlapTokens(DefaultMaxTokensPerChunk)
		require.Error(t, err)
		assert.Equal(t, DefaultOverlapTokens, opts.OverlapTokens())
	})

	t.Run("valid updates apply", func(t *testing.T) {
		opts := NewOptions()
		require.NoError(t, opts.SetOverlapTokens(10))
		require.NoError(t, opts.SetMaxTokensPerChunk(100))
		assert.Equal(t, 100, opts.MaxTokensPerChunk())
		assert.Equal(t, 10, opts.OverlapTokens())
	})
}

func TestNewResult(t *testing.T) {
	t.Run("numbers chunks and averages token counts", func(t *testing.T) {
		result := NewResult([]Chunk{
			{Content: "a", TokenCount: 10},
			{Content: "b", TokenCount: 20},
		})
		assert.Equal(t, 2, result.TotalChunks)
		assert.Equal(t, 1, result.Chunks[0].ID)
		assert.Equal(t, 2, result.Chunks[1].ID)
		assert.InDelta(t, 15, result.AverageTokens, 1e-12)
	})

	t.Run("empty result", func(t *testing.T) {
		result := NewResult(nil)
		assert.Zero(t, result.TotalChunks)
		assert.Zero(t, result.AverageTokens)
	})
}

func TestSaveChunks(t *testing.T) {
	dir := t.TempDir()
	result := NewResult([]Chunk{
		{Content: "first"},
		{Content: "second"},
	})
	require.NoError(t, SaveChunks(result, dir))

	assert.FileExists(t, dir+"/chunk_001.txt")
	assert.FileExists(t, dir+"/chunk_002.txt")
}
