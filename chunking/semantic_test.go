package chunking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"documents-chunker/document"
	"documents-chunker/pkg/errors"
)

// fakeEmbedder returns a scripted vector per text and records the batch it
// was asked for.
type fakeEmbedder struct {
	vectors map[string][]float32
	batches [][]string
	err     error
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.batches = append(f.batches, texts)
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		vec, ok := f.vectors[text]
		if !ok {
			continue // deliberately drop unknown texts to simulate mismatch
		}
		out = append(out, vec)
	}
	return out, nil
}

func TestSemanticChunker(t *testing.T) {
	ctx := context.Background()

	t.Run("cuts where the embedding distance jumps", func(t *testing.T) {
		embedder := &fakeEmbedder{vectors: map[string][]float32{
			"alpha": {1, 0},
			"beta":  {1, 0},
			"gamma": {0, 1},
		}}
		doc := singleSectionDoc("sem",
			document.Paragraph{Text: "alpha"},
			document.Paragraph{Text: "beta"},
			document.Paragraph{Text: "gamma"},
		)

		chunker := NewSemanticChunker(byteTok{}, testOptions(t, 100), nil, embedder)
		chunks, err := chunker.Process(ctx, doc)
		require.NoError(t, err)
		require.Len(t, chunks, 2)
		assert.Equal(t, "alpha\nbeta", chunks[0].Content)
		assert.Equal(t, "gamma", chunks[1].Content)
		assert.Equal(t, "sem", chunks[0].DocumentID)

		// Everything is embedded in one batch call.
		require.Len(t, embedder.batches, 1)
		assert.Equal(t, []string{"alpha", "beta", "gamma"}, embedder.batches[0])
	})

	t.Run("uniform content stays in one chunk", func(t *testing.T) {
		embedder := &fakeEmbedder{vectors: map[string][]float32{
			"one": {1, 0}, "two": {1, 0}, "three": {1, 0},
		}}
		doc := singleSectionDoc("sem",
			document.Paragraph{Text: "one"},
			document.Paragraph{Text: "two"},
			document.Paragraph{Text: "three"},
		)

		chunker := NewSemanticChunker(byteTok{}, testOptions(t, 100), nil, embedder)
		chunks, err := chunker.Process(ctx, doc)
		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, "one\ntwo\nthree", chunks[0].Content)
	})

	t.Run("two elements never split on their single distance", func(t *testing.T) {
		embedder := &fakeEmbedder{vectors: map[string][]float32{
			"first": {1, 0}, "second": {0, 1},
		}}
		doc := singleSectionDoc("sem",
			document.Paragraph{Text: "first"},
			document.Paragraph{Text: "second"},
		)

		// With one pairwise distance, the threshold degenerates to that value
		// and the strict comparison keeps the pair together.
		chunker := NewSemanticChunker(byteTok{}, testOptions(t, 100), nil, embedder)
		chunks, err := chunker.Process(ctx, doc)
		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, "first\nsecond", chunks[0].Content)
	})

	t.Run("embedding count mismatch fails", func(t *testing.T) {
		embedder := &fakeEmbedder{vectors: map[string][]float32{"known": {1, 0}}}
		doc := singleSectionDoc("sem",
			document.Paragraph{Text: "known"},
			document.Paragraph{Text: "unknown"},
		)

		chunker := NewSemanticChunker(byteTok{}, testOptions(t, 100), nil, embedder)
		_, err := chunker.Process(ctx, doc)
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ExternalCallFailure))
	})

	t.Run("embedding failure surfaces", func(t *testing.T) {
		embedder := &fakeEmbedder{err: assert.AnError}
		doc := singleSectionDoc("sem", document.Paragraph{Text: "text"})

		chunker := NewSemanticChunker(byteTok{}, testOptions(t, 100), nil, embedder)
		_, err := chunker.Process(ctx, doc)
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ExternalCallFailure))
	})

	t.Run("empty document needs no embedding call", func(t *testing.T) {
		embedder := &fakeEmbedder{}
		chunker := NewSemanticChunker(byteTok{}, testOptions(t, 100), nil, embedder)
		chunks, err := chunker.Process(ctx, &document.Document{ID: "empty"})
		require.NoError(t, err)
		assert.Empty(t, chunks)
		assert.Empty(t, embedder.batches)
	})
}
