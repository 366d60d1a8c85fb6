package chunking

import (
	"context"
	"strings"

	"documents-chunker/document"
	"documents-chunker/numeric"
	"documents-chunker/pkg/errors"
	"documents-chunker/splitter"
	"documents-chunker/tokenizer"
)

// DefaultSemanticPercentile is the distance percentile above which a topic
// boundary is assumed.
const DefaultSemanticPercentile = 0.95

// Embedder produces one vector per input text in a single batch call.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// SemanticChunker embeds every element once, measures the cosine distance
// between consecutive elements and cuts wherever the distance exceeds a
// percentile threshold over all pairwise distances.
type SemanticChunker struct {
	packer   *Packer
	embedder Embedder

	// Percentile in (0, 1]; defaults to DefaultSemanticPercentile.
	Percentile float64
}

// NewSemanticChunker creates an embedding-distance chunker.
func NewSemanticChunker(tok tokenizer.Tokenizer, opts *Options, split splitter.Strategy, embedder Embedder) *SemanticChunker {
	return &SemanticChunker{
		packer:     NewPacker(tok, opts, split),
		embedder:   embedder,
		Percentile: DefaultSemanticPercentile,
	}
}

// Process implements Chunker.
func (s *SemanticChunker) Process(ctx context.Context, doc *document.Document) ([]Chunk, error) {
	var elements []document.Element
	var contents []string
	stream := doc.Content()
	for el, ok := stream.Next(); ok; el, ok = stream.Next() {
		content := el.SemanticContent()
		if strings.TrimSpace(content) == "" {
			continue
		}
		elements = append(elements, el)
		contents = append(contents, content)
	}
	if len(elements) == 0 {
		return nil, nil
	}

	vectors, err := s.embedder.Embed(ctx, contents)
	if err != nil {
		return nil, errors.Wrap(err, errors.ExternalCallFailure, "EMBEDDING_FAILED", "batch embedding request failed")
	}
	if len(vectors) != len(contents) {
		return nil, errors.Newf(errors.ExternalCallFailure, "EMBEDDING_MISMATCH", "expected %d embeddings, got %d", len(contents), len(vectors))
	}

	distances := consecutiveDistances(vectors)
	threshold, err := distanceThreshold(distances[:len(distances)-1], s.Percentile)
	if err != nil {
		return nil, err
	}

	var chunks []Chunk
	var run []document.Element
	for i, el := range elements {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		run = append(run, el)
		if distances[i] > threshold {
			packed, err := s.packer.Process(ctx, "", run)
			if err != nil {
				return nil, err
			}
			chunks = append(chunks, packed...)
			run = nil
		}
	}
	if len(run) > 0 {
		packed, err := s.packer.Process(ctx, "", run)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, packed...)
	}
	return stampDocument(chunks, doc.ID), nil
}

// consecutiveDistances returns the cosine distance between each element and
// its successor; the last element gets distance 0.
func consecutiveDistances(vectors [][]float32) []float64 {
	distances := make([]float64, len(vectors))
	for i := 0; i < len(vectors)-1; i++ {
		a := toFloat64(vectors[i])
		b := toFloat64(vectors[i+1])
		if sim, ok := numeric.CosineSimilarity(a, b); ok {
			distances[i] = 1 - sim
		}
	}
	return distances
}

// distanceThreshold is the configured percentile over the pairwise distances.
// Zero or one distance values degenerate to that value itself.
func distanceThreshold(distances []float64, percentile float64) (float64, error) {
	switch len(distances) {
	case 0:
		return 0, nil
	case 1:
		return distances[0], nil
	}
	return numeric.Percentile(distances, percentile)
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}
