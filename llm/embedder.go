package llm

import (
	"context"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"

	"documents-chunker/pkg/errors"
)

// Embedder adapts a langchaingo embeddings client to the chunking.Embedder
// interface: one batch call per boundary decision.
type Embedder struct {
	embedder embeddings.Embedder
}

// NewEmbedder wraps an existing langchaingo embedder client.
func NewEmbedder(client embeddings.EmbedderClient) (*Embedder, error) {
	embedder, err := embeddings.NewEmbedder(client)
	if err != nil {
		return nil, errors.Wrap(err, errors.ExternalCallFailure, "EMBEDDER_CLIENT_FAILED", "failed to create embedder")
	}
	return &Embedder{embedder: embedder}, nil
}

// NewOpenAIEmbedder builds an embedder backed by the OpenAI API. Credentials
// come from the environment (OPENAI_API_KEY).
func NewOpenAIEmbedder(model string) (*Embedder, error) {
	var opts []openai.Option
	if model != "" {
		opts = append(opts, openai.WithEmbeddingModel(model))
	}
	client, err := openai.New(opts...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ExternalCallFailure, "EMBEDDER_CLIENT_FAILED", "failed to create OpenAI embedding client")
	}
	return NewEmbedder(client)
}

// Embed returns one vector per input text.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors, err := e.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, errors.Wrap(err, errors.ExternalCallFailure, "EMBEDDING_FAILED", "batch embedding request failed")
	}
	return vectors, nil
}
