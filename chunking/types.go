// Package chunking splits parsed documents into token-bounded,
// context-annotated chunks ready for embedding and retrieval.
package chunking

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"documents-chunker/document"
)

// Chunk is a single token-bounded unit of text. Content is never empty or
// whitespace-only; TokenCount, when set, reflects the tokenizer the chunk was
// built with, not character length.
type Chunk struct {
	ID         int          `json:"id"`
	Content    string       `json:"content"`
	TokenCount int          `json:"token_count,omitempty"`
	Context    string       `json:"context,omitempty"`
	DocumentID string       `json:"document_id,omitempty"`
	Spans      []SourceSpan `json:"spans,omitempty"`
}

// SourceSpan is a byte offset range into the originating element's text.
type SourceSpan struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Chunker is the interface every boundary strategy implements. Chunks are
// emitted in document order; the sequence is reproducible for identical input
// and options.
type Chunker interface {
	Process(ctx context.Context, doc *document.Document) ([]Chunk, error)
}

// Result holds the outcome of chunking one document.
type Result struct {
	Chunks        []Chunk `json:"chunks"`
	TotalChunks   int     `json:"total_chunks"`
	AverageTokens float64 `json:"average_tokens"`
}

// NewResult numbers the chunks and computes summary statistics.
func NewResult(chunks []Chunk) *Result {
	totalTokens := 0
	for i := range chunks {
		chunks[i].ID = i + 1
		totalTokens += chunks[i].TokenCount
	}
	avg := 0.0
	if len(chunks) > 0 {
		avg = float64(totalTokens) / float64(len(chunks))
	}
	return &Result{
		Chunks:        chunks,
		TotalChunks:   len(chunks),
		AverageTokens: avg,
	}
}

// SaveChunks writes each chunk to outputDir as chunk_NNN.txt.
func SaveChunks(result *Result, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	for _, chunk := range result.Chunks {
		filename := fmt.Sprintf("chunk_%03d.txt", chunk.ID)
		filePath := filepath.Join(outputDir, filename)

		if err := os.WriteFile(filePath, []byte(chunk.Content), 0644); err != nil {
			return fmt.Errorf("failed to write chunk %d: %w", chunk.ID, err)
		}
	}

	return nil
}

// stampDocument fills provenance fields on freshly packed chunks.
func stampDocument(chunks []Chunk, docID string) []Chunk {
	for i := range chunks {
		chunks[i].DocumentID = docID
	}
	return chunks
}
