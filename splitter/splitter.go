// Package splitter contains the text-splitting strategies the element packer
// falls back to when a single element cannot fit the token budget.
package splitter

import "context"

// Strategy decides where to cut a text span so every resulting segment stays
// within maxTokens. SplitOffsets returns the byte offset at which each
// segment ends, in ascending order; the final offset always equals len(text).
// Empty input yields an empty list.
type Strategy interface {
	SplitOffsets(ctx context.Context, text string, maxTokens int) ([]int, error)
}

// Split applies a strategy and materializes the segments.
func Split(ctx context.Context, s Strategy, text string, maxTokens int) ([]string, error) {
	offsets, err := s.SplitOffsets(ctx, text, maxTokens)
	if err != nil {
		return nil, err
	}
	segments := make([]string, 0, len(offsets))
	start := 0
	for _, end := range offsets {
		segments = append(segments, text[start:end])
		start = end
	}
	return segments, nil
}
