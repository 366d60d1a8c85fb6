// Package tokenizer abstracts token counting and encoding for budget math.
package tokenizer

// Tokenizer is the narrow surface the chunking engine needs from a BPE
// tokenizer. Implementations run in-process and do not fail after
// construction.
type Tokenizer interface {
	// CountTokens returns the number of tokens in text.
	CountTokens(text string) int
	// Encode returns the token ids of text.
	Encode(text string) []int
	// Decode reverses Encode.
	Decode(ids []int) string
	// IndexByTokenCount returns the byte index just past the largest prefix
	// of text that fits within maxTokens, and the number of tokens that
	// prefix consumes.
	IndexByTokenCount(text string, maxTokens int) (index int, tokens int)
	// TokenOffsets returns the token ids of text together with the starting
	// byte offset of every token.
	TokenOffsets(text string) (ids []int, offsets []int)
}
