package tokenizer

import (
	"github.com/pkoukk/tiktoken-go"
	"golang.org/x/text/unicode/norm"

	"documents-chunker/pkg/errors"
)

// DefaultEncoding is the BPE encoding used when none is configured.
const DefaultEncoding = "cl100k_base"

// Tiktoken is a Tokenizer backed by a tiktoken BPE encoding.
//
// When normalization is enabled, every method applies NFC before encoding, so
// returned byte offsets refer to the normalized text. Callers that rely on
// offsets should normalize their input once at ingestion instead.
type Tiktoken struct {
	enc       *tiktoken.Tiktoken
	normalize bool
}

// NewTiktoken loads the named encoding, e.g. "cl100k_base".
func NewTiktoken(encoding string, normalize bool) (*Tiktoken, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, errors.Wrapf(err, errors.InvalidArgument, "UNKNOWN_ENCODING", "unknown tokenizer encoding %q", encoding)
	}
	return &Tiktoken{enc: enc, normalize: normalize}, nil
}

func (t *Tiktoken) prepare(text string) string {
	if t.normalize {
		return norm.NFC.String(text)
	}
	return text
}

// CountTokens returns the token count of text.
func (t *Tiktoken) CountTokens(text string) int {
	return len(t.enc.Encode(t.prepare(text), nil, nil))
}

// Encode returns the token ids of text.
func (t *Tiktoken) Encode(text string) []int {
	return t.enc.Encode(t.prepare(text), nil, nil)
}

// Decode reverses Encode.
func (t *Tiktoken) Decode(ids []int) string {
	return t.enc.Decode(ids)
}

// IndexByTokenCount finds the largest prefix of text within maxTokens.
func (t *Tiktoken) IndexByTokenCount(text string, maxTokens int) (int, int) {
	prepared := t.prepare(text)
	if maxTokens <= 0 {
		return 0, 0
	}
	ids := t.enc.Encode(prepared, nil, nil)
	if len(ids) <= maxTokens {
		return len(prepared), len(ids)
	}
	prefix := t.enc.Decode(ids[:maxTokens])
	return len(prefix), maxTokens
}

// TokenOffsets returns ids plus the starting byte offset of each token,
// derived by decoding tokens one at a time.
func (t *Tiktoken) TokenOffsets(text string) ([]int, []int) {
	ids := t.enc.Encode(t.prepare(text), nil, nil)
	offsets := make([]int, len(ids))
	pos := 0
	for i, id := range ids {
		offsets[i] = pos
		pos += len(t.enc.Decode([]int{id}))
	}
	return ids, offsets
}
