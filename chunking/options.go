package chunking

import "documents-chunker/pkg/errors"

const (
	// DefaultMaxTokensPerChunk is the hard ceiling applied when none is set.
	DefaultMaxTokensPerChunk = 2000
	// DefaultOverlapTokens is the sliding overlap used by the token-window
	// chunker. Other strategies validate but do not realize overlap.
	DefaultOverlapTokens = 500
)

// Options holds the configuration surface shared by all chunkers. The budget
// fields are unexported so the overlap < max invariant cannot be broken by
// direct mutation.
type Options struct {
	maxTokensPerChunk int
	overlapTokens     int

	// ConsiderPreTokenization and ConsiderNormalization are forwarded to the
	// tokenizer adapter.
	ConsiderPreTokenization bool
	ConsiderNormalization   bool
}

// NewOptions returns options with the default budget.
func NewOptions() *Options {
	return &Options{
		maxTokensPerChunk: DefaultMaxTokensPerChunk,
		overlapTokens:     DefaultOverlapTokens,
	}
}

// MaxTokensPerChunk returns the per-chunk token ceiling.
func (o *Options) MaxTokensPerChunk() int { return o.maxTokensPerChunk }

// OverlapTokens returns the configured overlap.
func (o *Options) OverlapTokens() int { return o.overlapTokens }

// SetMaxTokensPerChunk rejects non-positive values and values at or below the
// current overlap.
func (o *Options) SetMaxTokensPerChunk(n int) error {
	if n <= 0 {
		return errors.Newf(errors.InvalidArgument, "BAD_MAX_TOKENS", "max tokens per chunk must be positive, got %d", n)
	}
	if n <= o.overlapTokens {
		return errors.Newf(errors.InvalidArgument, "BAD_MAX_TOKENS", "max tokens per chunk (%d) must exceed overlap tokens (%d)", n, o.overlapTokens)
	}
	o.maxTokensPerChunk = n
	return nil
}

// SetOverlapTokens rejects negative values and values at or above the current
// maximum.
func (o *Options) SetOverlapTokens(n int) error {
	if n < 0 {
		return errors.Newf(errors.InvalidArgument, "BAD_OVERLAP", "overlap tokens must not be negative, got %d", n)
	}
	if n >= o.maxTokensPerChunk {
		return errors.Newf(errors.InvalidArgument, "BAD_OVERLAP", "overlap tokens (%d) must stay below max tokens per chunk (%d)", n, o.maxTokensPerChunk)
	}
	o.overlapTokens = n
	return nil
}
