package splitter

import (
	"context"
	"math"

	"documents-chunker/pkg/errors"
	"documents-chunker/tokenizer"
)

const (
	// DefaultWindowTokens is the classifier window size including the CLS
	// and SEP wrapper tokens.
	DefaultWindowTokens = 255
	// DefaultBoundaryProbability is the probability a token must reach to
	// qualify as a boundary candidate.
	DefaultBoundaryProbability = 0.5

	defaultCLSTokenID int64 = 101
	defaultSEPTokenID int64 = 102

	// strideFactor scales half the usable window into the slide distance
	// used when a window yields no qualifying boundary.
	strideFactor = 1.75
)

// NeuralConfig tunes the sliding-window boundary classifier.
type NeuralConfig struct {
	// WindowTokens is the total window size fed to the classifier,
	// including CLS and SEP. Defaults to DefaultWindowTokens.
	WindowTokens int
	// BoundaryProbability is the classification probability threshold p;
	// a token qualifies when logit(is) - logit(not) exceeds ln(1/p - 1).
	BoundaryProbability float64
	// CLSTokenID and SEPTokenID wrap every window. Defaults match BERT.
	CLSTokenID int64
	SEPTokenID int64
}

// Neural scores candidate boundaries with a binary token classifier sliding
// over the token stream. When the model offers no qualifying boundary before
// the budget runs out, the best-scoring position seen so far (the backup) is
// used to force a budget-compliant cut.
type Neural struct {
	tok          tokenizer.Tokenizer
	session      InferenceSession
	windowTokens int
	threshold    float64
	clsID        int64
	sepID        int64
}

// NewNeural creates the neural splitting strategy.
func NewNeural(tok tokenizer.Tokenizer, session InferenceSession, cfg *NeuralConfig) (*Neural, error) {
	if cfg == nil {
		cfg = &NeuralConfig{}
	}
	window := cfg.WindowTokens
	if window == 0 {
		window = DefaultWindowTokens
	}
	if window < 3 {
		return nil, errors.Newf(errors.InvalidArgument, "BAD_WINDOW", "window of %d tokens cannot hold CLS, SEP and content", window)
	}
	probability := cfg.BoundaryProbability
	if probability == 0 {
		probability = DefaultBoundaryProbability
	}
	if probability <= 0 || probability >= 1 {
		return nil, errors.Newf(errors.InvalidArgument, "BAD_PROBABILITY", "boundary probability must be within (0, 1), got %g", probability)
	}
	clsID := cfg.CLSTokenID
	if clsID == 0 {
		clsID = defaultCLSTokenID
	}
	sepID := cfg.SEPTokenID
	if sepID == 0 {
		sepID = defaultSEPTokenID
	}
	return &Neural{
		tok:          tok,
		session:      session,
		windowTokens: window,
		threshold:    math.Log(1/probability - 1),
		clsID:        clsID,
		sepID:        sepID,
	}, nil
}

// SplitOffsets implements Strategy.
func (n *Neural) SplitOffsets(ctx context.Context, text string, maxTokens int) ([]int, error) {
	if text == "" {
		return nil, nil
	}
	if maxTokens <= 0 {
		return nil, errors.Newf(errors.BudgetExceeded, "BUDGET_EXCEEDED", "token budget of %d leaves no room for content", maxTokens)
	}

	ids, offs := n.tok.TokenOffsets(text)
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) <= maxTokens {
		return []int{len(text)}, nil
	}

	usable := n.windowTokens - 2
	stride := int(strideFactor * float64(usable) / 2)
	if stride < 1 {
		stride = 1
	}

	var cutTokens []int
	lastCut := 0
	start := 0
	backupIdx := -1
	backupScore := math.Inf(-1)

	// forceCut commits a split at the backup position, falling back to the
	// window start and finally to a full-budget cut. This is what keeps the
	// budget invariant when the classifier finds no good boundary.
	forceCut := func(windowStart int) {
		pos := backupIdx
		if pos <= lastCut {
			pos = windowStart
		}
		if pos <= lastCut || pos-lastCut > maxTokens {
			pos = lastCut + maxTokens
		}
		if pos > len(ids) {
			pos = len(ids)
		}
		cutTokens = append(cutTokens, pos)
		lastCut = pos
		backupIdx = -1
		backupScore = math.Inf(-1)
	}

	for start < len(ids) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := start + usable
		if end > len(ids) {
			end = len(ids)
		}
		diffs, err := n.scoreWindow(ctx, ids[start:end])
		if err != nil {
			return nil, err
		}

		var accepted []int
		for i, diff := range diffs {
			tokenIdx := start + i
			if tokenIdx <= lastCut {
				continue
			}
			if diff > n.threshold {
				accepted = append(accepted, tokenIdx)
			}
			// Greedy first maximum: a later score must strictly beat it.
			if diff > backupScore {
				backupScore = diff
				backupIdx = tokenIdx
			}
		}

		if len(accepted) > 0 {
			for _, tokenIdx := range accepted {
				if tokenIdx <= lastCut {
					continue
				}
				// Absorbing up to a model boundary must never overflow.
				for tokenIdx-lastCut > maxTokens {
					forceCut(start)
				}
				if tokenIdx > lastCut {
					cutTokens = append(cutTokens, tokenIdx)
					lastCut = tokenIdx
				}
			}
			start = lastCut
			backupIdx = -1
			backupScore = math.Inf(-1)
			continue
		}

		if end >= len(ids) {
			break
		}
		next := start + stride
		if next-lastCut > maxTokens || end-lastCut >= maxTokens {
			forceCut(start)
			start = lastCut
		} else {
			start = next
		}
	}

	// The tail past the last cut must also respect the budget.
	for len(ids)-lastCut > maxTokens {
		forceCut(lastCut + maxTokens)
	}

	// Distinct token cuts can share a byte offset when a token decodes to
	// zero bytes; keep offsets strictly ascending so no segment is empty.
	out := make([]int, 0, len(cutTokens)+1)
	last := 0
	for _, cut := range cutTokens {
		if cut <= 0 || cut >= len(ids) {
			continue
		}
		if b := offs[cut]; b > last && b < len(text) {
			out = append(out, b)
			last = b
		}
	}
	out = append(out, len(text))
	return out, nil
}

// scoreWindow wraps the window in CLS/SEP, runs the classifier and returns
// the per-token logit difference logit(is_boundary) - logit(not_boundary).
func (n *Neural) scoreWindow(ctx context.Context, window []int) ([]float64, error) {
	seq := len(window) + 2
	inputIDs := make([]int64, seq)
	attentionMask := make([]int64, seq)
	tokenTypeIDs := make([]int64, seq)

	inputIDs[0] = n.clsID
	for i, id := range window {
		inputIDs[i+1] = int64(id)
	}
	inputIDs[seq-1] = n.sepID
	for i := range attentionMask {
		attentionMask[i] = 1
	}

	logits, err := n.session.Run(ctx, inputIDs, attentionMask, tokenTypeIDs)
	if err != nil {
		return nil, errors.Wrap(err, errors.ExternalCallFailure, "INFERENCE_FAILED", "boundary classifier inference failed")
	}
	if len(logits) != seq {
		return nil, errors.Newf(errors.ExternalCallFailure, "BAD_LOGITS", "expected %d logit rows, got %d", seq, len(logits))
	}

	diffs := make([]float64, len(window))
	for i := range window {
		row := logits[i+1]
		if len(row) < 2 {
			return nil, errors.Newf(errors.ExternalCallFailure, "BAD_LOGITS", "expected 2 logits per token, got %d", len(row))
		}
		diffs[i] = float64(row[1] - row[0])
	}
	return diffs, nil
}
