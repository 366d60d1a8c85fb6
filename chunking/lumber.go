package chunking

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"documents-chunker/document"
	"documents-chunker/pkg/errors"
	"documents-chunker/splitter"
	"documents-chunker/tokenizer"
)

// ChatModel answers a single system+user exchange with plain text.
type ChatModel interface {
	Complete(ctx context.Context, systemPrompt, userMessage string) (string, error)
}

const lumberSystemPrompt = `You will receive a numbered list of document passages, each prefixed with "ID <n>:".
Find the first passage whose content clearly shifts to a different topic than the passages before it.
Reply with "Answer: <n>" where <n> is that passage's ID.
If no passage starts a new topic, reply with "Answer: -1".
Reply with the answer line only.`

// lumberAnswerPattern is deliberately permissive; models wrap the ID in all
// kinds of prose.
var lumberAnswerPattern = regexp.MustCompile(`-?\d+`)

// LumberChunker accumulates elements until the budget would overflow, then
// asks a chat model where the topic shifts and commits everything before that
// point as one run.
type LumberChunker struct {
	tok    tokenizer.Tokenizer
	opts   *Options
	packer *Packer
	chat   ChatModel
	log    zerolog.Logger
}

// NewLumberChunker creates an LLM-guided chunker.
func NewLumberChunker(tok tokenizer.Tokenizer, opts *Options, split splitter.Strategy, chat ChatModel) *LumberChunker {
	return &LumberChunker{
		tok:    tok,
		opts:   opts,
		packer: NewPacker(tok, opts, split),
		chat:   chat,
		log:    zerolog.Nop(),
	}
}

// SetLogger attaches a logger; the default discards everything.
func (l *LumberChunker) SetLogger(log zerolog.Logger) { l.log = log }

// Process implements Chunker.
func (l *LumberChunker) Process(ctx context.Context, doc *document.Document) ([]Chunk, error) {
	maxTokens := l.opts.MaxTokensPerChunk()

	var chunks []Chunk
	var pending []document.Element
	pendingTokens := 0

	commit := func(elements []document.Element) error {
		if len(elements) == 0 {
			return nil
		}
		packed, err := l.packer.Process(ctx, "", elements)
		if err != nil {
			return err
		}
		chunks = append(chunks, packed...)
		return nil
	}

	stream := doc.Content()
	for el, ok := stream.Next(); ok; el, ok = stream.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		content := el.SemanticContent()
		if strings.TrimSpace(content) == "" {
			continue
		}
		elTokens := l.tok.CountTokens(content)

		// The pending transcript is resolved as soon as the next element
		// would push it past the budget.
		if len(pending) > 0 && pendingTokens+elTokens > maxTokens {
			taken, rest, err := l.resolvePending(ctx, pending)
			if err != nil {
				return nil, err
			}
			if err := commit(taken); err != nil {
				return nil, err
			}
			pending = rest
			pendingTokens = l.countElements(pending)
		}

		// An element that alone exceeds the budget goes straight to the
		// splitting path; whatever is pending is flushed first to keep order.
		if elTokens > maxTokens {
			if err := commit(pending); err != nil {
				return nil, err
			}
			pending = nil
			pendingTokens = 0
			if err := commit([]document.Element{el}); err != nil {
				return nil, err
			}
			continue
		}

		pending = append(pending, el)
		pendingTokens += elTokens
	}

	if err := commit(pending); err != nil {
		return nil, err
	}
	return stampDocument(chunks, doc.ID), nil
}

// resolvePending asks the chat model for the first ID where the topic shifts
// and splits the pending run there.
func (l *LumberChunker) resolvePending(ctx context.Context, pending []document.Element) (taken, rest []document.Element, err error) {
	transcript := l.buildTranscript(pending)
	reply, err := l.chat.Complete(ctx, lumberSystemPrompt, transcript)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ExternalCallFailure, "CHAT_FAILED", "boundary query to chat model failed")
	}

	idx := parseLumberReply(reply)
	// -1 and anything unusable both mean "take everything pending"; taking
	// nothing would stall the walk.
	if idx <= 0 || idx > len(pending) {
		idx = len(pending)
	}
	l.log.Debug().Str("reply", reply).Int("split_index", idx).Int("pending", len(pending)).Msg("boundary reply")

	return pending[:idx], pending[idx:], nil
}

func (l *LumberChunker) buildTranscript(pending []document.Element) string {
	var sb strings.Builder
	for i, el := range pending {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "ID %d: %s", i, el.SemanticContent())
	}
	return sb.String()
}

func (l *LumberChunker) countElements(elements []document.Element) int {
	total := 0
	for _, el := range elements {
		total += l.tok.CountTokens(el.SemanticContent())
	}
	return total
}

// parseLumberReply extracts the first integer in the reply, defaulting to 0
// when nothing parses.
func parseLumberReply(reply string) int {
	match := lumberAnswerPattern.FindString(reply)
	if match == "" {
		return 0
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return 0
	}
	return n
}
