package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"documents-chunker/pkg/errors"
)

// fakeModel replays a canned reply and records the call options it received.
type fakeModel struct {
	reply   string
	noReply bool
	err     error
	opts    llms.CallOptions
}

func (f *fakeModel) GenerateContent(_ context.Context, _ []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	for _, opt := range options {
		opt(&f.opts)
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.noReply {
		return &llms.ContentResponse{}, nil
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: f.reply}},
	}, nil
}

func (f *fakeModel) Call(_ context.Context, _ string, _ ...llms.CallOption) (string, error) {
	return f.reply, f.err
}

func TestChatComplete(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the first choice", func(t *testing.T) {
		model := &fakeModel{reply: "Answer: 2"}
		reply, err := NewChat(model).Complete(ctx, "system", "user")
		require.NoError(t, err)
		assert.Equal(t, "Answer: 2", reply)
	})

	t.Run("requests zero temperature", func(t *testing.T) {
		// A sentinel shows the option was actually applied, not left unset.
		model := &fakeModel{reply: "ok", opts: llms.CallOptions{Temperature: 0.7}}
		_, err := NewChat(model).Complete(ctx, "system", "user")
		require.NoError(t, err)
		assert.Zero(t, model.opts.Temperature)
	})

	t.Run("empty choice list fails", func(t *testing.T) {
		model := &fakeModel{noReply: true}
		_, err := NewChat(model).Complete(ctx, "system", "user")
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ExternalCallFailure))
	})

	t.Run("model failure surfaces as external call failure", func(t *testing.T) {
		model := &fakeModel{err: assert.AnError}
		_, err := NewChat(model).Complete(ctx, "system", "user")
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ExternalCallFailure))
	})
}
