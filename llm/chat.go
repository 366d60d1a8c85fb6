// Package llm adapts langchaingo chat and embedding clients to the narrow
// interfaces the chunking strategies consume.
package llm

import (
	"context"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"documents-chunker/pkg/errors"
)

// Chat adapts a langchaingo model to the chunking.ChatModel interface.
type Chat struct {
	model llms.Model
}

// NewChat wraps an existing langchaingo model.
func NewChat(model llms.Model) *Chat {
	return &Chat{model: model}
}

// NewOpenAIChat builds a chat adapter backed by the OpenAI API. Credentials
// come from the environment (OPENAI_API_KEY).
func NewOpenAIChat(model string) (*Chat, error) {
	var opts []openai.Option
	if model != "" {
		opts = append(opts, openai.WithModel(model))
	}
	client, err := openai.New(opts...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ExternalCallFailure, "CHAT_CLIENT_FAILED", "failed to create OpenAI chat client")
	}
	return NewChat(client), nil
}

// Complete sends one system+user exchange and returns the reply text.
// Temperature 0 keeps boundary answers deterministic.
func (c *Chat) Complete(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userMessage),
	}

	resp, err := c.model.GenerateContent(ctx, messages, llms.WithTemperature(0))
	if err != nil {
		return "", errors.Wrap(err, errors.ExternalCallFailure, "CHAT_FAILED", "chat completion failed")
	}
	if len(resp.Choices) == 0 {
		return "", errors.New(errors.ExternalCallFailure, "CHAT_EMPTY", "chat completion returned no choices")
	}
	return resp.Choices[0].Content, nil
}
