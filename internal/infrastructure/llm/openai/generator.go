package openai

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/sani-e-zehra/book-rag/internal/core/domain"
)

// Generator produces single-turn chat completions with bounded output and
// low temperature.
type Generator struct {
	client *Client
}

func NewGenerator(client *Client) *Generator {
	return &Generator{client: client}
}

func (g *Generator) Complete(ctx context.Context, prompt string) (string, error) {
	if !g.client.Configured() {
		return "", domain.WrapError(domain.ErrNotConfigured, "generate answer", errMissingAPIKey)
	}

	var resp openai.ChatCompletionResponse
	err := g.client.execute(ctx, "openai.generate", func(ctx context.Context) error {
		var callErr error
		resp, callErr = g.client.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: g.client.genModel,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
			MaxTokens:   g.client.maxTokens,
			Temperature: g.client.temperature,
		})
		return callErr
	})
	if err != nil {
		return "", wrapTemporaryIfNeeded("generate answer", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
