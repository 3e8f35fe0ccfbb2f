package openai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/sani-e-zehra/book-rag/internal/core/domain"
)

// Embedder converts text into fixed-dimension vectors with a single batched
// API call per invocation.
type Embedder struct {
	client *Client
}

func NewEmbedder(client *Client) *Embedder {
	return &Embedder{client: client}
}

// EmbedBatch embeds all texts in one request. It never returns an error:
// any remote failure degrades to a length-matched slice of empty vectors so
// callers can detect and skip failed positions.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) [][]float32 {
	out := make([][]float32, len(texts))
	if len(texts) == 0 {
		return out
	}
	if !e.client.Configured() {
		return out
	}

	var resp openai.EmbeddingResponse
	err := e.client.execute(ctx, "openai.embed_batch", func(ctx context.Context) error {
		var callErr error
		resp, callErr = e.client.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input:          texts,
			Model:          openai.EmbeddingModel(e.client.embedModel),
			EncodingFormat: openai.EmbeddingEncodingFormatFloat,
		})
		return callErr
	})
	if err != nil {
		e.client.logger.Error("embedding batch failed", "count", len(texts), "error", err)
		return out
	}

	for _, item := range resp.Data {
		if item.Index >= 0 && item.Index < len(out) {
			out[item.Index] = item.Embedding
		}
	}
	return out
}

// EmbedQuery embeds a single text, typically a user question.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if !e.client.Configured() {
		return nil, domain.WrapError(domain.ErrNotConfigured, "embed query", errMissingAPIKey)
	}

	var resp openai.EmbeddingResponse
	err := e.client.execute(ctx, "openai.embed_query", func(ctx context.Context) error {
		var callErr error
		resp, callErr = e.client.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input:          []string{text},
			Model:          openai.EmbeddingModel(e.client.embedModel),
			EncodingFormat: openai.EmbeddingEncodingFormatFloat,
		})
		return callErr
	})
	if err != nil {
		return nil, wrapTemporaryIfNeeded("embed query", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("empty embedding response")
	}
	return resp.Data[0].Embedding, nil
}
