package openai

import (
	"context"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"

	"github.com/sani-e-zehra/book-rag/internal/infrastructure/resilience"
)

// Client wraps an OpenAI-compatible API for embeddings and completions.
// A missing API key is a configuration error surfaced at construction: the
// client stays usable but every call degrades per the component contracts
// (empty vectors for batches, ErrNotConfigured for single calls).
type Client struct {
	api        *openai.Client
	genModel   string
	embedModel string

	maxTokens   int
	temperature float32

	executor *resilience.Executor
	logger   *slog.Logger
}

type Config struct {
	APIKey      string
	BaseURL     string
	GenModel    string
	EmbedModel  string
	MaxTokens   int
	Temperature float64

	Executor *resilience.Executor
	Logger   *slog.Logger
}

func New(cfg Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		genModel:    cfg.GenModel,
		embedModel:  cfg.EmbedModel,
		maxTokens:   cfg.MaxTokens,
		temperature: float32(cfg.Temperature),
		executor:    cfg.Executor,
		logger:      logger,
	}

	if cfg.APIKey == "" {
		logger.Warn("openai api key not configured, embedding and generation are disabled")
		return c
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	c.api = openai.NewClientWithConfig(clientCfg)
	return c
}

// Configured reports whether a credential was supplied at construction.
func (c *Client) Configured() bool {
	return c.api != nil
}

func (c *Client) execute(ctx context.Context, operation string, fn func(context.Context) error) error {
	if c.executor == nil {
		return fn(ctx)
	}
	return c.executor.Execute(ctx, operation, fn, classifyOpenAIError)
}
