package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/schema"
)

const systemMessage = "You are a financial analyst assistant with access to real-time market data " +
	"and a financial knowledge base. Provide accurate, helpful analysis based on the provided " +
	"context and data."

// OpenAIGenerator wraps an OpenAI-compatible chat model as the text
// generation capability. Every call carries a timeout and is retried at
// most once; the query path degrades gracefully when Generate fails.
type OpenAIGenerator struct {
	model   *openai.ChatModel
	timeout time.Duration
}

type GeneratorConfig struct {
	BaseURL   string
	APIKey    string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// NewOpenAIGenerator builds the chat model client. A missing API key
// yields a generator that reports unavailable instead of an error, so
// the platform still runs with degraded answers.
func NewOpenAIGenerator(ctx context.Context, cfg GeneratorConfig) (*OpenAIGenerator, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	g := &OpenAIGenerator{timeout: cfg.Timeout}
	if cfg.APIKey == "" {
		return g, nil
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	model, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL:   cfg.BaseURL,
		APIKey:    cfg.APIKey,
		Model:     cfg.Model,
		MaxTokens: &maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("chat model: %w", err)
	}
	g.model = model
	return g, nil
}

func (g *OpenAIGenerator) Available() bool { return g.model != nil }

func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.model == nil {
		return "", fmt.Errorf("chat model not configured")
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		out, err := g.generateOnce(ctx, prompt)
		if err == nil {
			return out, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("generate after retry: %w", lastErr)
}

func (g *OpenAIGenerator) generateOnce(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	msg, err := g.model.Generate(ctx, []*schema.Message{
		schema.SystemMessage(systemMessage),
		schema.UserMessage(prompt),
	})
	if err != nil {
		return "", err
	}
	return msg.Content, nil
}
