package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/enfq/app/internal/config"
)

var (
	ErrEmptyResponse  = errors.New("empty response from model")
	ErrContentBlocked = errors.New("content blocked by safety filters")
)

// PromptKind tells a client what shape of answer the prompt expects.
type PromptKind int

const (
	KindQuestion PromptKind = iota
	KindSummary
)

func (k PromptKind) String() string {
	if k == KindSummary {
		return "summary"
	}
	return "question"
}

// Prompt is one request to a language model.
type Prompt struct {
	Kind   PromptKind
	System string
	User   string
	// Alternatives is the number of alternatives a question must carry.
	Alternatives int
}

// LLMResponse holds the raw response content and token usage.
type LLMResponse struct {
	Content      string
	PromptTokens int
	OutputTokens int
}

// LLMClient is the interface every model backend satisfies.
type LLMClient interface {
	Generate(ctx context.Context, p Prompt) (*LLMResponse, error)
}

// NewClient builds the backend named by cfg.Provider.
func NewClient(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (LLMClient, error) {
	switch cfg.Provider {
	case "gemini":
		return NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.Model)
	case "anthropic":
		return NewAnthropicClient(cfg.AnthropicAPIKey, cfg.Model), nil
	case "cli":
		return NewCLIClient(cfg.CLIPath), nil
	case "mock":
		logger.Warn("no model API key configured, using offline question bank")
		return NewMockClient(), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
