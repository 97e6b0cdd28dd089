package llm

import (
	"context"
	"fmt"
	"strings"
)

// Effort is the reasoning-effort dial for reasoning-capable models. Backends
// that do not support it ignore the value.
type Effort string

const (
	EffortNone   Effort = ""
	EffortLow    Effort = "low"
	EffortMedium Effort = "medium"
	EffortHigh   Effort = "high"
)

const (
	ProviderOpenAI    = "openai"
	ProviderGroq      = "groq"
	ProviderAnthropic = "anthropic"
)

type Config struct {
	Provider        string
	Model           string
	APIKey          string
	MaxTokens       int64
	ReasoningEffort Effort
}

type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
	ModelName() string
}

// New builds the configured provider. Selection is explicit configuration
// passed in at construction time; there is no process-wide default to mutate.
func New(cfg Config) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llm: API key not set for provider %q", cfg.Provider)
	}

	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 8192
	}

	switch strings.ToLower(cfg.Provider) {
	case ProviderOpenAI:
		if cfg.Model == "" {
			cfg.Model = "gpt-4o"
		}
		return NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.MaxTokens), nil
	case ProviderGroq:
		if cfg.Model == "" {
			cfg.Model = "llama-3.3-70b-versatile"
		}
		return NewGroqClient(cfg.APIKey, cfg.Model, cfg.MaxTokens, cfg.ReasoningEffort), nil
	case ProviderAnthropic:
		if cfg.Model == "" {
			cfg.Model = "claude-haiku-4-5"
		}
		return NewAnthropicClient(cfg.APIKey, cfg.Model, cfg.MaxTokens), nil
	default:
		return nil, fmt.Errorf("llm: unknown provider %q (supported: openai, groq, anthropic)", cfg.Provider)
	}
}
