package llm

import (
	"context"
	"errors"
	"fmt"
)

// Request is a single JSON-producing completion.
type Request struct {
	// System carries the instructions; untrusted text belongs in Prompt.
	System string
	Prompt string
	Tier   ModelTier
}

// ErrNoModel is returned when the config has no model for the requested tier.
var ErrNoModel = errors.New("no model configured for tier")

// Client is implemented by each provider.
type Client interface {
	GenerateJSON(ctx context.Context, req Request) (string, error)
	GetModel(tier ModelTier) string
	Close() error
}

// NewClient builds the client for config.Provider. A nil config means Gemini defaults.
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%s: API key is required", config.Provider)
	}
	switch config.Provider {
	case ProviderOpenAI:
		return NewOpenAIClient(config, apiKey)
	case ProviderGemini, "":
		return NewGeminiClient(ctx, config, apiKey)
	}
	return nil, fmt.Errorf("unsupported llm provider %q", config.Provider)
}

// modelFor resolves the provider model for req, failing with ErrNoModel.
func modelFor(config *Config, req Request) (string, error) {
	name := config.GetModel(req.Tier)
	if name == "" {
		return "", fmt.Errorf("%w %s", ErrNoModel, req.Tier)
	}
	return name, nil
}
