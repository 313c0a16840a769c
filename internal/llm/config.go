// Package llm provides LLM provider configuration and client abstractions used
// for CV-to-job match scoring.
package llm

import (
	"fmt"
	"maps"
	"strings"
)

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for cheap, short tasks
	TierLite ModelTier = "lite"
	// TierStandard is for structured output such as match scoring
	TierStandard ModelTier = "standard"
	// TierAdvanced is for long or hard comparisons
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

// Supported providers
const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
)

// ParseProvider normalizes a provider name. Empty selects Gemini.
func ParseProvider(s string) (Provider, error) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return ProviderGemini, nil
	case ProviderGemini, ProviderOpenAI:
		return p, nil
	default:
		return "", fmt.Errorf("unknown llm provider %q", s)
	}
}

// Config maps tiers to provider model names.
type Config struct {
	Provider Provider
	Models   map[ModelTier]string
	// BaseURL overrides the OpenAI endpoint (Azure, local gateways). Ignored by Gemini.
	BaseURL string
}

var defaultModels = map[Provider]map[ModelTier]string{
	ProviderGemini: {
		TierLite:     "gemini-2.5-flash-lite",
		TierStandard: "gemini-2.5-flash",
		TierAdvanced: "gemini-2.5-pro",
	},
	ProviderOpenAI: {
		TierLite:     "gpt-4o-mini",
		TierStandard: "gpt-4o-mini",
		TierAdvanced: "gpt-4o",
	},
}

// DefaultConfig is DefaultGeminiConfig.
func DefaultConfig() *Config { return DefaultGeminiConfig() }

func DefaultGeminiConfig() *Config { return DefaultConfigFor(ProviderGemini) }

func DefaultOpenAIConfig() *Config { return DefaultConfigFor(ProviderOpenAI) }

// DefaultConfigFor returns the stock models for p. Unknown providers get Gemini's.
func DefaultConfigFor(p Provider) *Config {
	models, ok := defaultModels[p]
	if !ok {
		p, models = ProviderGemini, defaultModels[ProviderGemini]
	}
	return &Config{Provider: p, Models: maps.Clone(models)}
}

// GetModel returns the model for tier, falling back to the standard and then
// the lite model. It returns "" when none is configured.
func (c *Config) GetModel(tier ModelTier) string {
	for _, t := range []ModelTier{tier, TierStandard, TierLite} {
		if model, ok := c.Models[t]; ok {
			return model
		}
	}
	return ""
}

// WithModel returns a copy of c with tier mapped to model.
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	out := *c
	out.Models = maps.Clone(c.Models)
	if out.Models == nil {
		out.Models = make(map[ModelTier]string, 1)
	}
	out.Models[tier] = model
	return &out
}
