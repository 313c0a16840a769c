package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, ProviderGemini, config.Provider)
	assert.Equal(t, "gemini-2.5-flash-lite", config.GetModel(TierLite))
	assert.Equal(t, "gemini-2.5-flash", config.GetModel(TierStandard))
	assert.Equal(t, "gemini-2.5-pro", config.GetModel(TierAdvanced))
}

func TestDefaultConfigFor(t *testing.T) {
	assert.Equal(t, ProviderOpenAI, DefaultConfigFor(ProviderOpenAI).Provider)
	assert.Equal(t, "gpt-4o-mini", DefaultConfigFor(ProviderOpenAI).GetModel(TierStandard))
	assert.Equal(t, ProviderGemini, DefaultConfigFor("").Provider)
}

func TestParseProvider(t *testing.T) {
	p, err := ParseProvider(" OpenAI ")
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, p)

	p, err = ParseProvider("")
	require.NoError(t, err)
	assert.Equal(t, ProviderGemini, p)

	_, err = ParseProvider("watson")
	assert.Error(t, err)
}

func TestGetModel_Fallback(t *testing.T) {
	config := &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite: "fallback-model",
		},
	}

	// Unknown tier falls back to standard, then lite
	assert.Equal(t, "fallback-model", config.GetModel("unknown"))
	assert.Equal(t, "", (&Config{Models: map[ModelTier]string{}}).GetModel(TierAdvanced))
}

func TestWithModel(t *testing.T) {
	config := DefaultOpenAIConfig()
	config.BaseURL = "http://localhost:8080/v1"
	newConfig := config.WithModel(TierStandard, "custom-model")

	assert.Equal(t, "gpt-4o-mini", config.GetModel(TierStandard))
	assert.Equal(t, "custom-model", newConfig.GetModel(TierStandard))
	assert.Equal(t, "gpt-4o", newConfig.GetModel(TierAdvanced))
	assert.Equal(t, config.BaseURL, newConfig.BaseURL)
}

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient(t.Context(), DefaultOpenAIConfig(), "")
	assert.Error(t, err)
	_, err = NewClient(t.Context(), &Config{Provider: "watson"}, "key")
	assert.Error(t, err)

	c, err := NewClient(t.Context(), DefaultOpenAIConfig(), "sk-test")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", c.GetModel(TierAdvanced))
	assert.NoError(t, c.Close())
}
