package llm

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/generative-ai-go/genai"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelFor(t *testing.T) {
	name, err := modelFor(DefaultGeminiConfig(), Request{Tier: TierLite})
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-flash-lite", name)

	_, err = modelFor(&Config{Models: map[ModelTier]string{}}, Request{Tier: TierStandard})
	assert.ErrorIs(t, err, ErrNoModel)
}

func newChatServer(t *testing.T, finish openai.FinishReason, got *openai.ChatCompletionRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(got))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{{
				Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: "```json\n{\"score\": 50}\n```"},
				FinishReason: finish,
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIClient_GenerateJSON(t *testing.T) {
	var got openai.ChatCompletionRequest
	srv := newChatServer(t, openai.FinishReasonStop, &got)

	config := DefaultOpenAIConfig()
	config.BaseURL = srv.URL
	c, err := NewOpenAIClient(config, "sk-test")
	require.NoError(t, err)

	out, err := c.GenerateJSON(t.Context(), Request{System: "rubric", Prompt: "cv", Tier: TierStandard})
	require.NoError(t, err)
	assert.Equal(t, `{"score": 50}`, out)

	assert.Equal(t, "gpt-4o-mini", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, got.Messages[0].Role)
	assert.Equal(t, "rubric", got.Messages[0].Content)
	assert.Equal(t, "cv", got.Messages[1].Content)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONObject, got.ResponseFormat.Type)
}

func TestOpenAIClient_ContentFilter(t *testing.T) {
	var got openai.ChatCompletionRequest
	srv := newChatServer(t, openai.FinishReasonContentFilter, &got)

	config := DefaultOpenAIConfig()
	config.BaseURL = srv.URL
	c, err := NewOpenAIClient(config, "sk-test")
	require.NoError(t, err)

	_, err = c.GenerateJSON(t.Context(), Request{Prompt: "cv", Tier: TierStandard})
	assert.ErrorContains(t, err, "content filter")
	assert.Len(t, got.Messages, 1)
}

func TestGeminiText(t *testing.T) {
	text := func(parts ...genai.Part) *genai.Content { return &genai.Content{Parts: parts} }

	tests := []struct {
		name    string
		resp    *genai.GenerateContentResponse
		want    string
		wantErr string
	}{
		{"nil", nil, "", "empty response"},
		{
			"blocked prompt",
			&genai.GenerateContentResponse{PromptFeedback: &genai.PromptFeedback{BlockReason: genai.BlockReasonSafety}},
			"", "prompt blocked",
		},
		{
			"joined parts",
			&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
				Content:      text(genai.Text(`{"score":`), genai.Text(` 7}`)),
				FinishReason: genai.FinishReasonStop,
			}}},
			`{"score": 7}`, "",
		},
		{
			"safety stop",
			&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
				Content:      text(genai.Text(`{"sco`)),
				FinishReason: genai.FinishReasonSafety,
			}}},
			"", "response stopped",
		},
		{
			"no text parts",
			&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: text()}}},
			"", "no text",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := geminiText(tt.resp)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
