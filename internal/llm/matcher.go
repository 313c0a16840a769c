package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/jonathan/hiring-tracker/internal/ats"
	"github.com/jonathan/hiring-tracker/internal/prompts"
	"github.com/jonathan/hiring-tracker/internal/schemas"
	"github.com/jonathan/hiring-tracker/internal/types"
)

// maxPromptChars bounds each text section sent to the model.
const maxPromptChars = 24000

// Matcher scores CVs against jobs with an LLM. It implements ats.MatchScorer.
type Matcher struct {
	client Client
	tier   ModelTier
}

// NewMatcher returns a Matcher using the standard tier of client.
func NewMatcher(client Client) *Matcher {
	return &Matcher{client: client, tier: TierStandard}
}

// ScoreMatch implements ats.MatchScorer.
func (m *Matcher) ScoreMatch(ctx context.Context, in ats.MatchInput) (*types.MatchResult, error) {
	system, err := prompts.Get("matching.json", "score-match-system")
	if err != nil {
		return nil, err
	}
	template, err := prompts.Get("matching.json", "score-match")
	if err != nil {
		return nil, err
	}
	raw, err := m.client.GenerateJSON(ctx, Request{
		System: system,
		Prompt: prompts.Format(template, map[string]string{
			"JobTitle": in.JobTitle,
			"JobText":  truncate(in.JobText, maxPromptChars),
			"CVText":   truncate(in.CVText, maxPromptChars),
		}),
		Tier: m.tier,
	})
	if err != nil {
		return nil, err
	}
	raw = CleanJSONBlock(raw)
	if err := schemas.Validate(schemas.MatchResult, []byte(raw)); err != nil {
		return nil, fmt.Errorf("model returned an invalid match: %w", err)
	}

	var result types.MatchResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("failed to decode match: %w", err)
	}
	result.Model = m.client.GetModel(m.tier)
	return &result, nil
}

// truncate cuts s to at most n bytes on a rune boundary.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
