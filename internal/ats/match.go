package ats

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/jonathan/hiring-tracker/internal/db"
	"github.com/jonathan/hiring-tracker/internal/ingestion"
	"github.com/jonathan/hiring-tracker/internal/types"
)

// MatchInput is the text a MatchScorer compares.
type MatchInput struct {
	JobTitle string
	JobText  string
	CVText   string
}

// MatchScorer rates how well a CV fits a job.
type MatchScorer interface {
	ScoreMatch(ctx context.Context, in MatchInput) (*types.MatchResult, error)
}

var defaultCVReader = ingestion.PDFText

// Match returns the AI match assessment for an application, scoring and caching
// it on first request. Staff only.
func (s *Service) Match(ctx context.Context, actor Actor, key db.ApplicationKey) (*types.MatchResult, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	app, err := s.loadApplication(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(app.AIMatch) > 0 {
		var cached types.MatchResult
		if err := json.Unmarshal(app.AIMatch, &cached); err == nil {
			return &cached, nil
		}
		log.Printf("[ats] discarding unreadable cached match for %s/%s", key.JobID, key.CandidateID)
	}

	candidate, err := s.store.GetUser(ctx, key.CandidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to get candidate: %w", err)
	}
	if candidate == nil {
		return nil, &ErrNotFound{Resource: "candidate", Key: key.CandidateID.String()}
	}
	if candidate.CVPath == "" {
		return nil, &ErrConflict{Message: "candidate has not uploaded a CV"}
	}
	if s.scorer == nil {
		return nil, &ErrUnavailable{Feature: "match scoring"}
	}
	job, err := s.loadJob(ctx, key.JobID)
	if err != nil {
		return nil, err
	}

	cvText, err := s.cvText(candidate.CVPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read CV: %w", err)
	}
	if strings.TrimSpace(cvText) == "" {
		return nil, &ErrConflict{Message: "candidate CV contains no extractable text"}
	}

	result, err := s.scorer.ScoreMatch(ctx, MatchInput{
		JobTitle: job.Title,
		JobText:  jobText(job),
		CVText:   cvText,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to score match: %w", err)
	}
	result.ScoredAt = s.timestamp()

	blob, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to encode match: %w", err)
	}
	if err := s.store.UpdateApplicationMatch(ctx, key, blob); err != nil {
		return nil, s.mapApplicationWriteError(err)
	}
	return result, nil
}

// jobText flattens a job's rich-text sections for prompting.
func jobText(job *db.Job) string {
	var b strings.Builder
	for _, section := range []struct{ heading, html string }{
		{"Description", job.Description},
		{"Requirements", job.Requirements},
		{"Benefits", job.Benefits},
	} {
		text := ingestion.HTMLToText(section.html)
		if text == "" {
			continue
		}
		b.WriteString("## " + section.heading + "\n")
		b.WriteString(text)
		b.WriteString("\n\n")
	}
	return strings.TrimSpace(b.String())
}
