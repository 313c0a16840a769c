package ats_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonathan/hiring-tracker/internal/ats"
	"github.com/jonathan/hiring-tracker/internal/db"
	"github.com/jonathan/hiring-tracker/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeScorer struct {
	calls int
	last  ats.MatchInput
	err   error
}

func (s *fakeScorer) ScoreMatch(_ context.Context, in ats.MatchInput) (*types.MatchResult, error) {
	s.calls++
	s.last = in
	if s.err != nil {
		return nil, s.err
	}
	return &types.MatchResult{
		Score:     82,
		Summary:   "Strong Go background",
		Strengths: []string{"Go"},
		Gaps:      []string{"Kubernetes"},
		Model:     "test-model",
	}, nil
}

func staticCV(text string) ats.Option {
	return ats.WithCVReader(func(string) (string, error) { return text, nil })
}

func withCV(t *testing.T, f *fixture, who ats.Actor) {
	t.Helper()
	require.NoError(t, f.store.UpdateUserCV(context.Background(), who.ID, "uploads/cv/"+who.ID.String()+".pdf", time.Now()))
}

func TestMatch_ScoresAndCaches(t *testing.T) {
	scorer := &fakeScorer{}
	f := newFixture(t, ats.WithMatchScorer(scorer), staticCV("Five years of Go and PostgreSQL."))
	ctx := context.Background()
	job := f.openJob(t)
	app := f.apply(t, f.candidate, job)
	withCV(t, f, f.candidate)

	got, err := f.svc.Match(ctx, f.recruiter, app.ApplicationKey)
	require.NoError(t, err)
	assert.Equal(t, 82, got.Score)
	assert.False(t, got.ScoredAt.IsZero())

	assert.Equal(t, "Backend Engineer", scorer.last.JobTitle)
	assert.Contains(t, scorer.last.JobText, "## Description")
	assert.Contains(t, scorer.last.JobText, "Build the hiring platform.")
	assert.Contains(t, scorer.last.JobText, "- Go")
	assert.NotContains(t, scorer.last.JobText, "<p>")
	assert.Equal(t, "Five years of Go and PostgreSQL.", scorer.last.CVText)

	again, err := f.svc.Match(ctx, f.admin, app.ApplicationKey)
	require.NoError(t, err)
	assert.Equal(t, 1, scorer.calls)
	assert.Equal(t, got.Summary, again.Summary)
	assert.True(t, got.ScoredAt.Equal(again.ScoredAt))
	assert.NotEmpty(t, f.reload(t, app).AIMatch)
}

func TestMatch_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("no cv", func(t *testing.T) {
		f := newFixture(t, ats.WithMatchScorer(&fakeScorer{}), staticCV("text"))
		app := f.apply(t, f.candidate, f.openJob(t))
		_, err := f.svc.Match(ctx, f.recruiter, app.ApplicationKey)
		var conflict *ats.ErrConflict
		assert.ErrorAs(t, err, &conflict)
	})

	t.Run("no scorer configured", func(t *testing.T) {
		f := newFixture(t, staticCV("text"))
		app := f.apply(t, f.candidate, f.openJob(t))
		withCV(t, f, f.candidate)
		_, err := f.svc.Match(ctx, f.recruiter, app.ApplicationKey)
		var unavailable *ats.ErrUnavailable
		assert.ErrorAs(t, err, &unavailable)
	})

	t.Run("empty cv text", func(t *testing.T) {
		f := newFixture(t, ats.WithMatchScorer(&fakeScorer{}), staticCV("  \n "))
		app := f.apply(t, f.candidate, f.openJob(t))
		withCV(t, f, f.candidate)
		_, err := f.svc.Match(ctx, f.recruiter, app.ApplicationKey)
		var conflict *ats.ErrConflict
		assert.ErrorAs(t, err, &conflict)
	})

	t.Run("scorer failure is not cached", func(t *testing.T) {
		scorer := &fakeScorer{err: errors.New("quota exceeded")}
		f := newFixture(t, ats.WithMatchScorer(scorer), staticCV("text"))
		app := f.apply(t, f.candidate, f.openJob(t))
		withCV(t, f, f.candidate)
		_, err := f.svc.Match(ctx, f.recruiter, app.ApplicationKey)
		require.Error(t, err)
		assert.Empty(t, f.reload(t, app).AIMatch)
	})

	t.Run("candidates cannot score", func(t *testing.T) {
		f := newFixture(t, ats.WithMatchScorer(&fakeScorer{}), staticCV("text"))
		app := f.apply(t, f.candidate, f.openJob(t))
		_, err := f.svc.Match(ctx, f.candidate, app.ApplicationKey)
		var forbidden *ats.ErrForbidden
		assert.ErrorAs(t, err, &forbidden)
	})

	t.Run("unknown application", func(t *testing.T) {
		f := newFixture(t, ats.WithMatchScorer(&fakeScorer{}), staticCV("text"))
		app := f.apply(t, f.candidate, f.openJob(t))
		key := db.ApplicationKey{JobID: app.JobID, CandidateID: app.CandidateID, AppliedAt: app.AppliedAt.Add(time.Minute)}
		_, err := f.svc.Match(ctx, f.recruiter, key)
		var notFound *ats.ErrNotFound
		assert.ErrorAs(t, err, &notFound)
	})
}
