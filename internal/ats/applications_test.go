package ats_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/hiring-tracker/internal/ats"
	"github.com/jonathan/hiring-tracker/internal/ats/atstest"
	"github.com/jonathan/hiring-tracker/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply_WritesEveryProjection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.openJob(t)

	app := f.apply(t, f.candidate, job)
	assert.Equal(t, types.ApplicationPending, app.Status)
	assert.Equal(t, "Cara Candidate", app.CandidateName)

	assert.Equal(t, atstest.Counts{Applications: 1, ByCandidate: 1, ByPair: 1, Recent: 1, Rounds: 1}, f.store.Counts())

	rounds, err := f.svc.ListRounds(ctx, f.recruiter, job.ID, f.candidate.ID)
	require.NoError(t, err)
	require.Len(t, rounds, 1)
	assert.Equal(t, 1, rounds[0].Order)
	assert.Equal(t, ats.RoundCVScreening, rounds[0].Name)
	assert.Equal(t, types.RoundScheduled, rounds[0].Status)

	mine, err := f.svc.ListApplicationsByCandidate(ctx, f.candidate, f.candidate.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, job.Title, mine[0].JobTitle)

	feed, err := f.svc.RecentApplications(ctx, f.recruiter, 0)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, f.candidate.ID, feed[0].CandidateID)

	assert.Empty(t, f.events.Events())
}

func TestApply_DuplicateIsConflict(t *testing.T) {
	f := newFixture(t)
	job := f.openJob(t)
	f.apply(t, f.candidate, job)
	before := f.store.Counts()

	_, err := f.svc.Apply(context.Background(), f.candidate, &types.ApplyRequest{JobID: job.ID.String()})
	var conflict *ats.ErrConflict
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, before, f.store.Counts())
}

func TestApply_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.openJob(t)

	draft, err := f.svc.CreateJob(ctx, f.recruiter, &types.CreateJobRequest{Title: "Draft role"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		actor   ats.Actor
		jobID   string
		wantErr any
	}{
		{"missing job id", f.candidate, "", &ats.ErrValidation{}},
		{"malformed job id", f.candidate, "not-a-uuid", &ats.ErrValidation{}},
		{"unknown job", f.candidate, uuid.NewString(), &ats.ErrNotFound{}},
		{"job not open", f.candidate, draft.ID.String(), &ats.ErrValidation{}},
		{"staff cannot apply", f.recruiter, job.ID.String(), &ats.ErrForbidden{}},
		{"anonymous", ats.Actor{}, job.ID.String(), &ats.ErrUnauthorized{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Apply(ctx, tt.actor, &types.ApplyRequest{JobID: tt.jobID})
			require.Error(t, err)
			switch tt.wantErr.(type) {
			case *ats.ErrValidation:
				var target *ats.ErrValidation
				assert.ErrorAs(t, err, &target)
			case *ats.ErrNotFound:
				var target *ats.ErrNotFound
				assert.ErrorAs(t, err, &target)
			case *ats.ErrForbidden:
				var target *ats.ErrForbidden
				assert.ErrorAs(t, err, &target)
			case *ats.ErrUnauthorized:
				var target *ats.ErrUnauthorized
				assert.ErrorAs(t, err, &target)
			}
		})
	}
	assert.Zero(t, f.store.Counts().Applications)
}

func TestApply_ScheduledJob(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	publishAt := f.now.Add(24 * time.Hour)
	job, err := f.svc.CreateJob(ctx, f.recruiter, &types.CreateJobRequest{
		Title:     "Scheduled role",
		Status:    "OPEN",
		Visible:   true,
		PublishAt: &publishAt,
	})
	require.NoError(t, err)

	_, err = f.svc.Apply(ctx, f.candidate, &types.ApplyRequest{JobID: job.ID.String()})
	var verr *ats.ErrValidation
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "job_id", verr.Field)

	_, err = f.svc.GetJob(ctx, f.candidate, job.ID)
	var notFound *ats.ErrNotFound
	assert.ErrorAs(t, err, &notFound)
	_, err = f.svc.GetJob(ctx, f.recruiter, job.ID)
	require.NoError(t, err)

	f.now = publishAt
	_, err = f.svc.GetJob(ctx, f.candidate, job.ID)
	require.NoError(t, err)
	f.apply(t, f.candidate, job)
	assert.Equal(t, 1, f.store.Counts().Applications)
}

func TestApply_ScreeningQuestions(t *testing.T) {
	questions := []types.ScreeningQuestion{
		{ID: "work_auth", Label: "Are you authorised to work in the EU?", PreferredAnswer: true, Knockout: true},
		{ID: "relocate", Label: "Willing to relocate?", PreferredAnswer: true},
	}

	t.Run("knockout failure rejects immediately", func(t *testing.T) {
		f := newFixture(t)
		job := f.openJob(t, questions...)

		app, err := f.svc.Apply(context.Background(), f.candidate, &types.ApplyRequest{
			JobID:   job.ID.String(),
			Answers: map[string]bool{"work_auth": false, "relocate": true},
		})
		require.NoError(t, err)
		assert.Equal(t, types.ApplicationRejected, app.Status)

		rounds, err := f.store.ListRounds(context.Background(), job.ID, f.candidate.ID)
		require.NoError(t, err)
		require.Len(t, rounds, 1)
		assert.Equal(t, types.RoundRejected, rounds[0].Status)
		assert.Equal(t, ats.KnockoutFeedback, rounds[0].Feedback)

		stored := f.reload(t, app)
		require.NotNil(t, stored.Feedback)
		assert.Equal(t, types.RoundRejected, stored.Feedback.FinalStatus)
		assert.Empty(t, f.events.Events())
	})

	t.Run("non-knockout mismatch still pending", func(t *testing.T) {
		f := newFixture(t)
		job := f.openJob(t, questions...)

		app, err := f.svc.Apply(context.Background(), f.candidate, &types.ApplyRequest{
			JobID:   job.ID.String(),
			Answers: map[string]bool{"work_auth": true, "relocate": false},
		})
		require.NoError(t, err)
		assert.Equal(t, types.ApplicationPending, app.Status)
	})

	t.Run("unanswered question", func(t *testing.T) {
		f := newFixture(t)
		job := f.openJob(t, questions...)

		_, err := f.svc.Apply(context.Background(), f.candidate, &types.ApplyRequest{
			JobID:   job.ID.String(),
			Answers: map[string]bool{"work_auth": true},
		})
		var verr *ats.ErrValidation
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "answers.relocate", verr.Field)
	})

	t.Run("unknown question", func(t *testing.T) {
		f := newFixture(t)
		job := f.openJob(t, questions...)

		_, err := f.svc.Apply(context.Background(), f.candidate, &types.ApplyRequest{
			JobID:   job.ID.String(),
			Answers: map[string]bool{"work_auth": true, "relocate": true, "salary": true},
		})
		var verr *ats.ErrValidation
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "answers.salary", verr.Field)
	})
}

func TestApply_StoreFailure(t *testing.T) {
	f := newFixture(t)
	job := f.openJob(t)
	f.store.FailOn("CreateApplication", errors.New("connection reset"))

	_, err := f.svc.Apply(context.Background(), f.candidate, &types.ApplyRequest{JobID: job.ID.String()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestListApplications_Permissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.openJob(t)
	f.apply(t, f.candidate, job)
	other := f.newCandidate("Otto Other", "otto@example.com")

	_, err := f.svc.ListApplicationsByJob(ctx, f.candidate, job.ID)
	var forbidden *ats.ErrForbidden
	assert.ErrorAs(t, err, &forbidden)

	_, err = f.svc.ListApplicationsByCandidate(ctx, other, f.candidate.ID)
	assert.ErrorAs(t, err, &forbidden)

	apps, err := f.svc.ListApplicationsByJob(ctx, f.recruiter, job.ID)
	require.NoError(t, err)
	assert.Len(t, apps, 1)

	apps2, err := f.svc.ListApplicationsByCandidate(ctx, f.admin, f.candidate.ID)
	require.NoError(t, err)
	assert.Len(t, apps2, 1)
}

func TestUpdateApplication(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.openJob(t)
	app := f.apply(t, f.candidate, job)

	status := "Shortlist"
	note := "Strong systems background"
	got, err := f.svc.UpdateApplication(ctx, f.recruiter, &types.UpdateApplicationRequest{
		ApplicationKeyRequest: types.ApplicationKeyRequest{
			JobID:       app.JobID.String(),
			CandidateID: app.CandidateID.String(),
			AppliedAt:   app.AppliedAt,
		},
		Status:   &status,
		Feedback: &note,
	})
	require.NoError(t, err)
	assert.Equal(t, types.ApplicationShortlisted, got.Status)
	require.NotNil(t, got.Feedback)
	assert.Equal(t, note, got.Feedback.Note)

	// The note survives a round-driven summary rebuild.
	f.updateRound(t, app, "Portfolio Review", 2, "PASSED", nil)
	assert.Equal(t, note, f.reload(t, app).Feedback.Note)

	bad := "archived"
	_, err = f.svc.UpdateApplication(ctx, f.recruiter, &types.UpdateApplicationRequest{
		ApplicationKeyRequest: types.ApplicationKeyRequest{
			JobID:       app.JobID.String(),
			CandidateID: app.CandidateID.String(),
			AppliedAt:   app.AppliedAt,
		},
		Status: &bad,
	})
	var verr *ats.ErrValidation
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "status", verr.Field)
}

func TestDeleteApplication_Cascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.openJob(t)
	app := f.apply(t, f.candidate, job)
	f.updateRound(t, app, ats.RoundCVScreening, 1, "PASSED", nil)
	require.Equal(t, 2, f.store.Counts().Rounds)

	other := f.newCandidate("Otto Other", "otto@example.com")
	err := f.svc.DeleteApplication(ctx, other, app.ApplicationKey)
	var forbidden *ats.ErrForbidden
	require.ErrorAs(t, err, &forbidden)

	require.NoError(t, f.svc.DeleteApplication(ctx, f.candidate, app.ApplicationKey))
	assert.Equal(t, atstest.Counts{}, f.store.Counts())

	err = f.svc.DeleteApplication(ctx, f.recruiter, app.ApplicationKey)
	var notFound *ats.ErrNotFound
	assert.ErrorAs(t, err, &notFound)

	// The pair may apply again once the old application is gone.
	again := f.apply(t, f.candidate, job)
	rounds, err := f.store.ListRounds(ctx, job.ID, again.CandidateID)
	require.NoError(t, err)
	require.Len(t, rounds, 1)
	assert.Equal(t, 1, rounds[0].Order)
}
