package ats_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/hiring-tracker/internal/ats"
	"github.com/jonathan/hiring-tracker/internal/notify"
	"github.com/jonathan/hiring-tracker/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateRound_CVScreeningPassed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.openJob(t)
	app := f.apply(t, f.candidate, job)

	f.updateRound(t, app, ats.RoundCVScreening, 1, "passed", nil)

	rounds, err := f.store.ListRounds(ctx, job.ID, f.candidate.ID)
	require.NoError(t, err)
	require.Len(t, rounds, 2)
	assert.Equal(t, types.RoundPassed, rounds[0].Status)
	assert.Equal(t, 2, rounds[1].Order)
	assert.Equal(t, ats.RoundTechnicalInterview, rounds[1].Name)
	assert.Equal(t, types.RoundScheduled, rounds[1].Status)

	stored := f.reload(t, app)
	assert.Equal(t, types.ApplicationShortlisted, stored.Status)
	require.NotNil(t, stored.Feedback)
	assert.Equal(t, types.RoundPassed, stored.Feedback.FinalStatus)

	events := f.events.Events()
	require.Len(t, events, 1)
	passed, ok := events[0].(notify.RoundPassed)
	require.True(t, ok)
	assert.Equal(t, "cara@example.com", passed.Candidate.Email)
	assert.Equal(t, job.Title, passed.JobTitle)
	assert.Equal(t, ats.RoundTechnicalInterview, passed.NextRound)

	t.Run("second pass does not duplicate the interview", func(t *testing.T) {
		f.updateRound(t, app, ats.RoundCVScreening, 1, "PASSED", nil)
		rounds, err := f.store.ListRounds(ctx, job.ID, f.candidate.ID)
		require.NoError(t, err)
		assert.Len(t, rounds, 2)
	})
}

func TestUpdateRound_InterviewFollowsHighestOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.openJob(t)
	app := f.apply(t, f.candidate, job)

	manual := f.updateRound(t, app, "Portfolio Review", 5, "SCHEDULED", nil)
	f.updateRound(t, app, ats.RoundCVScreening, 1, "PASSED", nil)

	rounds, err := f.store.ListRounds(ctx, job.ID, f.candidate.ID)
	require.NoError(t, err)
	require.Len(t, rounds, 3)
	assert.Equal(t, []int{1, 5, 6}, []int{rounds[0].Order, rounds[1].Order, rounds[2].Order})
	assert.Equal(t, "Portfolio Review", rounds[1].Name)
	assert.Equal(t, manual.Status, rounds[1].Status)
	assert.Equal(t, ats.RoundTechnicalInterview, rounds[2].Name)
	assert.Equal(t, types.RoundScheduled, rounds[2].Status)
}

func TestUpdateRound_CVScreeningRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.openJob(t)
	app := f.apply(t, f.candidate, job)

	f.updateRound(t, app, ats.RoundCVScreening, 1, "REJECTED", nil)

	rounds, err := f.store.ListRounds(ctx, job.ID, f.candidate.ID)
	require.NoError(t, err)
	assert.Len(t, rounds, 1)
	assert.Equal(t, types.ApplicationRejected, f.reload(t, app).Status)
	assert.Empty(t, f.events.Events())
}

func TestUpdateRound_OtherRoundNoCascade(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.openJob(t)
	app := f.apply(t, f.candidate, job)

	feedback := "Solid design answers"
	_, err := f.svc.UpdateRound(ctx, f.recruiter, &types.UpdateRoundRequest{
		JobID:       job.ID.String(),
		CandidateID: f.candidate.ID.String(),
		Name:        "Culture Fit",
		Order:       2,
		Status:      "PASSED",
		Score:       intPtr(75),
		Feedback:    &feedback,
	})
	require.NoError(t, err)

	stored := f.reload(t, app)
	assert.Equal(t, types.ApplicationPending, stored.Status)
	require.Len(t, stored.Feedback.Rounds, 2)
	assert.Equal(t, 75, *stored.Feedback.Rounds[1].Score)
	assert.Empty(t, f.events.Events())

	round, err := f.store.GetRound(ctx, job.ID, f.candidate.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, feedback, round.Feedback)
}

func TestUpdateRound_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.openJob(t)

	_, err := f.svc.UpdateRound(ctx, f.recruiter, &types.UpdateRoundRequest{
		JobID:       job.ID.String(),
		CandidateID: uuid.NewString(),
		Name:        ats.RoundCVScreening,
		Order:       1,
		Status:      "PASSED",
	})
	var notFound *ats.ErrNotFound
	assert.ErrorAs(t, err, &notFound)

	_, err = f.svc.UpdateRound(ctx, f.candidate, &types.UpdateRoundRequest{
		JobID:       job.ID.String(),
		CandidateID: f.candidate.ID.String(),
		Name:        ats.RoundCVScreening,
		Order:       1,
		Status:      "PASSED",
	})
	var forbidden *ats.ErrForbidden
	assert.ErrorAs(t, err, &forbidden)

	_, err = f.svc.UpdateRound(ctx, f.recruiter, &types.UpdateRoundRequest{
		JobID:       job.ID.String(),
		CandidateID: f.candidate.ID.String(),
		Name:        ats.RoundCVScreening,
		Order:       0,
		Status:      "PASSED",
	})
	var verr *ats.ErrValidation
	assert.ErrorAs(t, err, &verr)
}

func TestAddRound_AllocatesSuccessiveOrders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.openJob(t)
	f.apply(t, f.candidate, job)

	var orders []int
	for _, name := range []string{"Pairing Session", "System Design", "Team Lunch"} {
		round, err := f.svc.AddRound(ctx, f.recruiter, &types.CreateRoundRequest{
			JobID:       job.ID.String(),
			CandidateID: f.candidate.ID.String(),
			Name:        name,
		})
		require.NoError(t, err)
		assert.Equal(t, types.RoundScheduled, round.Status)
		orders = append(orders, round.Order)
	}
	assert.Equal(t, []int{2, 3, 4}, orders)
}

func TestDeleteRound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.openJob(t)
	app := f.apply(t, f.candidate, job)
	f.updateRound(t, app, ats.RoundCVScreening, 1, "PASSED", nil)

	err := f.svc.DeleteRound(ctx, f.recruiter, job.ID, f.candidate.ID, 2)
	var forbidden *ats.ErrForbidden
	require.ErrorAs(t, err, &forbidden)

	require.NoError(t, f.svc.DeleteRound(ctx, f.admin, job.ID, f.candidate.ID, 2))
	stored := f.reload(t, app)
	require.Len(t, stored.Feedback.Rounds, 1)
	assert.Equal(t, types.RoundPassed, stored.Feedback.FinalStatus)

	err = f.svc.DeleteRound(ctx, f.admin, job.ID, f.candidate.ID, 2)
	var notFound *ats.ErrNotFound
	assert.ErrorAs(t, err, &notFound)

	// Deleted orders are not handed out again.
	round, err := f.svc.AddRound(ctx, f.recruiter, &types.CreateRoundRequest{
		JobID:       job.ID.String(),
		CandidateID: f.candidate.ID.String(),
		Name:        "Rescheduled Interview",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, round.Order)
}
