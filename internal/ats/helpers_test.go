package ats_test

import (
	"context"
	"testing"
	"time"

	"github.com/jonathan/hiring-tracker/internal/ats"
	"github.com/jonathan/hiring-tracker/internal/ats/atstest"
	"github.com/jonathan/hiring-tracker/internal/db"
	"github.com/jonathan/hiring-tracker/internal/types"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store  *atstest.Store
	events *atstest.Recorder
	svc    *ats.Service
	now    time.Time

	recruiter   ats.Actor
	coordinator ats.Actor
	admin       ats.Actor
	candidate   ats.Actor
}

func newFixture(t *testing.T, opts ...ats.Option) *fixture {
	t.Helper()
	f := &fixture{
		store:  atstest.NewStore(),
		events: &atstest.Recorder{},
		now:    time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time {
		f.now = f.now.Add(time.Second)
		return f.now
	}
	f.svc = ats.NewService(f.store, f.events, append([]ats.Option{ats.WithClock(clock)}, opts...)...)

	f.recruiter = actorFor(f.store.AddUser("Rita Recruiter", "rita@example.com", types.RoleRecruiter))
	f.coordinator = actorFor(f.store.AddUser("Cole Coordinator", "cole@example.com", types.RoleCoordinator))
	f.admin = actorFor(f.store.AddUser("Ada Admin", "ada@example.com", types.RoleAdmin))
	f.candidate = actorFor(f.store.AddUser("Cara Candidate", "cara@example.com", types.RoleCandidate))
	return f
}

func actorFor(u db.User) ats.Actor {
	return ats.Actor{ID: u.ID, Role: u.Role}
}

func (f *fixture) newCandidate(name, email string) ats.Actor {
	return actorFor(f.store.AddUser(name, email, types.RoleCandidate))
}

// openJob creates a published job owned by the fixture recruiter.
func (f *fixture) openJob(t *testing.T, questions ...types.ScreeningQuestion) *db.Job {
	t.Helper()
	job, err := f.svc.CreateJob(context.Background(), f.recruiter, &types.CreateJobRequest{
		Title:              "Backend Engineer",
		Description:        "<p>Build the <b>hiring</b> platform.</p>",
		Requirements:       "<ul><li>Go</li><li>PostgreSQL</li></ul>",
		ScreeningQuestions: questions,
		Status:             "OPEN",
		Visible:            true,
	})
	require.NoError(t, err)
	return job
}

func (f *fixture) apply(t *testing.T, who ats.Actor, job *db.Job) *db.Application {
	t.Helper()
	app, err := f.svc.Apply(context.Background(), who, &types.ApplyRequest{JobID: job.ID.String()})
	require.NoError(t, err)
	return app
}

func (f *fixture) updateRound(t *testing.T, app *db.Application, name string, order int, status string, score *int) *db.Round {
	t.Helper()
	round, err := f.svc.UpdateRound(context.Background(), f.recruiter, &types.UpdateRoundRequest{
		JobID:       app.JobID.String(),
		CandidateID: app.CandidateID.String(),
		Name:        name,
		Order:       order,
		Status:      status,
		Score:       score,
	})
	require.NoError(t, err)
	return round
}

func (f *fixture) reload(t *testing.T, app *db.Application) *db.Application {
	t.Helper()
	got, err := f.store.GetApplication(context.Background(), app.ApplicationKey)
	require.NoError(t, err)
	require.NotNil(t, got)
	return got
}

func intPtr(v int) *int { return &v }
