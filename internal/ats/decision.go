package ats

import (
	"context"
	"fmt"
	"log"

	"github.com/jonathan/hiring-tracker/internal/db"
	"github.com/jonathan/hiring-tracker/internal/notify"
	"github.com/jonathan/hiring-tracker/internal/types"
	"golang.org/x/sync/errgroup"
)

// Decide records a final hire or reject decision on an application. A hire
// publishes CandidateHired every time it is submitted, including repeats.
func (s *Service) Decide(ctx context.Context, actor Actor, req *types.DecisionRequest) (*db.Application, error) {
	if err := requireCoordinator(actor); err != nil {
		return nil, err
	}
	if err := types.Validator().Struct(req); err != nil {
		return nil, validationError(err)
	}
	key, err := ParseApplicationKey(req.JobID, req.CandidateID, req.AppliedAt)
	if err != nil {
		return nil, err
	}
	decision, err := types.ParseApplicationStatus(req.Decision)
	if err != nil || (decision != types.ApplicationHired && decision != types.ApplicationRejected) {
		return nil, &ErrValidation{Field: "decision", Message: "must be hired or rejected"}
	}

	app, err := s.loadApplication(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := s.setStatus(ctx, key, decision); err != nil {
		return nil, err
	}
	app.Status = decision

	if decision == types.ApplicationHired {
		s.announceHire(ctx, app)
	}
	return app, nil
}

// announceHire loads the candidate and job concurrently and publishes
// CandidateHired. Lookup failures are logged; the decision stands regardless.
func (s *Service) announceHire(ctx context.Context, app *db.Application) {
	var candidate *db.User
	var job *db.Job

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		candidate, err = s.store.GetUser(gctx, app.CandidateID)
		if err != nil {
			return fmt.Errorf("candidate: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		job, err = s.store.GetJob(gctx, app.JobID)
		if err != nil {
			return fmt.Errorf("job: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		log.Printf("[ats] hire of %s for job %s recorded but offer not sent: %v", app.CandidateID, app.JobID, err)
		return
	}
	if candidate == nil || job == nil {
		log.Printf("[ats] hire of %s for job %s recorded but candidate or job no longer exists", app.CandidateID, app.JobID)
		return
	}

	s.events.Publish(notify.CandidateHired{
		Candidate: notify.Recipient{ID: candidate.ID, Name: candidate.Name, Email: candidate.Email},
		JobID:     job.ID,
		JobTitle:  job.Title,
	})
}
