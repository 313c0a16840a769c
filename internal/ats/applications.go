package ats

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jonathan/hiring-tracker/internal/db"
	"github.com/jonathan/hiring-tracker/internal/types"
)

// Round names that drive the automatic progression.
const (
	RoundCVScreening        = "CV Screening"
	RoundTechnicalInterview = "Technical Interview"
)

// KnockoutFeedback is recorded on round 1 when a knockout question fails.
const KnockoutFeedback = "Knockout screening question failed"

// Recent feed page sizes.
const (
	DefaultRecentLimit = 20
	MaxRecentLimit     = 100
)

// Apply records the calling candidate's application to an open job, writing
// every application projection and round 1 in a single store call.
//
// A failed knockout question still creates the application, already rejected.
func (s *Service) Apply(ctx context.Context, actor Actor, req *types.ApplyRequest) (*db.Application, error) {
	if actor.ID == uuid.Nil {
		return nil, &ErrUnauthorized{}
	}
	if actor.Role != types.RoleCandidate {
		return nil, &ErrForbidden{Message: "only candidates can apply"}
	}
	if err := types.Validator().Struct(req); err != nil {
		return nil, validationError(err)
	}
	jobID, err := parseID("job_id", req.JobID)
	if err != nil {
		return nil, err
	}

	job, err := s.loadJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !IsLive(job, s.now().UTC()) {
		return nil, &ErrValidation{Field: "job_id", Message: "job is not accepting applications"}
	}

	existing, err := s.store.FindApplication(ctx, jobID, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing application: %w", err)
	}
	if existing != nil {
		return nil, &ErrConflict{Message: "candidate has already applied to this job"}
	}

	knockedOut, err := screen(job.ScreeningQuestions, req.Answers)
	if err != nil {
		return nil, err
	}

	candidate, err := s.store.GetUser(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get candidate: %w", err)
	}
	if candidate == nil {
		return nil, &ErrUnauthorized{}
	}

	now := s.timestamp()
	in := &db.NewApplication{
		Application: db.Application{
			ApplicationKey: db.ApplicationKey{JobID: jobID, CandidateID: actor.ID, AppliedAt: now},
			Status:         types.ApplicationPending,
			Answers:        req.Answers,
			CandidateName:  candidate.Name,
			CandidateEmail: candidate.Email,
			UpdatedAt:      now,
		},
		RecruiterID: job.RecruiterID,
		JobTitle:    job.Title,
		FirstRound: db.Round{
			JobID:       jobID,
			CandidateID: actor.ID,
			Order:       1,
			Name:        RoundCVScreening,
			Status:      types.RoundScheduled,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}
	if knockedOut {
		in.Application.Status = types.ApplicationRejected
		in.FirstRound.Status = types.RoundRejected
		in.FirstRound.Feedback = KnockoutFeedback
		in.Application.Feedback = buildSummary(nil, []db.Round{in.FirstRound}, types.RoundRejected, now)
	}

	if err := s.store.CreateApplication(ctx, in); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, &ErrConflict{Message: "candidate has already applied to this job"}
		}
		return nil, fmt.Errorf("failed to create application: %w", err)
	}
	return &in.Application, nil
}

// screen checks answers against a job's screening questions and reports whether a
// knockout question failed. Every question must be answered; unknown ids are rejected.
func screen(questions []types.ScreeningQuestion, answers map[string]bool) (bool, error) {
	known := make(map[string]bool, len(questions))
	knockedOut := false
	for _, q := range questions {
		known[q.ID] = true
		answer, ok := answers[q.ID]
		if !ok {
			return false, &ErrValidation{Field: "answers." + q.ID, Message: "is required"}
		}
		if q.Knockout && answer != q.PreferredAnswer {
			knockedOut = true
		}
	}
	ids := make([]string, 0, len(answers))
	for id := range answers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if !known[id] {
			return false, &ErrValidation{Field: "answers." + id, Message: "unknown screening question"}
		}
	}
	return knockedOut, nil
}

// GetApplication returns one application. Candidates may only read their own.
func (s *Service) GetApplication(ctx context.Context, actor Actor, key db.ApplicationKey) (*db.Application, error) {
	if err := canReadCandidate(actor, key.CandidateID); err != nil {
		return nil, err
	}
	return s.loadApplication(ctx, key)
}

// ListApplicationsByJob lists every application to a job. Staff only.
func (s *Service) ListApplicationsByJob(ctx context.Context, actor Actor, jobID uuid.UUID) ([]db.Application, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	apps, err := s.store.ListApplicationsByJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return apps, nil
}

// ListApplicationsByCandidate lists a candidate's applications. Candidates may
// only list their own.
func (s *Service) ListApplicationsByCandidate(ctx context.Context, actor Actor, candidateID uuid.UUID) ([]db.CandidateApplication, error) {
	if err := canReadCandidate(actor, candidateID); err != nil {
		return nil, err
	}
	apps, err := s.store.ListApplicationsByCandidate(ctx, candidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return apps, nil
}

// RecentApplications returns the caller's recent-activity feed.
func (s *Service) RecentApplications(ctx context.Context, actor Actor, limit int) ([]db.RecentApplication, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}
	feed, err := s.store.ListRecentApplications(ctx, actor.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent applications: %w", err)
	}
	return feed, nil
}

// UpdateApplication changes an application's status and/or recruiter note.
func (s *Service) UpdateApplication(ctx context.Context, actor Actor, req *types.UpdateApplicationRequest) (*db.Application, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if err := types.Validator().Struct(req); err != nil {
		return nil, validationError(err)
	}
	key, err := ParseApplicationKey(req.JobID, req.CandidateID, req.AppliedAt)
	if err != nil {
		return nil, err
	}
	app, err := s.loadApplication(ctx, key)
	if err != nil {
		return nil, err
	}

	if req.Status != nil {
		status, err := types.ParseApplicationStatus(*req.Status)
		if err != nil {
			return nil, &ErrValidation{Field: "status", Message: err.Error()}
		}
		if err := s.setStatus(ctx, key, status); err != nil {
			return nil, err
		}
	}
	if req.Feedback != nil {
		summary := app.Feedback
		if summary == nil {
			summary = &db.FeedbackSummary{Rounds: []db.RoundSummary{}}
		}
		summary.Note = *req.Feedback
		summary.LastFeedbackAt = s.timestamp()
		if err := s.store.UpdateApplicationFeedback(ctx, key, summary); err != nil {
			return nil, s.mapApplicationWriteError(err)
		}
	}
	return s.loadApplication(ctx, key)
}

// DeleteApplication removes an application, its projections and its rounds.
// Candidates may withdraw their own; staff may delete any.
func (s *Service) DeleteApplication(ctx context.Context, actor Actor, key db.ApplicationKey) error {
	if err := canReadCandidate(actor, key.CandidateID); err != nil {
		return err
	}
	if _, err := s.loadApplication(ctx, key); err != nil {
		return err
	}
	if err := s.store.DeleteApplication(ctx, key); err != nil {
		return s.mapApplicationWriteError(err)
	}
	return nil
}

func canReadCandidate(actor Actor, candidateID uuid.UUID) error {
	if actor.ID == uuid.Nil {
		return &ErrUnauthorized{}
	}
	if actor.Role.IsStaff() || actor.ID == candidateID {
		return nil
	}
	return &ErrForbidden{Message: "candidates may only access their own applications"}
}

func (s *Service) loadApplication(ctx context.Context, key db.ApplicationKey) (*db.Application, error) {
	app, err := s.store.GetApplication(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	if app == nil {
		return nil, &ErrNotFound{Resource: "application", Key: key.JobID.String() + "/" + key.CandidateID.String()}
	}
	return app, nil
}

// findApplication resolves the application of a (job, candidate) pair.
func (s *Service) findApplication(ctx context.Context, jobID, candidateID uuid.UUID) (*db.Application, error) {
	app, err := s.store.FindApplication(ctx, jobID, candidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to find application: %w", err)
	}
	if app == nil {
		return nil, &ErrNotFound{Resource: "application", Key: jobID.String() + "/" + candidateID.String()}
	}
	return app, nil
}

func (s *Service) setStatus(ctx context.Context, key db.ApplicationKey, status types.ApplicationStatus) error {
	if err := s.store.UpdateApplicationStatus(ctx, key, status); err != nil {
		return s.mapApplicationWriteError(err)
	}
	return nil
}

func (s *Service) mapApplicationWriteError(err error) error {
	if errors.Is(err, db.ErrNotFound) {
		return &ErrNotFound{Resource: "application"}
	}
	return fmt.Errorf("failed to save application: %w", err)
}
