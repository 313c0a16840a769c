package ats

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/hiring-tracker/internal/db"
	"github.com/jonathan/hiring-tracker/internal/notify"
	"github.com/jonathan/hiring-tracker/internal/types"
)

// ListRounds returns a pair's rounds in order. Candidates may read their own.
func (s *Service) ListRounds(ctx context.Context, actor Actor, jobID, candidateID uuid.UUID) ([]db.Round, error) {
	if err := canReadCandidate(actor, candidateID); err != nil {
		return nil, err
	}
	if _, err := s.findApplication(ctx, jobID, candidateID); err != nil {
		return nil, err
	}
	rounds, err := s.store.ListRounds(ctx, jobID, candidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds: %w", err)
	}
	return rounds, nil
}

// AddRound appends a round at the next free order.
func (s *Service) AddRound(ctx context.Context, actor Actor, req *types.CreateRoundRequest) (*db.Round, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if err := types.Validator().Struct(req); err != nil {
		return nil, validationError(err)
	}
	jobID, candidateID, err := parsePair(req.JobID, req.CandidateID)
	if err != nil {
		return nil, err
	}
	status := types.RoundScheduled
	if req.Status != "" {
		status, _ = types.ParseRoundStatus(req.Status)
	}

	app, err := s.findApplication(ctx, jobID, candidateID)
	if err != nil {
		return nil, err
	}

	round, err := s.appendRound(ctx, jobID, candidateID, strings.TrimSpace(req.Name), status)
	if err != nil {
		return nil, err
	}
	if err := s.recomputeSummary(ctx, app, status); err != nil {
		return nil, err
	}
	return round, nil
}

// UpdateRound writes a round outcome and runs the progression rules:
//
//   - CV Screening PASSED queues a Technical Interview (unless one exists),
//     shortlists the application and notifies the candidate.
//   - CV Screening REJECTED rejects the application.
//   - Any other round only updates the round.
//
// The feedback summary is rebuilt afterwards with the written status as final_status.
func (s *Service) UpdateRound(ctx context.Context, actor Actor, req *types.UpdateRoundRequest) (*db.Round, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if err := types.Validator().Struct(req); err != nil {
		return nil, validationError(err)
	}
	jobID, candidateID, err := parsePair(req.JobID, req.CandidateID)
	if err != nil {
		return nil, err
	}
	status, err := types.ParseRoundStatus(req.Status)
	if err != nil {
		return nil, &ErrValidation{Field: "status", Message: err.Error()}
	}

	app, err := s.findApplication(ctx, jobID, candidateID)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.GetRound(ctx, jobID, candidateID, req.Order)
	if err != nil {
		return nil, fmt.Errorf("failed to get round: %w", err)
	}
	now := s.timestamp()
	round := db.Round{CreatedAt: now}
	if existing != nil {
		round = *existing
	}
	round.JobID = jobID
	round.CandidateID = candidateID
	round.Order = req.Order
	round.Name = strings.TrimSpace(req.Name)
	round.Status = status
	round.Score = req.Score
	if req.Feedback != nil {
		round.Feedback = *req.Feedback
	}
	round.UpdatedAt = now

	if err := s.store.UpsertRound(ctx, &round); err != nil {
		return nil, fmt.Errorf("failed to save round: %w", err)
	}

	var passed *notify.RoundPassed
	if strings.EqualFold(round.Name, RoundCVScreening) {
		switch status {
		case types.RoundPassed:
			next, err := s.ensureTechnicalInterview(ctx, jobID, candidateID)
			if err != nil {
				return nil, err
			}
			if err := s.setStatus(ctx, app.ApplicationKey, types.ApplicationShortlisted); err != nil {
				return nil, err
			}
			passed = &notify.RoundPassed{
				Candidate: notify.Recipient{ID: candidateID, Name: app.CandidateName, Email: app.CandidateEmail},
				JobID:     jobID,
				RoundName: round.Name,
				NextRound: next.Name,
			}
		case types.RoundRejected:
			if err := s.setStatus(ctx, app.ApplicationKey, types.ApplicationRejected); err != nil {
				return nil, err
			}
		}
	}

	if err := s.recomputeSummary(ctx, app, status); err != nil {
		return nil, err
	}
	if passed != nil {
		passed.JobTitle = s.jobTitle(ctx, jobID)
		s.events.Publish(*passed)
	}
	return &round, nil
}

// ensureTechnicalInterview returns the pair's Technical Interview round, creating
// it at the next order when it does not exist yet.
func (s *Service) ensureTechnicalInterview(ctx context.Context, jobID, candidateID uuid.UUID) (*db.Round, error) {
	rounds, err := s.store.ListRounds(ctx, jobID, candidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds: %w", err)
	}
	for i := range rounds {
		if strings.EqualFold(rounds[i].Name, RoundTechnicalInterview) {
			return &rounds[i], nil
		}
	}
	return s.appendRound(ctx, jobID, candidateID, RoundTechnicalInterview, types.RoundScheduled)
}

// DeleteRound removes a round and rebuilds the summary from what remains. Admin only.
func (s *Service) DeleteRound(ctx context.Context, actor Actor, jobID, candidateID uuid.UUID, order int) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if order < 1 {
		return &ErrValidation{Field: "order", Message: "must be at least 1"}
	}
	app, err := s.findApplication(ctx, jobID, candidateID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteRound(ctx, jobID, candidateID, order); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return &ErrNotFound{Resource: "round", Key: fmt.Sprintf("%s/%s/%d", jobID, candidateID, order)}
		}
		return fmt.Errorf("failed to delete round: %w", err)
	}

	rounds, err := s.store.ListRounds(ctx, jobID, candidateID)
	if err != nil {
		return fmt.Errorf("failed to list rounds: %w", err)
	}
	var final types.RoundStatus
	if len(rounds) > 0 {
		final = rounds[len(rounds)-1].Status
	}
	return s.writeSummary(ctx, app, rounds, final)
}

// appendRound allocates the next order for the pair and stores a new round there.
func (s *Service) appendRound(ctx context.Context, jobID, candidateID uuid.UUID, name string, status types.RoundStatus) (*db.Round, error) {
	order, err := s.store.AllocateRoundOrder(ctx, jobID, candidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate round order: %w", err)
	}
	now := s.timestamp()
	round := &db.Round{
		JobID:       jobID,
		CandidateID: candidateID,
		Order:       order,
		Name:        name,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.UpsertRound(ctx, round); err != nil {
		return nil, fmt.Errorf("failed to save round: %w", err)
	}
	return round, nil
}

// recomputeSummary rebuilds the application's feedback summary from its rounds.
func (s *Service) recomputeSummary(ctx context.Context, app *db.Application, final types.RoundStatus) error {
	rounds, err := s.store.ListRounds(ctx, app.JobID, app.CandidateID)
	if err != nil {
		return fmt.Errorf("failed to list rounds: %w", err)
	}
	return s.writeSummary(ctx, app, rounds, final)
}

func (s *Service) writeSummary(ctx context.Context, app *db.Application, rounds []db.Round, final types.RoundStatus) error {
	summary := buildSummary(app.Feedback, rounds, final, s.timestamp())
	if err := s.store.UpdateApplicationFeedback(ctx, app.ApplicationKey, summary); err != nil {
		return s.mapApplicationWriteError(err)
	}
	app.Feedback = summary
	return nil
}

// buildSummary rolls rounds up into a feedback summary, keeping any recruiter note
// from prev.
func buildSummary(prev *db.FeedbackSummary, rounds []db.Round, final types.RoundStatus, at time.Time) *db.FeedbackSummary {
	summary := &db.FeedbackSummary{
		Rounds:         make([]db.RoundSummary, 0, len(rounds)),
		FinalStatus:    final,
		LastFeedbackAt: at,
	}
	if prev != nil {
		summary.Note = prev.Note
	}
	for _, r := range rounds {
		summary.Rounds = append(summary.Rounds, db.RoundSummary{
			Order:  r.Order,
			Name:   r.Name,
			Status: r.Status,
			Score:  r.Score,
		})
	}
	return summary
}

// jobTitle looks up a job title for notifications. Failures are logged and yield "".
func (s *Service) jobTitle(ctx context.Context, jobID uuid.UUID) string {
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		log.Printf("[ats] failed to load job %s for notification: %v", jobID, err)
		return ""
	}
	if job == nil {
		return ""
	}
	return job.Title
}

func parsePair(jobID, candidateID string) (uuid.UUID, uuid.UUID, error) {
	job, err := parseID("job_id", jobID)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	candidate, err := parseID("candidate_id", candidateID)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return job, candidate, nil
}
