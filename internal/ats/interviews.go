package ats

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/hiring-tracker/internal/db"
	"github.com/jonathan/hiring-tracker/internal/notify"
	"github.com/jonathan/hiring-tracker/internal/types"
)

// ScheduleInterview books a new SCHEDULED round for an application and notifies
// the candidate.
func (s *Service) ScheduleInterview(ctx context.Context, actor Actor, req *types.ScheduleInterviewRequest) (*db.Round, error) {
	if err := requireCoordinator(actor); err != nil {
		return nil, err
	}
	if err := types.Validator().Struct(req); err != nil {
		return nil, validationError(err)
	}
	jobID, candidateID, err := parsePair(req.JobID, req.CandidateID)
	if err != nil {
		return nil, err
	}
	interviewer, err := parseOptionalID("interviewer_id", req.InterviewerID)
	if err != nil {
		return nil, err
	}

	app, err := s.findApplication(ctx, jobID, candidateID)
	if err != nil {
		return nil, err
	}

	order, err := s.store.AllocateRoundOrder(ctx, jobID, candidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate round order: %w", err)
	}
	now := s.timestamp()
	at := req.ScheduledAt.UTC()
	round := &db.Round{
		JobID:         jobID,
		CandidateID:   candidateID,
		Order:         order,
		Name:          strings.TrimSpace(req.Name),
		Status:        types.RoundScheduled,
		ScheduledAt:   &at,
		MeetingLink:   req.MeetingLink,
		Note:          req.Note,
		InterviewerID: interviewer,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.UpsertRound(ctx, round); err != nil {
		return nil, fmt.Errorf("failed to save round: %w", err)
	}
	if err := s.recomputeSummary(ctx, app, round.Status); err != nil {
		return nil, err
	}

	s.publishScheduled(ctx, app, round)
	return round, nil
}

// UpdateSchedule changes the time, link, note or interviewer of a scheduled round
// and notifies the candidate.
func (s *Service) UpdateSchedule(ctx context.Context, actor Actor, req *types.UpdateScheduleRequest) (*db.Round, error) {
	if err := requireCoordinator(actor); err != nil {
		return nil, err
	}
	if err := types.Validator().Struct(req); err != nil {
		return nil, validationError(err)
	}
	jobID, candidateID, err := parsePair(req.JobID, req.CandidateID)
	if err != nil {
		return nil, err
	}

	app, err := s.findApplication(ctx, jobID, candidateID)
	if err != nil {
		return nil, err
	}
	round, err := s.loadRound(ctx, jobID, candidateID, req.Order)
	if err != nil {
		return nil, err
	}

	if req.ScheduledAt != nil {
		at := req.ScheduledAt.UTC()
		round.ScheduledAt = &at
	}
	if req.MeetingLink != nil {
		round.MeetingLink = *req.MeetingLink
	}
	if req.Note != nil {
		round.Note = *req.Note
	}
	if req.InterviewerID != nil {
		interviewer, err := parseOptionalID("interviewer_id", *req.InterviewerID)
		if err != nil {
			return nil, err
		}
		round.InterviewerID = interviewer
	}
	if round.ScheduledAt == nil {
		return nil, &ErrValidation{Field: "scheduled_at", Message: "is required for an unscheduled round"}
	}
	round.Status = types.RoundScheduled
	round.UpdatedAt = s.timestamp()

	if err := s.store.UpsertRound(ctx, round); err != nil {
		return nil, fmt.Errorf("failed to save round: %w", err)
	}
	if err := s.recomputeSummary(ctx, app, round.Status); err != nil {
		return nil, err
	}

	s.publishScheduled(ctx, app, round)
	return round, nil
}

// CancelSchedule clears a round's schedule and returns it to PENDING.
func (s *Service) CancelSchedule(ctx context.Context, actor Actor, jobID, candidateID uuid.UUID, order int) (*db.Round, error) {
	if err := requireCoordinator(actor); err != nil {
		return nil, err
	}
	app, err := s.findApplication(ctx, jobID, candidateID)
	if err != nil {
		return nil, err
	}
	round, err := s.loadRound(ctx, jobID, candidateID, order)
	if err != nil {
		return nil, err
	}

	round.ScheduledAt = nil
	round.MeetingLink = ""
	round.Note = ""
	round.InterviewerID = nil
	round.Status = types.RoundPending
	round.UpdatedAt = s.timestamp()

	if err := s.store.UpsertRound(ctx, round); err != nil {
		return nil, fmt.Errorf("failed to save round: %w", err)
	}
	if err := s.recomputeSummary(ctx, app, round.Status); err != nil {
		return nil, err
	}
	return round, nil
}

func (s *Service) loadRound(ctx context.Context, jobID, candidateID uuid.UUID, order int) (*db.Round, error) {
	if order < 1 {
		return nil, &ErrValidation{Field: "order", Message: "must be at least 1"}
	}
	round, err := s.store.GetRound(ctx, jobID, candidateID, order)
	if err != nil {
		return nil, fmt.Errorf("failed to get round: %w", err)
	}
	if round == nil {
		return nil, &ErrNotFound{Resource: "round", Key: fmt.Sprintf("%s/%s/%d", jobID, candidateID, order)}
	}
	return round, nil
}

func (s *Service) publishScheduled(ctx context.Context, app *db.Application, round *db.Round) {
	s.events.Publish(notify.InterviewScheduled{
		Candidate:   notify.Recipient{ID: app.CandidateID, Name: app.CandidateName, Email: app.CandidateEmail},
		JobID:       app.JobID,
		JobTitle:    s.jobTitle(ctx, app.JobID),
		RoundName:   round.Name,
		ScheduledAt: *round.ScheduledAt,
		MeetingLink: round.MeetingLink,
		Note:        round.Note,
	})
}

func parseOptionalID(field, value string) (*uuid.UUID, error) {
	if value == "" {
		return nil, nil
	}
	id, err := parseID(field, value)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
