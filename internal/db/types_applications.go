package db

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/hiring-tracker/internal/types"
)

// ApplicationKey identifies an application across every projection.
type ApplicationKey struct {
	JobID       uuid.UUID `json:"job_id"`
	CandidateID uuid.UUID `json:"candidate_id"`
	AppliedAt   time.Time `json:"applied_at"`
}

// Application is a row of applications_by_job, the source row for every other
// application projection.
type Application struct {
	ApplicationKey
	Status         types.ApplicationStatus `json:"status"`
	Answers        map[string]bool         `json:"answers,omitempty"`
	Feedback       *FeedbackSummary        `json:"feedback,omitempty"`
	AIMatch        json.RawMessage         `json:"ai_match,omitempty"`
	CandidateName  string                  `json:"candidate_name"`
	CandidateEmail string                  `json:"candidate_email"`
	UpdatedAt      time.Time               `json:"updated_at"`
}

// FeedbackSummary is the rollup of an application's rounds stored on the application row.
type FeedbackSummary struct {
	Rounds         []RoundSummary    `json:"rounds"`
	FinalStatus    types.RoundStatus `json:"final_status,omitempty"`
	LastFeedbackAt time.Time         `json:"last_feedback_at"`
	Note           string            `json:"note,omitempty"`
}

// RoundSummary is one entry of FeedbackSummary.Rounds.
type RoundSummary struct {
	Order  int               `json:"order"`
	Name   string            `json:"name"`
	Status types.RoundStatus `json:"status"`
	Score  *int              `json:"score,omitempty"`
}

// CandidateApplication is a row of applications_by_candidate.
type CandidateApplication struct {
	CandidateID uuid.UUID               `json:"candidate_id"`
	JobID       uuid.UUID               `json:"job_id"`
	AppliedAt   time.Time               `json:"applied_at"`
	JobTitle    string                  `json:"job_title"`
	Status      types.ApplicationStatus `json:"status"`
}

// RecentApplication is a row of applications_recent, the recruiter activity feed.
type RecentApplication struct {
	RecruiterID   uuid.UUID               `json:"recruiter_id"`
	AppliedAt     time.Time               `json:"applied_at"`
	JobID         uuid.UUID               `json:"job_id"`
	CandidateID   uuid.UUID               `json:"candidate_id"`
	JobTitle      string                  `json:"job_title"`
	CandidateName string                  `json:"candidate_name"`
	Status        types.ApplicationStatus `json:"status"`
}

// NewApplication carries everything written when a candidate applies:
// the source row, the denormalized fields for the other projections, and round 1.
type NewApplication struct {
	Application Application
	RecruiterID uuid.UUID
	JobTitle    string
	FirstRound  Round
}
