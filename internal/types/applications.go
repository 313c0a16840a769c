package types

import "time"

// ApplyRequest is the body of POST /api/applications. The candidate comes from the session.
type ApplyRequest struct {
	JobID   string          `json:"job_id" validate:"required,uuid"`
	Answers map[string]bool `json:"answers,omitempty"`
}

// ApplicationKeyRequest identifies one application.
type ApplicationKeyRequest struct {
	JobID       string    `json:"job_id" validate:"required,uuid"`
	CandidateID string    `json:"candidate_id" validate:"required,uuid"`
	AppliedAt   time.Time `json:"applied_at" validate:"required"`
}

// UpdateApplicationRequest is the body of PATCH /api/applications.
type UpdateApplicationRequest struct {
	ApplicationKeyRequest
	Status   *string `json:"status,omitempty" validate:"omitempty,application_status"`
	Feedback *string `json:"feedback,omitempty" validate:"omitempty,max=10000"`
}

// DecisionRequest is the body of PATCH /api/admin/shortlist/decision.
type DecisionRequest struct {
	JobID       string    `json:"job_id" validate:"required,uuid"`
	CandidateID string    `json:"candidate_id" validate:"required,uuid"`
	AppliedAt   time.Time `json:"applied_at" validate:"required"`
	Decision    string    `json:"decision" validate:"required"`
}

// ApplyResponse is returned by POST /api/applications.
type ApplyResponse struct {
	JobID       string    `json:"job_id"`
	CandidateID string    `json:"candidate_id"`
	AppliedAt   time.Time `json:"applied_at"`
	Status      string    `json:"status"`
}

// MatchResult is the cached AI assessment of a candidate's CV against a job.
type MatchResult struct {
	Score     int       `json:"score"`
	Summary   string    `json:"summary"`
	Strengths []string  `json:"strengths"`
	Gaps      []string  `json:"gaps"`
	Model     string    `json:"model,omitempty"`
	ScoredAt  time.Time `json:"scored_at"`
}
