package types

import "time"

// CreateRoundRequest is the body of POST /api/application-rounds.
// The round order is always allocated by the server.
type CreateRoundRequest struct {
	JobID       string `json:"job_id" validate:"required,uuid"`
	CandidateID string `json:"candidate_id" validate:"required,uuid"`
	Name        string `json:"name" validate:"required,max=120"`
	Status      string `json:"status,omitempty" validate:"omitempty,round_status"`
}

// UpdateRoundRequest is the body of PATCH /api/application-rounds.
type UpdateRoundRequest struct {
	JobID       string  `json:"job_id" validate:"required,uuid"`
	CandidateID string  `json:"candidate_id" validate:"required,uuid"`
	Name        string  `json:"name" validate:"required,max=120"`
	Order       int     `json:"order" validate:"required,min=1"`
	Status      string  `json:"status" validate:"required,round_status"`
	Score       *int    `json:"score,omitempty" validate:"omitempty,min=0,max=100"`
	Feedback    *string `json:"feedback,omitempty" validate:"omitempty,max=20000"`
}

// ScheduleInterviewRequest is the body of POST /api/admin/interviews/schedule.
type ScheduleInterviewRequest struct {
	JobID         string    `json:"job_id" validate:"required,uuid"`
	CandidateID   string    `json:"candidate_id" validate:"required,uuid"`
	Name          string    `json:"name" validate:"required,max=120"`
	ScheduledAt   time.Time `json:"scheduled_at" validate:"required"`
	MeetingLink   string    `json:"meeting_link,omitempty" validate:"omitempty,url"`
	Note          string    `json:"note,omitempty" validate:"omitempty,max=2000"`
	InterviewerID string    `json:"interviewer_id,omitempty" validate:"omitempty,uuid"`
}

// UpdateScheduleRequest is the body of PATCH /api/admin/interviews/schedule.
type UpdateScheduleRequest struct {
	JobID         string     `json:"job_id" validate:"required,uuid"`
	CandidateID   string     `json:"candidate_id" validate:"required,uuid"`
	Order         int        `json:"order" validate:"required,min=1"`
	ScheduledAt   *time.Time `json:"scheduled_at,omitempty"`
	MeetingLink   *string    `json:"meeting_link,omitempty" validate:"omitempty,url"`
	Note          *string    `json:"note,omitempty" validate:"omitempty,max=2000"`
	InterviewerID *string    `json:"interviewer_id,omitempty" validate:"omitempty,uuid"`
}
