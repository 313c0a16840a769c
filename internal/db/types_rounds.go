package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/hiring-tracker/internal/types"
)

// Round is one interview stage for a (job, candidate) pair. Order starts at 1.
type Round struct {
	JobID         uuid.UUID         `json:"job_id"`
	CandidateID   uuid.UUID         `json:"candidate_id"`
	Order         int               `json:"order"`
	Name          string            `json:"name"`
	Status        types.RoundStatus `json:"status"`
	Score         *int              `json:"score,omitempty"`
	Feedback      string            `json:"feedback,omitempty"`
	ScheduledAt   *time.Time        `json:"scheduled_at,omitempty"`
	MeetingLink   string            `json:"meeting_link,omitempty"`
	Note          string            `json:"note,omitempty"`
	InterviewerID *uuid.UUID        `json:"interviewer_id,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}
