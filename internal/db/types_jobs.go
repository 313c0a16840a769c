package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/hiring-tracker/internal/types"
)

// Job is the authoritative job posting row.
type Job struct {
	ID                 uuid.UUID                 `json:"id"`
	RecruiterID        uuid.UUID                 `json:"recruiter_id"`
	Title              string                    `json:"title"`
	Description        string                    `json:"description"`
	Requirements       string                    `json:"requirements"`
	Benefits           string                    `json:"benefits"`
	EmploymentType     string                    `json:"employment_type,omitempty"`
	WorkType           string                    `json:"work_type,omitempty"`
	Level              string                    `json:"level,omitempty"`
	SalaryMin          *int                      `json:"salary_min,omitempty"`
	SalaryMax          *int                      `json:"salary_max,omitempty"`
	Currency           string                    `json:"currency,omitempty"`
	ScreeningQuestions []types.ScreeningQuestion `json:"screening_questions"`
	Status             types.JobStatus           `json:"status"`
	Visible            bool                      `json:"visible"`
	PublishAt          *time.Time                `json:"publish_at,omitempty"`
	CreatedAt          time.Time                 `json:"created_at"`
	UpdatedAt          time.Time                 `json:"updated_at"`
}

// PublicJobKey is the primary key of the public listing projection.
// Changing any of its first three fields moves the row.
type PublicJobKey struct {
	Status    types.JobStatus `json:"status"`
	Visible   bool            `json:"visible"`
	PublishAt time.Time       `json:"publish_at"`
	JobID     uuid.UUID       `json:"job_id"`
}

// PublicJob is a row of jobs_by_status_visible.
type PublicJob struct {
	PublicJobKey
	Title          string    `json:"title"`
	EmploymentType string    `json:"employment_type,omitempty"`
	WorkType       string    `json:"work_type,omitempty"`
	Level          string    `json:"level,omitempty"`
	SalaryMin      *int      `json:"salary_min,omitempty"`
	SalaryMax      *int      `json:"salary_max,omitempty"`
	Currency       string    `json:"currency,omitempty"`
	RecruiterID    uuid.UUID `json:"recruiter_id"`
}

// RecruiterJob is a row of jobs_by_recruiter.
type RecruiterJob struct {
	RecruiterID uuid.UUID       `json:"recruiter_id"`
	JobID       uuid.UUID       `json:"job_id"`
	Title       string          `json:"title"`
	Status      types.JobStatus `json:"status"`
	Visible     bool            `json:"visible"`
	CreatedAt   time.Time       `json:"created_at"`
}

// PublicViewOpKind is the kind of write applied to the public listing.
type PublicViewOpKind int

// Public listing write kinds.
const (
	PublicViewUpsert PublicViewOpKind = iota + 1
	PublicViewInsert
	PublicViewDelete
)

func (k PublicViewOpKind) String() string {
	switch k {
	case PublicViewUpsert:
		return "upsert"
	case PublicViewInsert:
		return "insert"
	case PublicViewDelete:
		return "delete"
	}
	return "unknown"
}

// PublicViewOp is one write against jobs_by_status_visible.
// Delete uses Key; Insert and Upsert use Row.
type PublicViewOp struct {
	Kind PublicViewOpKind
	Key  PublicJobKey
	Row  *PublicJob
}

// PublicRow projects a job into its public listing row. PublishAt must be set.
func (j *Job) PublicRow() *PublicJob {
	var publishAt time.Time
	if j.PublishAt != nil {
		publishAt = *j.PublishAt
	}
	return &PublicJob{
		PublicJobKey: PublicJobKey{
			Status:    j.Status,
			Visible:   j.Visible,
			PublishAt: publishAt,
			JobID:     j.ID,
		},
		Title:          j.Title,
		EmploymentType: j.EmploymentType,
		WorkType:       j.WorkType,
		Level:          j.Level,
		SalaryMin:      j.SalaryMin,
		SalaryMax:      j.SalaryMax,
		Currency:       j.Currency,
		RecruiterID:    j.RecruiterID,
	}
}

// PublicKey returns the key the job's public row has (or would have).
func (j *Job) PublicKey() PublicJobKey {
	return j.PublicRow().PublicJobKey
}
