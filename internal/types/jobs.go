package types

import "time"

// ScreeningQuestion is a yes/no question asked when applying to a job.
// A knockout question answered against PreferredAnswer rejects the application.
type ScreeningQuestion struct {
	ID              string `json:"id" validate:"required,max=64"`
	Label           string `json:"label" validate:"required,max=500"`
	PreferredAnswer bool   `json:"preferred_answer"`
	Knockout        bool   `json:"knockout"`
}

// CreateJobRequest is the body of POST /api/jobs.
type CreateJobRequest struct {
	Title              string              `json:"title" validate:"required,max=200"`
	Description        string              `json:"description"`
	Requirements       string              `json:"requirements"`
	Benefits           string              `json:"benefits"`
	EmploymentType     string              `json:"employment_type" validate:"omitempty,max=50"`
	WorkType           string              `json:"work_type" validate:"omitempty,max=50"`
	Level              string              `json:"level" validate:"omitempty,max=50"`
	SalaryMin          *int                `json:"salary_min,omitempty" validate:"omitempty,min=0"`
	SalaryMax          *int                `json:"salary_max,omitempty" validate:"omitempty,min=0"`
	Currency           string              `json:"currency,omitempty" validate:"omitempty,len=3"`
	ScreeningQuestions []ScreeningQuestion `json:"screening_questions" validate:"omitempty,dive"`
	Status             string              `json:"status,omitempty" validate:"omitempty,job_status"`
	Visible            bool                `json:"visible"`
	PublishAt          *time.Time          `json:"publish_at,omitempty"`
}

// UpdateJobRequest is the body of PATCH /api/jobs/{id}; nil fields are left unchanged.
type UpdateJobRequest struct {
	Title              *string              `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description        *string              `json:"description,omitempty"`
	Requirements       *string              `json:"requirements,omitempty"`
	Benefits           *string              `json:"benefits,omitempty"`
	EmploymentType     *string              `json:"employment_type,omitempty" validate:"omitempty,max=50"`
	WorkType           *string              `json:"work_type,omitempty" validate:"omitempty,max=50"`
	Level              *string              `json:"level,omitempty" validate:"omitempty,max=50"`
	SalaryMin          *int                 `json:"salary_min,omitempty" validate:"omitempty,min=0"`
	SalaryMax          *int                 `json:"salary_max,omitempty" validate:"omitempty,min=0"`
	Currency           *string              `json:"currency,omitempty" validate:"omitempty,len=3"`
	ScreeningQuestions *[]ScreeningQuestion `json:"screening_questions,omitempty" validate:"omitempty"`
	Status             *string              `json:"status,omitempty" validate:"omitempty,job_status"`
	Visible            *bool                `json:"visible,omitempty"`
	PublishAt          *time.Time           `json:"publish_at,omitempty"`
}

// ReassignRecruiterRequest is the body of PATCH /api/admin/jobs/{id}/recruiter.
type ReassignRecruiterRequest struct {
	RecruiterID string `json:"recruiter_id" validate:"required,uuid"`
}
