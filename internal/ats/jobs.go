package ats

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/hiring-tracker/internal/db"
	"github.com/jonathan/hiring-tracker/internal/types"
)

// Public listing page sizes.
const (
	DefaultJobsLimit = 50
	MaxJobsLimit     = 200
)

// CreateJob stores a new job owned by the calling staff member. Status defaults
// to DRAFT; an OPEN job without a publish time is published now.
func (s *Service) CreateJob(ctx context.Context, actor Actor, req *types.CreateJobRequest) (*db.Job, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if err := types.Validator().Struct(req); err != nil {
		return nil, validationError(err)
	}

	status := types.JobDraft
	if req.Status != "" {
		status, _ = types.ParseJobStatus(req.Status)
	}

	now := s.timestamp()
	job := &db.Job{
		ID:                 uuid.New(),
		RecruiterID:        actor.ID,
		Title:              strings.TrimSpace(req.Title),
		Description:        req.Description,
		Requirements:       req.Requirements,
		Benefits:           req.Benefits,
		EmploymentType:     req.EmploymentType,
		WorkType:           req.WorkType,
		Level:              req.Level,
		SalaryMin:          req.SalaryMin,
		SalaryMax:          req.SalaryMax,
		Currency:           strings.ToUpper(req.Currency),
		ScreeningQuestions: req.ScreeningQuestions,
		Status:             status,
		Visible:            req.Visible,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if req.PublishAt != nil {
		t := req.PublishAt.UTC().Truncate(time.Microsecond)
		job.PublishAt = &t
	}
	if err := checkJob(job); err != nil {
		return nil, err
	}
	s.defaultPublishAt(job)

	if err := s.store.CreateJob(ctx, job, PlanPublicView(nil, job)); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	return job, nil
}

// GetJob returns a job. Jobs outside the public listing, or scheduled to publish
// later, are only visible to staff; anyone else gets NotFound.
func (s *Service) GetJob(ctx context.Context, actor Actor, id uuid.UUID) (*db.Job, error) {
	job, err := s.store.GetJob(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	if job == nil || (!IsLive(job, s.now().UTC()) && !actor.Role.IsStaff()) {
		return nil, &ErrNotFound{Resource: "job", Key: id.String()}
	}
	return job, nil
}

// UpdateJob applies a partial update. Owners, coordinators and admins may edit.
func (s *Service) UpdateJob(ctx context.Context, actor Actor, id uuid.UUID, req *types.UpdateJobRequest) (*db.Job, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if err := types.Validator().Struct(req); err != nil {
		return nil, validationError(err)
	}

	before, err := s.loadJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if before.RecruiterID != actor.ID && !actor.Role.CanCoordinate() {
		return nil, &ErrForbidden{Message: "only the owning recruiter may edit this job"}
	}

	after := *before
	applyJobUpdate(&after, req)
	if err := checkJob(&after); err != nil {
		return nil, err
	}
	s.defaultPublishAt(&after)
	after.UpdatedAt = s.timestamp()

	if err := s.store.UpdateJob(ctx, &after, before.RecruiterID, PlanPublicView(before, &after)); err != nil {
		return nil, s.mapJobWriteError(id, err)
	}
	return &after, nil
}

// ReassignRecruiter transfers ownership of a job to another staff member.
func (s *Service) ReassignRecruiter(ctx context.Context, actor Actor, id uuid.UUID, req *types.ReassignRecruiterRequest) (*db.Job, error) {
	if err := requireCoordinator(actor); err != nil {
		return nil, err
	}
	if err := types.Validator().Struct(req); err != nil {
		return nil, validationError(err)
	}
	recruiterID, err := parseID("recruiter_id", req.RecruiterID)
	if err != nil {
		return nil, err
	}

	recruiter, err := s.store.GetUser(ctx, recruiterID)
	if err != nil {
		return nil, fmt.Errorf("failed to get recruiter: %w", err)
	}
	if recruiter == nil || !recruiter.Role.IsStaff() {
		return nil, &ErrValidation{Field: "recruiter_id", Message: "must reference a staff account"}
	}

	before, err := s.loadJob(ctx, id)
	if err != nil {
		return nil, err
	}
	after := *before
	after.RecruiterID = recruiterID
	after.UpdatedAt = s.timestamp()

	if err := s.store.UpdateJob(ctx, &after, before.RecruiterID, PlanPublicView(before, &after)); err != nil {
		return nil, s.mapJobWriteError(id, err)
	}
	return &after, nil
}

// DeleteJob removes a job and its projections. Applications to it are kept.
func (s *Service) DeleteJob(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := requireStaff(actor); err != nil {
		return err
	}
	job, err := s.loadJob(ctx, id)
	if err != nil {
		return err
	}
	if job.RecruiterID != actor.ID && actor.Role != types.RoleAdmin {
		return &ErrForbidden{Message: "only the owning recruiter or an admin may delete this job"}
	}
	if err := s.store.DeleteJob(ctx, job); err != nil {
		return s.mapJobWriteError(id, err)
	}
	return nil
}

// ListPublicJobs lists published jobs, newest first.
func (s *Service) ListPublicJobs(ctx context.Context, limit int) ([]db.PublicJob, error) {
	if limit <= 0 {
		limit = DefaultJobsLimit
	}
	if limit > MaxJobsLimit {
		limit = MaxJobsLimit
	}
	jobs, err := s.store.ListPublicJobs(ctx, s.now().UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list public jobs: %w", err)
	}
	return jobs, nil
}

// ListRecruiterJobs lists the caller's own jobs.
func (s *Service) ListRecruiterJobs(ctx context.Context, actor Actor) ([]db.RecruiterJob, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	jobs, err := s.store.ListJobsByRecruiter(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list recruiter jobs: %w", err)
	}
	return jobs, nil
}

func (s *Service) loadJob(ctx context.Context, id uuid.UUID) (*db.Job, error) {
	job, err := s.store.GetJob(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	if job == nil {
		return nil, &ErrNotFound{Resource: "job", Key: id.String()}
	}
	return job, nil
}

func (s *Service) mapJobWriteError(id uuid.UUID, err error) error {
	if errors.Is(err, db.ErrNotFound) {
		return &ErrNotFound{Resource: "job", Key: id.String()}
	}
	return fmt.Errorf("failed to save job: %w", err)
}

// defaultPublishAt stamps the publish time the first time a job is OPEN.
func (s *Service) defaultPublishAt(job *db.Job) {
	if job.Status == types.JobOpen && job.PublishAt == nil {
		now := s.timestamp()
		job.PublishAt = &now
	}
}

func applyJobUpdate(job *db.Job, req *types.UpdateJobRequest) {
	if req.Title != nil {
		job.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		job.Description = *req.Description
	}
	if req.Requirements != nil {
		job.Requirements = *req.Requirements
	}
	if req.Benefits != nil {
		job.Benefits = *req.Benefits
	}
	if req.EmploymentType != nil {
		job.EmploymentType = *req.EmploymentType
	}
	if req.WorkType != nil {
		job.WorkType = *req.WorkType
	}
	if req.Level != nil {
		job.Level = *req.Level
	}
	if req.SalaryMin != nil {
		job.SalaryMin = req.SalaryMin
	}
	if req.SalaryMax != nil {
		job.SalaryMax = req.SalaryMax
	}
	if req.Currency != nil {
		job.Currency = strings.ToUpper(*req.Currency)
	}
	if req.ScreeningQuestions != nil {
		job.ScreeningQuestions = *req.ScreeningQuestions
	}
	if req.Status != nil {
		job.Status, _ = types.ParseJobStatus(*req.Status)
	}
	if req.Visible != nil {
		job.Visible = *req.Visible
	}
	if req.PublishAt != nil {
		t := req.PublishAt.UTC().Truncate(time.Microsecond)
		job.PublishAt = &t
	}
}

// checkJob enforces rules that span fields.
func checkJob(job *db.Job) error {
	if job.Title == "" {
		return &ErrValidation{Field: "title", Message: "is required"}
	}
	if job.SalaryMin != nil && job.SalaryMax != nil && *job.SalaryMin > *job.SalaryMax {
		return &ErrValidation{Field: "salary_max", Message: "must not be below salary_min"}
	}
	seen := make(map[string]bool, len(job.ScreeningQuestions))
	for i, q := range job.ScreeningQuestions {
		field := fmt.Sprintf("screening_questions[%d]", i)
		if strings.TrimSpace(q.ID) == "" {
			return &ErrValidation{Field: field + ".id", Message: "is required"}
		}
		if strings.TrimSpace(q.Label) == "" {
			return &ErrValidation{Field: field + ".label", Message: "is required"}
		}
		if seen[q.ID] {
			return &ErrValidation{Field: field + ".id", Message: "duplicate question id " + q.ID}
		}
		seen[q.ID] = true
	}
	return nil
}
