package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/hiring-tracker/internal/types"
)

const jobColumns = `id, recruiter_id, title, description, requirements, benefits,
	COALESCE(employment_type, ''), COALESCE(work_type, ''), COALESCE(level, ''),
	salary_min, salary_max, COALESCE(currency, ''), screening_questions,
	status, visible, publish_at, created_at, updated_at`

func scanJob(row pgx.Row) (*Job, error) {
	var j Job
	var questions []byte
	var status string
	err := row.Scan(&j.ID, &j.RecruiterID, &j.Title, &j.Description, &j.Requirements, &j.Benefits,
		&j.EmploymentType, &j.WorkType, &j.Level,
		&j.SalaryMin, &j.SalaryMax, &j.Currency, &questions,
		&status, &j.Visible, &j.PublishAt, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	j.Status = types.JobStatus(status)
	if len(questions) > 0 {
		if err := json.Unmarshal(questions, &j.ScreeningQuestions); err != nil {
			return nil, fmt.Errorf("failed to decode screening questions: %w", err)
		}
	}
	return &j, nil
}

// GetJob retrieves a job by ID. Returns nil if not found.
func (db *DB) GetJob(ctx context.Context, id uuid.UUID) (*Job, error) {
	j, err := scanJob(db.pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return j, nil
}

// CreateJob inserts the job, its recruiter projection row and any public listing writes.
func (db *DB) CreateJob(ctx context.Context, job *Job, view []PublicViewOp) error {
	questions, err := json.Marshal(questionsOrEmpty(job.ScreeningQuestions))
	if err != nil {
		return fmt.Errorf("failed to encode screening questions: %w", err)
	}

	b := &pgx.Batch{}
	b.Queue(
		`INSERT INTO jobs (id, recruiter_id, title, description, requirements, benefits,
		     employment_type, work_type, level, salary_min, salary_max, currency,
		     screening_questions, status, visible, publish_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		job.ID, job.RecruiterID, job.Title, job.Description, job.Requirements, job.Benefits,
		nullIfEmpty(job.EmploymentType), nullIfEmpty(job.WorkType), nullIfEmpty(job.Level),
		job.SalaryMin, job.SalaryMax, nullIfEmpty(job.Currency),
		questions, string(job.Status), job.Visible, job.PublishAt, job.CreatedAt, job.UpdatedAt,
	)
	queueRecruiterJob(b, job)
	queuePublicView(b, view)

	return db.sendBatch(ctx, b, nil)
}

// UpdateJob overwrites the job row, moves its recruiter projection row and the
// recruiter's recent-applications feed if the owner changed, copies the title onto
// the application projections, and applies the public listing writes, all in one batch.
func (db *DB) UpdateJob(ctx context.Context, job *Job, previousRecruiter uuid.UUID, view []PublicViewOp) error {
	questions, err := json.Marshal(questionsOrEmpty(job.ScreeningQuestions))
	if err != nil {
		return fmt.Errorf("failed to encode screening questions: %w", err)
	}

	b := &pgx.Batch{}
	b.Queue(
		`UPDATE jobs SET recruiter_id = $2, title = $3, description = $4, requirements = $5,
		     benefits = $6, employment_type = $7, work_type = $8, level = $9,
		     salary_min = $10, salary_max = $11, currency = $12, screening_questions = $13,
		     status = $14, visible = $15, publish_at = $16, updated_at = $17
		 WHERE id = $1`,
		job.ID, job.RecruiterID, job.Title, job.Description, job.Requirements, job.Benefits,
		nullIfEmpty(job.EmploymentType), nullIfEmpty(job.WorkType), nullIfEmpty(job.Level),
		job.SalaryMin, job.SalaryMax, nullIfEmpty(job.Currency), questions,
		string(job.Status), job.Visible, job.PublishAt, job.UpdatedAt,
	)
	if previousRecruiter != uuid.Nil && previousRecruiter != job.RecruiterID {
		b.Queue(`DELETE FROM jobs_by_recruiter WHERE recruiter_id = $1 AND job_id = $2`, previousRecruiter, job.ID)
		b.Queue(`UPDATE applications_recent SET recruiter_id = $2 WHERE job_id = $1`, job.ID, job.RecruiterID)
	}
	b.Queue(`UPDATE applications_by_candidate SET job_title = $2 WHERE job_id = $1 AND job_title <> $2`, job.ID, job.Title)
	b.Queue(`UPDATE applications_recent SET job_title = $2 WHERE job_id = $1 AND job_title <> $2`, job.ID, job.Title)
	queueRecruiterJob(b, job)
	queuePublicView(b, view)

	return db.sendBatch(ctx, b, map[int]batchCheck{0: requireRows("job " + job.ID.String())})
}

// DeleteJob removes the job and every job projection row. Applications are kept.
func (db *DB) DeleteJob(ctx context.Context, job *Job) error {
	b := &pgx.Batch{}
	b.Queue(`DELETE FROM jobs WHERE id = $1`, job.ID)
	b.Queue(`DELETE FROM jobs_by_recruiter WHERE recruiter_id = $1 AND job_id = $2`, job.RecruiterID, job.ID)
	b.Queue(`DELETE FROM jobs_by_status_visible WHERE job_id = $1`, job.ID)
	return db.sendBatch(ctx, b, map[int]batchCheck{0: requireRows("job " + job.ID.String())})
}

// ListPublicJobs lists OPEN, visible jobs published at or before now, newest first.
func (db *DB) ListPublicJobs(ctx context.Context, now time.Time, limit int) ([]PublicJob, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT status, visible, publish_at, job_id, title,
		        COALESCE(employment_type, ''), COALESCE(work_type, ''), COALESCE(level, ''),
		        salary_min, salary_max, COALESCE(currency, ''), recruiter_id
		 FROM jobs_by_status_visible
		 WHERE status = $1 AND visible = TRUE AND publish_at <= $2
		 ORDER BY publish_at DESC, job_id
		 LIMIT $3`,
		string(types.JobOpen), now, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list public jobs: %w", err)
	}
	defer rows.Close()

	jobs := []PublicJob{}
	for rows.Next() {
		var p PublicJob
		var status string
		if err := rows.Scan(&status, &p.Visible, &p.PublishAt, &p.JobID, &p.Title,
			&p.EmploymentType, &p.WorkType, &p.Level,
			&p.SalaryMin, &p.SalaryMax, &p.Currency, &p.RecruiterID); err != nil {
			return nil, fmt.Errorf("failed to scan public job: %w", err)
		}
		p.Status = types.JobStatus(status)
		jobs = append(jobs, p)
	}
	return jobs, rows.Err()
}

// ListJobsByRecruiter lists the jobs owned by a recruiter, newest first.
func (db *DB) ListJobsByRecruiter(ctx context.Context, recruiterID uuid.UUID) ([]RecruiterJob, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT recruiter_id, job_id, title, status, visible, created_at
		 FROM jobs_by_recruiter WHERE recruiter_id = $1
		 ORDER BY created_at DESC`,
		recruiterID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list recruiter jobs: %w", err)
	}
	defer rows.Close()

	jobs := []RecruiterJob{}
	for rows.Next() {
		var r RecruiterJob
		var status string
		if err := rows.Scan(&r.RecruiterID, &r.JobID, &r.Title, &status, &r.Visible, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan recruiter job: %w", err)
		}
		r.Status = types.JobStatus(status)
		jobs = append(jobs, r)
	}
	return jobs, rows.Err()
}

func queueRecruiterJob(b *pgx.Batch, job *Job) {
	b.Queue(
		`INSERT INTO jobs_by_recruiter (recruiter_id, job_id, title, status, visible, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (recruiter_id, job_id) DO UPDATE SET
		     title = EXCLUDED.title, status = EXCLUDED.status, visible = EXCLUDED.visible`,
		job.RecruiterID, job.ID, job.Title, string(job.Status), job.Visible, job.CreatedAt,
	)
}

const publicInsertSQL = `INSERT INTO jobs_by_status_visible (status, visible, publish_at, job_id, title,
	     employment_type, work_type, level, salary_min, salary_max, currency, recruiter_id)
	 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

func queuePublicView(b *pgx.Batch, ops []PublicViewOp) {
	for _, op := range ops {
		switch op.Kind {
		case PublicViewDelete:
			b.Queue(
				`DELETE FROM jobs_by_status_visible
				 WHERE status = $1 AND visible = $2 AND publish_at = $3 AND job_id = $4`,
				string(op.Key.Status), op.Key.Visible, op.Key.PublishAt, op.Key.JobID,
			)
		case PublicViewInsert, PublicViewUpsert:
			r := op.Row
			b.Queue(publicInsertSQL+`
				 ON CONFLICT (status, visible, publish_at, job_id) DO UPDATE SET
				     title = EXCLUDED.title, employment_type = EXCLUDED.employment_type,
				     work_type = EXCLUDED.work_type, level = EXCLUDED.level,
				     salary_min = EXCLUDED.salary_min, salary_max = EXCLUDED.salary_max,
				     currency = EXCLUDED.currency, recruiter_id = EXCLUDED.recruiter_id`,
				string(r.Status), r.Visible, r.PublishAt, r.JobID, r.Title,
				nullIfEmpty(r.EmploymentType), nullIfEmpty(r.WorkType), nullIfEmpty(r.Level),
				r.SalaryMin, r.SalaryMax, nullIfEmpty(r.Currency), r.RecruiterID,
			)
		}
	}
}

func questionsOrEmpty(q []types.ScreeningQuestion) []types.ScreeningQuestion {
	if q == nil {
		return []types.ScreeningQuestion{}
	}
	return q
}
