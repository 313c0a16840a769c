package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jonathan/hiring-tracker/internal/types"
)

const applicationColumns = `a.job_id, a.candidate_id, a.applied_at, a.status, a.answers,
	a.feedback, a.ai_match, a.candidate_name, a.candidate_email, a.updated_at`

func scanApplication(row pgx.Row) (*Application, error) {
	var a Application
	var status string
	var answers, feedback, match []byte
	err := row.Scan(&a.JobID, &a.CandidateID, &a.AppliedAt, &status, &answers,
		&feedback, &match, &a.CandidateName, &a.CandidateEmail, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.Status = types.ApplicationStatus(status)
	if len(answers) > 0 {
		if err := json.Unmarshal(answers, &a.Answers); err != nil {
			return nil, fmt.Errorf("failed to decode answers: %w", err)
		}
	}
	if len(feedback) > 0 {
		a.Feedback = &FeedbackSummary{}
		if err := json.Unmarshal(feedback, a.Feedback); err != nil {
			return nil, fmt.Errorf("failed to decode feedback summary: %w", err)
		}
	}
	if len(match) > 0 {
		a.AIMatch = json.RawMessage(match)
	}
	return &a, nil
}

// CreateApplication writes a new application into every projection together with
// its first round. The by-pair projection is written first; if the pair already
// has an application the batch is rolled back and ErrDuplicate returned.
func (db *DB) CreateApplication(ctx context.Context, in *NewApplication) error {
	app := in.Application
	answers, err := json.Marshal(answersOrEmpty(app.Answers))
	if err != nil {
		return fmt.Errorf("failed to encode answers: %w", err)
	}
	var feedback []byte
	if app.Feedback != nil {
		if feedback, err = json.Marshal(app.Feedback); err != nil {
			return fmt.Errorf("failed to encode feedback summary: %w", err)
		}
	}

	b := &pgx.Batch{}
	b.Queue(
		`INSERT INTO applications_by_pair (job_id, candidate_id, applied_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (job_id, candidate_id) DO NOTHING`,
		app.JobID, app.CandidateID, app.AppliedAt,
	)
	b.Queue(
		`INSERT INTO applications_by_job (job_id, candidate_id, applied_at, status, answers,
		     feedback, candidate_name, candidate_email, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		app.JobID, app.CandidateID, app.AppliedAt, string(app.Status), answers,
		feedback, app.CandidateName, app.CandidateEmail, app.UpdatedAt,
	)
	b.Queue(
		`INSERT INTO applications_by_candidate (candidate_id, job_id, applied_at, job_title, status)
		 VALUES ($1, $2, $3, $4, $5)`,
		app.CandidateID, app.JobID, app.AppliedAt, in.JobTitle, string(app.Status),
	)
	b.Queue(
		`INSERT INTO applications_recent (recruiter_id, applied_at, job_id, candidate_id,
		     job_title, candidate_name, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		in.RecruiterID, app.AppliedAt, app.JobID, app.CandidateID,
		in.JobTitle, app.CandidateName, string(app.Status),
	)
	queueRoundUpsert(b, &in.FirstRound)

	err = db.sendBatch(ctx, b, map[int]batchCheck{
		0: func(tag pgconn.CommandTag) error {
			if tag.RowsAffected() == 0 {
				return fmt.Errorf("application for job %s candidate %s: %w", app.JobID, app.CandidateID, ErrDuplicate)
			}
			return nil
		},
	})
	if err != nil && isUniqueViolation(err) {
		return fmt.Errorf("application for job %s candidate %s: %w", app.JobID, app.CandidateID, ErrDuplicate)
	}
	return err
}

// GetApplication retrieves an application by its full key. Returns nil if not found.
func (db *DB) GetApplication(ctx context.Context, key ApplicationKey) (*Application, error) {
	a, err := scanApplication(db.pool.QueryRow(ctx,
		`SELECT `+applicationColumns+` FROM applications_by_job a
		 WHERE a.job_id = $1 AND a.candidate_id = $2 AND a.applied_at = $3`,
		key.JobID, key.CandidateID, key.AppliedAt,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	return a, nil
}

// FindApplication resolves the application of a (job, candidate) pair through the
// by-pair projection. Returns nil if the pair has not applied.
func (db *DB) FindApplication(ctx context.Context, jobID, candidateID uuid.UUID) (*Application, error) {
	a, err := scanApplication(db.pool.QueryRow(ctx,
		`SELECT `+applicationColumns+`
		 FROM applications_by_pair p
		 JOIN applications_by_job a
		   ON a.job_id = p.job_id AND a.candidate_id = p.candidate_id AND a.applied_at = p.applied_at
		 WHERE p.job_id = $1 AND p.candidate_id = $2`,
		jobID, candidateID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find application: %w", err)
	}
	return a, nil
}

// ListApplicationsByJob lists a job's applications, oldest first.
func (db *DB) ListApplicationsByJob(ctx context.Context, jobID uuid.UUID) ([]Application, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+applicationColumns+` FROM applications_by_job a
		 WHERE a.job_id = $1 ORDER BY a.applied_at`,
		jobID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications by job: %w", err)
	}
	defer rows.Close()

	apps := []Application{}
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		apps = append(apps, *a)
	}
	return apps, rows.Err()
}

// ListApplicationsByCandidate lists a candidate's applications, newest first.
func (db *DB) ListApplicationsByCandidate(ctx context.Context, candidateID uuid.UUID) ([]CandidateApplication, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT candidate_id, job_id, applied_at, job_title, status
		 FROM applications_by_candidate WHERE candidate_id = $1
		 ORDER BY applied_at DESC`,
		candidateID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications by candidate: %w", err)
	}
	defer rows.Close()

	apps := []CandidateApplication{}
	for rows.Next() {
		var c CandidateApplication
		var status string
		if err := rows.Scan(&c.CandidateID, &c.JobID, &c.AppliedAt, &c.JobTitle, &status); err != nil {
			return nil, fmt.Errorf("failed to scan candidate application: %w", err)
		}
		c.Status = types.ApplicationStatus(status)
		apps = append(apps, c)
	}
	return apps, rows.Err()
}

// ListRecentApplications returns a recruiter's activity feed, newest first.
func (db *DB) ListRecentApplications(ctx context.Context, recruiterID uuid.UUID, limit int) ([]RecentApplication, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT recruiter_id, applied_at, job_id, candidate_id, job_title, candidate_name, status
		 FROM applications_recent WHERE recruiter_id = $1
		 ORDER BY applied_at DESC LIMIT $2`,
		recruiterID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent applications: %w", err)
	}
	defer rows.Close()

	feed := []RecentApplication{}
	for rows.Next() {
		var r RecentApplication
		var status string
		if err := rows.Scan(&r.RecruiterID, &r.AppliedAt, &r.JobID, &r.CandidateID,
			&r.JobTitle, &r.CandidateName, &status); err != nil {
			return nil, fmt.Errorf("failed to scan recent application: %w", err)
		}
		r.Status = types.ApplicationStatus(status)
		feed = append(feed, r)
	}
	return feed, rows.Err()
}

// UpdateApplicationStatus writes status into every projection that carries it.
func (db *DB) UpdateApplicationStatus(ctx context.Context, key ApplicationKey, status types.ApplicationStatus) error {
	b := &pgx.Batch{}
	b.Queue(
		`UPDATE applications_by_job SET status = $4, updated_at = NOW()
		 WHERE job_id = $1 AND candidate_id = $2 AND applied_at = $3`,
		key.JobID, key.CandidateID, key.AppliedAt, string(status),
	)
	b.Queue(
		`UPDATE applications_by_candidate SET status = $4
		 WHERE candidate_id = $2 AND job_id = $1 AND applied_at = $3`,
		key.JobID, key.CandidateID, key.AppliedAt, string(status),
	)
	b.Queue(
		`UPDATE applications_recent SET status = $4
		 WHERE job_id = $1 AND candidate_id = $2 AND applied_at = $3`,
		key.JobID, key.CandidateID, key.AppliedAt, string(status),
	)
	return db.sendBatch(ctx, b, map[int]batchCheck{0: requireRows("application")})
}

// UpdateApplicationFeedback overwrites the feedback summary blob.
func (db *DB) UpdateApplicationFeedback(ctx context.Context, key ApplicationKey, summary *FeedbackSummary) error {
	var blob []byte
	if summary != nil {
		var err error
		if blob, err = json.Marshal(summary); err != nil {
			return fmt.Errorf("failed to encode feedback summary: %w", err)
		}
	}
	tag, err := db.pool.Exec(ctx,
		`UPDATE applications_by_job SET feedback = $4, updated_at = NOW()
		 WHERE job_id = $1 AND candidate_id = $2 AND applied_at = $3`,
		key.JobID, key.CandidateID, key.AppliedAt, blob,
	)
	if err != nil {
		return fmt.Errorf("failed to update feedback summary: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("application: %w", ErrNotFound)
	}
	return nil
}

// UpdateApplicationMatch caches the AI match result on the application row.
func (db *DB) UpdateApplicationMatch(ctx context.Context, key ApplicationKey, match json.RawMessage) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE applications_by_job SET ai_match = $4
		 WHERE job_id = $1 AND candidate_id = $2 AND applied_at = $3`,
		key.JobID, key.CandidateID, key.AppliedAt, []byte(match),
	)
	if err != nil {
		return fmt.Errorf("failed to cache match: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("application: %w", ErrNotFound)
	}
	return nil
}

// DeleteApplication removes the application from every projection and deletes
// its rounds and round counter.
func (db *DB) DeleteApplication(ctx context.Context, key ApplicationKey) error {
	b := &pgx.Batch{}
	b.Queue(
		`DELETE FROM applications_by_job WHERE job_id = $1 AND candidate_id = $2 AND applied_at = $3`,
		key.JobID, key.CandidateID, key.AppliedAt,
	)
	b.Queue(
		`DELETE FROM applications_by_candidate WHERE candidate_id = $2 AND job_id = $1 AND applied_at = $3`,
		key.JobID, key.CandidateID, key.AppliedAt,
	)
	b.Queue(
		`DELETE FROM applications_by_pair WHERE job_id = $1 AND candidate_id = $2 AND applied_at = $3`,
		key.JobID, key.CandidateID, key.AppliedAt,
	)
	b.Queue(
		`DELETE FROM applications_recent WHERE job_id = $1 AND candidate_id = $2 AND applied_at = $3`,
		key.JobID, key.CandidateID, key.AppliedAt,
	)
	b.Queue(`DELETE FROM application_rounds WHERE job_id = $1 AND candidate_id = $2`, key.JobID, key.CandidateID)
	b.Queue(`DELETE FROM application_round_counters WHERE job_id = $1 AND candidate_id = $2`, key.JobID, key.CandidateID)
	return db.sendBatch(ctx, b, map[int]batchCheck{0: requireRows("application")})
}

func answersOrEmpty(a map[string]bool) map[string]bool {
	if a == nil {
		return map[string]bool{}
	}
	return a
}
