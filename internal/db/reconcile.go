package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// repairStep is one reconciliation statement and the report counter it feeds.
type repairStep struct {
	name    string
	sql     string
	counter func(*RepairReport) *int
}

// applicationRepairSteps re-derive every application projection from applications_by_job.
var applicationRepairSteps = []repairStep{
	{
		name: "insert missing candidate rows",
		sql: `INSERT INTO applications_by_candidate (candidate_id, job_id, applied_at, job_title, status)
		      SELECT a.candidate_id, a.job_id, a.applied_at, COALESCE(j.title, ''), a.status
		      FROM applications_by_job a
		      LEFT JOIN jobs j ON j.id = a.job_id
		      WHERE NOT EXISTS (
		          SELECT 1 FROM applications_by_candidate c
		          WHERE c.candidate_id = a.candidate_id AND c.job_id = a.job_id AND c.applied_at = a.applied_at)`,
		counter: func(r *RepairReport) *int { return &r.CandidateRowsInserted },
	},
	{
		name: "insert missing pair rows",
		sql: `INSERT INTO applications_by_pair (job_id, candidate_id, applied_at)
		      SELECT a.job_id, a.candidate_id, MIN(a.applied_at)
		      FROM applications_by_job a
		      WHERE NOT EXISTS (
		          SELECT 1 FROM applications_by_pair p
		          WHERE p.job_id = a.job_id AND p.candidate_id = a.candidate_id)
		      GROUP BY a.job_id, a.candidate_id
		      ON CONFLICT (job_id, candidate_id) DO NOTHING`,
		counter: func(r *RepairReport) *int { return &r.PairRowsInserted },
	},
	{
		name: "insert missing recent rows",
		sql: `INSERT INTO applications_recent (recruiter_id, applied_at, job_id, candidate_id,
		          job_title, candidate_name, status)
		      SELECT j.recruiter_id, a.applied_at, a.job_id, a.candidate_id, j.title, a.candidate_name, a.status
		      FROM applications_by_job a
		      JOIN jobs j ON j.id = a.job_id
		      WHERE NOT EXISTS (
		          SELECT 1 FROM applications_recent r
		          WHERE r.job_id = a.job_id AND r.candidate_id = a.candidate_id AND r.applied_at = a.applied_at)`,
		counter: func(r *RepairReport) *int { return &r.RecentRowsInserted },
	},
	{
		name: "fix candidate status drift",
		sql: `UPDATE applications_by_candidate c SET status = a.status
		      FROM applications_by_job a
		      WHERE c.candidate_id = a.candidate_id AND c.job_id = a.job_id
		        AND c.applied_at = a.applied_at AND c.status <> a.status`,
		counter: func(r *RepairReport) *int { return &r.StatusRowsFixed },
	},
	{
		name: "fix recent status drift",
		sql: `UPDATE applications_recent r SET status = a.status
		      FROM applications_by_job a
		      WHERE r.job_id = a.job_id AND r.candidate_id = a.candidate_id
		        AND r.applied_at = a.applied_at AND r.status <> a.status`,
		counter: func(r *RepairReport) *int { return &r.StatusRowsFixed },
	},
	{
		name: "delete recent rows shadowed by the owner's row",
		sql: `DELETE FROM applications_recent r
		      USING jobs j
		      WHERE j.id = r.job_id AND r.recruiter_id <> j.recruiter_id
		        AND EXISTS (
		            SELECT 1 FROM applications_recent o
		            WHERE o.recruiter_id = j.recruiter_id AND o.job_id = r.job_id
		              AND o.candidate_id = r.candidate_id AND o.applied_at = r.applied_at)`,
		counter: func(r *RepairReport) *int { return &r.RecruiterRowsFixed },
	},
	{
		name: "fix recent recruiter drift",
		sql: `UPDATE applications_recent r SET recruiter_id = j.recruiter_id
		      FROM jobs j
		      WHERE j.id = r.job_id AND r.recruiter_id <> j.recruiter_id`,
		counter: func(r *RepairReport) *int { return &r.RecruiterRowsFixed },
	},
	{
		name: "fix candidate title drift",
		sql: `UPDATE applications_by_candidate c SET job_title = j.title
		      FROM jobs j
		      WHERE j.id = c.job_id AND c.job_title <> j.title`,
		counter: func(r *RepairReport) *int { return &r.TitleRowsFixed },
	},
	{
		name: "fix recent title drift",
		sql: `UPDATE applications_recent r SET job_title = j.title
		      FROM jobs j
		      WHERE j.id = r.job_id AND r.job_title <> j.title`,
		counter: func(r *RepairReport) *int { return &r.TitleRowsFixed },
	},
	{
		name: "delete orphan candidate rows",
		sql: `DELETE FROM applications_by_candidate c
		      WHERE NOT EXISTS (
		          SELECT 1 FROM applications_by_job a
		          WHERE a.job_id = c.job_id AND a.candidate_id = c.candidate_id AND a.applied_at = c.applied_at)`,
		counter: func(r *RepairReport) *int { return &r.OrphanRowsDeleted },
	},
	{
		name: "delete orphan pair rows",
		sql: `DELETE FROM applications_by_pair p
		      WHERE NOT EXISTS (
		          SELECT 1 FROM applications_by_job a
		          WHERE a.job_id = p.job_id AND a.candidate_id = p.candidate_id AND a.applied_at = p.applied_at)`,
		counter: func(r *RepairReport) *int { return &r.OrphanRowsDeleted },
	},
	{
		name: "delete orphan recent rows",
		sql: `DELETE FROM applications_recent r
		      WHERE NOT EXISTS (
		          SELECT 1 FROM applications_by_job a
		          WHERE a.job_id = r.job_id AND a.candidate_id = r.candidate_id AND a.applied_at = r.applied_at)`,
		counter: func(r *RepairReport) *int { return &r.OrphanRowsDeleted },
	},
	{
		name: "delete orphan rounds",
		sql: `DELETE FROM application_rounds r
		      WHERE NOT EXISTS (
		          SELECT 1 FROM applications_by_job a
		          WHERE a.job_id = r.job_id AND a.candidate_id = r.candidate_id)`,
		counter: func(r *RepairReport) *int { return &r.OrphanRoundsDeleted },
	},
	{
		name: "delete orphan round counters",
		sql: `DELETE FROM application_round_counters k
		      WHERE NOT EXISTS (
		          SELECT 1 FROM applications_by_job a
		          WHERE a.job_id = k.job_id AND a.candidate_id = k.candidate_id)`,
		counter: func(r *RepairReport) *int { return &r.OrphanRoundsDeleted },
	},
}

// publicJobRepairSteps re-derive jobs_by_status_visible from jobs.
var publicJobRepairSteps = []repairStep{
	{
		name: "delete stale public rows",
		sql: `DELETE FROM jobs_by_status_visible p
		      WHERE NOT EXISTS (
		          SELECT 1 FROM jobs j
		          WHERE j.id = p.job_id AND j.status = 'OPEN' AND j.visible
		            AND j.status = p.status AND j.visible = p.visible AND j.publish_at = p.publish_at)`,
		counter: func(r *RepairReport) *int { return &r.PublicRowsDeleted },
	},
	{
		name: "insert missing public rows",
		sql: `INSERT INTO jobs_by_status_visible (status, visible, publish_at, job_id, title,
		          employment_type, work_type, level, salary_min, salary_max, currency, recruiter_id)
		      SELECT j.status, j.visible, j.publish_at, j.id, j.title,
		             j.employment_type, j.work_type, j.level, j.salary_min, j.salary_max, j.currency, j.recruiter_id
		      FROM jobs j
		      WHERE j.status = 'OPEN' AND j.visible AND j.publish_at IS NOT NULL
		        AND NOT EXISTS (
		            SELECT 1 FROM jobs_by_status_visible p
		            WHERE p.job_id = j.id AND p.status = j.status
		              AND p.visible = j.visible AND p.publish_at = j.publish_at)`,
		counter: func(r *RepairReport) *int { return &r.PublicRowsInserted },
	},
}

// RepairApplicationProjections brings every application projection back in line
// with applications_by_job.
func (db *DB) RepairApplicationProjections(ctx context.Context) (RepairReport, error) {
	return db.runRepair(ctx, applicationRepairSteps)
}

// RepairPublicJobs brings the public listing back in line with jobs.
func (db *DB) RepairPublicJobs(ctx context.Context) (RepairReport, error) {
	return db.runRepair(ctx, publicJobRepairSteps)
}

func (db *DB) runRepair(ctx context.Context, steps []repairStep) (RepairReport, error) {
	var report RepairReport
	err := db.withTx(ctx, func(tx pgx.Tx) error {
		for _, step := range steps {
			tag, err := tx.Exec(ctx, step.sql)
			if err != nil {
				return fmt.Errorf("%s: %w", step.name, err)
			}
			*step.counter(&report) += int(tag.RowsAffected())
		}
		return nil
	})
	if err != nil {
		return RepairReport{}, err
	}
	return report, nil
}
