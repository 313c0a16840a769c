package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/hiring-tracker/internal/types"
)

const roundColumns = `job_id, candidate_id, round_order, name, status, score,
	COALESCE(feedback, ''), scheduled_at, COALESCE(meeting_link, ''), COALESCE(note, ''),
	interviewer_id, created_at, updated_at`

func scanRound(row pgx.Row) (*Round, error) {
	var r Round
	var status string
	err := row.Scan(&r.JobID, &r.CandidateID, &r.Order, &r.Name, &status, &r.Score,
		&r.Feedback, &r.ScheduledAt, &r.MeetingLink, &r.Note,
		&r.InterviewerID, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	r.Status = types.RoundStatus(status)
	return &r, nil
}

// AllocateRoundOrder atomically reserves the next round order for a pair.
// The first allocation for a pair returns 1.
func (db *DB) AllocateRoundOrder(ctx context.Context, jobID, candidateID uuid.UUID) (int, error) {
	var order int
	err := db.pool.QueryRow(ctx,
		`INSERT INTO application_round_counters (job_id, candidate_id, last_order)
		 VALUES ($1, $2, 1)
		 ON CONFLICT (job_id, candidate_id) DO UPDATE
		     SET last_order = application_round_counters.last_order + 1
		 RETURNING last_order`,
		jobID, candidateID,
	).Scan(&order)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate round order: %w", err)
	}
	return order, nil
}

// UpsertRound inserts or overwrites a round and raises the pair's counter to at
// least the round's order, in one batch.
func (db *DB) UpsertRound(ctx context.Context, round *Round) error {
	b := &pgx.Batch{}
	queueRoundUpsert(b, round)
	return db.sendBatch(ctx, b, nil)
}

func queueRoundUpsert(b *pgx.Batch, r *Round) {
	b.Queue(
		`INSERT INTO application_rounds (job_id, candidate_id, round_order, name, status, score,
		     feedback, scheduled_at, meeting_link, note, interviewer_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 ON CONFLICT (job_id, candidate_id, round_order) DO UPDATE SET
		     name = EXCLUDED.name, status = EXCLUDED.status, score = EXCLUDED.score,
		     feedback = EXCLUDED.feedback, scheduled_at = EXCLUDED.scheduled_at,
		     meeting_link = EXCLUDED.meeting_link, note = EXCLUDED.note,
		     interviewer_id = EXCLUDED.interviewer_id, updated_at = EXCLUDED.updated_at`,
		r.JobID, r.CandidateID, r.Order, r.Name, string(r.Status), r.Score,
		nullIfEmpty(r.Feedback), r.ScheduledAt, nullIfEmpty(r.MeetingLink), nullIfEmpty(r.Note),
		r.InterviewerID, r.CreatedAt, r.UpdatedAt,
	)
	b.Queue(
		`INSERT INTO application_round_counters (job_id, candidate_id, last_order)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (job_id, candidate_id) DO UPDATE
		     SET last_order = GREATEST(application_round_counters.last_order, EXCLUDED.last_order)`,
		r.JobID, r.CandidateID, r.Order,
	)
}

// GetRound retrieves one round. Returns nil if not found.
func (db *DB) GetRound(ctx context.Context, jobID, candidateID uuid.UUID, order int) (*Round, error) {
	r, err := scanRound(db.pool.QueryRow(ctx,
		`SELECT `+roundColumns+` FROM application_rounds
		 WHERE job_id = $1 AND candidate_id = $2 AND round_order = $3`,
		jobID, candidateID, order,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get round: %w", err)
	}
	return r, nil
}

// ListRounds lists a pair's rounds ordered by round order.
func (db *DB) ListRounds(ctx context.Context, jobID, candidateID uuid.UUID) ([]Round, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+roundColumns+` FROM application_rounds
		 WHERE job_id = $1 AND candidate_id = $2 ORDER BY round_order`,
		jobID, candidateID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds: %w", err)
	}
	defer rows.Close()

	rounds := []Round{}
	for rows.Next() {
		r, err := scanRound(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan round: %w", err)
		}
		rounds = append(rounds, *r)
	}
	return rounds, rows.Err()
}

// DeleteRound removes one round. The counter is left alone so orders are never reused.
func (db *DB) DeleteRound(ctx context.Context, jobID, candidateID uuid.UUID, order int) error {
	tag, err := db.pool.Exec(ctx,
		`DELETE FROM application_rounds WHERE job_id = $1 AND candidate_id = $2 AND round_order = $3`,
		jobID, candidateID, order,
	)
	if err != nil {
		return fmt.Errorf("failed to delete round: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("round %d: %w", order, ErrNotFound)
	}
	return nil
}
