package scores

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new history record.
func (r *PGRepo) Create(ctx context.Context, rec Record) error {
	const query = `
INSERT INTO score_history (id, user_id, job_name, score, report, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	payload, err := json.Marshal(rec.Report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	_, err = r.DB.ExecContext(ctx, query,
		rec.ID,
		rec.UserID,
		rec.JobName,
		rec.Score,
		payload,
		rec.CreatedAt,
	)
	return err
}

// GetByID returns a record owned by userID, report included.
func (r *PGRepo) GetByID(ctx context.Context, userID, id string) (Record, error) {
	const query = `
SELECT id, user_id, job_name, score, report, created_at
FROM score_history
WHERE id = $1 AND user_id = $2
LIMIT 1`

	var rec Record
	var report []byte
	err := r.DB.QueryRowContext(ctx, query, id, userID).Scan(
		&rec.ID,
		&rec.UserID,
		&rec.JobName,
		&rec.Score,
		&report,
		&rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	if err := json.Unmarshal(report, &rec.Report); err != nil {
		return Record{}, fmt.Errorf("decode report %s: %w", rec.ID, err)
	}
	return rec, nil
}

// ListByUser lists records for a user ordered newest-first, without reports.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Record, error) {
	limit, offset = page(limit, offset)

	const query = `
SELECT id, user_id, job_name, score, created_at
FROM score_history
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.JobName, &rec.Score, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Stats summarizes a user's history in one round trip.
func (r *PGRepo) Stats(ctx context.Context, userID string) (Stats, error) {
	const query = `
SELECT COUNT(*),
       COALESCE(MAX(score), 0),
       COALESCE(AVG(score), 0)::float8,
       COALESCE((SELECT score FROM score_history WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1), 0)
FROM score_history
WHERE user_id = $1`

	var st Stats
	var avg sql.NullFloat64
	if err := r.DB.QueryRowContext(ctx, query, userID).Scan(&st.Attempts, &st.BestScore, &avg, &st.LatestScore); err != nil {
		return Stats{}, err
	}
	if avg.Valid && !math.IsNaN(avg.Float64) {
		st.AverageScore = avg.Float64
	}
	return st, nil
}

var _ Repo = (*PGRepo)(nil)
