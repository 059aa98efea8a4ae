package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dskvich/instructional-pages/pkg/activity"
)

type activityPostgresRepository struct {
	db *sql.DB
}

func NewActivityPostgresRepository(db *sql.DB) *activityPostgresRepository {
	return &activityPostgresRepository{db: db}
}

func (r *activityPostgresRepository) Append(ctx context.Context, entry activity.Entry) error {
	const query = `
		INSERT INTO activity_log (id, ts, category, action, details, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	details, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("marshaling details: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, entry.ID, entry.Timestamp, entry.Category, entry.Action, details, entry.DurationMS); err != nil {
		return fmt.Errorf("saving activity entry: %w", err)
	}
	return nil
}

func (r *activityPostgresRepository) SetDuration(ctx context.Context, id string, durationMS int64) error {
	const query = `UPDATE activity_log SET duration_ms = $2 WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id, durationMS); err != nil {
		return fmt.Errorf("updating activity duration: %w", err)
	}
	return nil
}

func (r *activityPostgresRepository) Recent(ctx context.Context, limit int) ([]activity.Entry, error) {
	const query = `
		SELECT id, ts, category, action, details, duration_ms
		FROM activity_log
		ORDER BY ts DESC
		LIMIT $1
	`

	if limit <= 0 {
		limit = defaultMaxEntries
	}

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("fetching recent activity: %w", err)
	}
	defer rows.Close()

	var entries []activity.Entry
	for rows.Next() {
		var e activity.Entry
		var details []byte
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Category, &e.Action, &details, &e.DurationMS); err != nil {
			return nil, fmt.Errorf("scanning activity entry: %w", err)
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &e.Details); err != nil {
				return nil, fmt.Errorf("unmarshaling details: %w", err)
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *activityPostgresRepository) Stats(ctx context.Context, now time.Time) (activity.Stats, error) {
	var stats activity.Stats

	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM activity_log`).Scan(&stats.TotalEntries); err != nil {
		return stats, fmt.Errorf("counting activity entries: %w", err)
	}

	windows := []struct {
		since time.Time
		dst   *activity.WindowStats
	}{
		{now.Add(-5 * time.Minute), &stats.Last5Minutes},
		{now.Add(-time.Hour), &stats.LastHour},
		{now.Add(-24 * time.Hour), &stats.Last24Hours},
	}

	const query = `
		SELECT
			count(*),
			count(*) FILTER (WHERE category = 'api_call'),
			count(*) FILTER (WHERE category = 'image_gen'),
			count(*) FILTER (WHERE category = 'image_upload'),
			count(*) FILTER (WHERE category = 'error'),
			COALESCE(SUM(
				COALESCE((details->>'inputTokens')::bigint, 0) +
				COALESCE((details->>'outputTokens')::bigint, 0)
			), 0)
		FROM activity_log
		WHERE ts > $1
	`

	for _, w := range windows {
		err := r.db.QueryRowContext(ctx, query, w.since).
			Scan(&w.dst.Total, &w.dst.APICalls, &w.dst.ImageGenerations, &w.dst.ImageUploads, &w.dst.Errors, &w.dst.TokensUsed)
		if err != nil {
			return stats, fmt.Errorf("aggregating activity window: %w", err)
		}
	}
	return stats, nil
}

func (r *activityPostgresRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM activity_log`); err != nil {
		return fmt.Errorf("clearing activity log: %w", err)
	}
	return nil
}
