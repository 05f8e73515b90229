package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Simplici0/fabquote/internal/domain"
)

func (s *Store) RecordActual(ctx context.Context, a domain.Actual) error {
	hours, err := json.Marshal(a.HoursByProcess)
	if err != nil {
		return fmt.Errorf("encode actual hours: %w", err)
	}
	var variance sql.NullFloat64
	if a.VariancePct != nil {
		variance = sql.NullFloat64{Float64: *a.VariancePct, Valid: true}
	}
	if a.RecordedAt.IsZero() {
		a.RecordedAt = s.now()
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO historical_actuals (quote_id, job_type, hours_json, material_cost, notes, variance_pct, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, a.QuoteID, string(a.JobType), string(hours), a.MaterialCost, a.Notes, variance, formatTime(a.RecordedAt))
	if err != nil {
		return fmt.Errorf("insert actual: %w", err)
	}
	return nil
}

func (s *Store) ActualsForJobType(ctx context.Context, jobType domain.JobType) ([]domain.Actual, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT quote_id, job_type, hours_json, material_cost, COALESCE(notes, ''), variance_pct, recorded_at
		FROM historical_actuals
		WHERE job_type = ?
		ORDER BY id
	`, string(jobType))
	if err != nil {
		return nil, fmt.Errorf("query actuals: %w", err)
	}
	defer rows.Close()

	actuals := make([]domain.Actual, 0)
	for rows.Next() {
		var (
			a        domain.Actual
			job      string
			hours    string
			variance sql.NullFloat64
			recorded string
		)
		if err := rows.Scan(&a.QuoteID, &job, &hours, &a.MaterialCost, &a.Notes, &variance, &recorded); err != nil {
			return nil, fmt.Errorf("scan actual: %w", err)
		}
		a.JobType = domain.JobType(job)
		if err := json.Unmarshal([]byte(hours), &a.HoursByProcess); err != nil {
			return nil, fmt.Errorf("decode actual hours: %w", err)
		}
		if variance.Valid {
			v := variance.Float64
			a.VariancePct = &v
		}
		if a.RecordedAt, err = parseTime(recorded); err != nil {
			return nil, err
		}
		actuals = append(actuals, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate actuals: %w", err)
	}
	return actuals, nil
}
