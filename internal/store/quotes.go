package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Simplici0/fabquote/internal/domain"
)

// quotePrefix starts every quote number: CS-<year>-<sequence>.
const quotePrefix = "CS"

// AppendQuote numbers and stores q in one transaction. The returned
// record's snapshot carries the assigned id and number.
func (s *Store) AppendQuote(ctx context.Context, q domain.PricedQuote, description string) (domain.QuoteRecord, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.QuoteRecord{}, fmt.Errorf("begin quote transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if q.CreatedAt.IsZero() {
		q.CreatedAt = s.now().UTC()
	}
	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM quotes`).Scan(&count); err != nil {
		return domain.QuoteRecord{}, fmt.Errorf("count quotes: %w", err)
	}
	q.QuoteNumber = fmt.Sprintf("%s-%d-%04d", quotePrefix, q.CreatedAt.Year(), count+1)

	result, err := tx.ExecContext(ctx, `
		INSERT INTO quotes (
			quote_number, session_id, job_type, selected_markup_pct, subtotal, total, project_description, outputs_json, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, '{}', ?)
	`, q.QuoteNumber, q.SessionID, string(q.JobType), q.SelectedMarkup, q.Subtotal, q.Total, description, formatTime(q.CreatedAt))
	if err != nil {
		return domain.QuoteRecord{}, fmt.Errorf("insert quote: %w", err)
	}
	if q.QuoteID, err = result.LastInsertId(); err != nil {
		return domain.QuoteRecord{}, fmt.Errorf("read quote id: %w", err)
	}

	outputs, err := json.Marshal(q)
	if err != nil {
		return domain.QuoteRecord{}, fmt.Errorf("encode quote: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE quotes SET outputs_json = ? WHERE id = ?`, string(outputs), q.QuoteID); err != nil {
		return domain.QuoteRecord{}, fmt.Errorf("store quote snapshot: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.QuoteRecord{}, fmt.Errorf("commit quote transaction: %w", err)
	}

	return domain.QuoteRecord{
		ID:          q.QuoteID,
		Number:      q.QuoteNumber,
		SessionID:   q.SessionID,
		JobType:     q.JobType,
		Subtotal:    q.Subtotal,
		Total:       q.Total,
		Description: description,
		Quote:       q,
		CreatedAt:   q.CreatedAt,
	}, nil
}

// UpdateQuote replaces the snapshot and the columns derived from it.
func (s *Store) UpdateQuote(ctx context.Context, q domain.PricedQuote) error {
	outputs, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("encode quote: %w", err)
	}
	result, err := s.db.ExecContext(ctx, `
		UPDATE quotes
		SET
			selected_markup_pct = ?,
			subtotal = ?,
			total = ?,
			outputs_json = ?
		WHERE id = ?
	`, q.SelectedMarkup, q.Subtotal, q.Total, string(outputs), q.QuoteID)
	if err != nil {
		return fmt.Errorf("update quote: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update quote: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("quote %d: %w", q.QuoteID, domain.ErrNotFound)
	}
	return nil
}

const quoteColumns = `id, quote_number, session_id, job_type, subtotal, total, COALESCE(project_description, ''), outputs_json, created_at, customer_id`

// GetQuote reads the stored snapshot; nothing is recalculated.
func (s *Store) GetQuote(ctx context.Context, id int64) (domain.QuoteRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+quoteColumns+` FROM quotes WHERE id = ?`, id)
	rec, err := scanQuote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.QuoteRecord{}, fmt.Errorf("quote %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.QuoteRecord{}, fmt.Errorf("query quote: %w", err)
	}
	return rec, nil
}

// ListQuotes returns quotes newest first, filtered by number, job type or
// description when query is set.
func (s *Store) ListQuotes(ctx context.Context, query string) ([]domain.QuoteRecord, error) {
	search := "%" + query + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+quoteColumns+`
		FROM quotes
		WHERE (? = '' OR quote_number LIKE ? OR job_type LIKE ? OR COALESCE(project_description, '') LIKE ?)
		ORDER BY datetime(created_at) DESC, id DESC
	`, query, search, search, search)
	if err != nil {
		return nil, fmt.Errorf("query quotes: %w", err)
	}
	defer rows.Close()
	return scanQuotes(rows)
}

func scanQuotes(rows *sql.Rows) ([]domain.QuoteRecord, error) {
	quotes := make([]domain.QuoteRecord, 0)
	for rows.Next() {
		rec, err := scanQuote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		quotes = append(quotes, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quotes: %w", err)
	}
	return quotes, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanQuote(row scanner) (domain.QuoteRecord, error) {
	var (
		rec        domain.QuoteRecord
		jobType    string
		outputs    string
		createdAt  string
		customerID sql.NullInt64
	)
	if err := row.Scan(&rec.ID, &rec.Number, &rec.SessionID, &jobType, &rec.Subtotal, &rec.Total,
		&rec.Description, &outputs, &createdAt, &customerID); err != nil {
		return domain.QuoteRecord{}, err
	}
	rec.JobType = domain.JobType(jobType)
	if customerID.Valid {
		rec.CustomerID = &customerID.Int64
	}
	if err := json.Unmarshal([]byte(outputs), &rec.Quote); err != nil {
		return domain.QuoteRecord{}, fmt.Errorf("decode quote %d: %w", rec.ID, err)
	}
	t, err := parseTime(createdAt)
	if err != nil {
		return domain.QuoteRecord{}, err
	}
	rec.CreatedAt = t
	return rec, nil
}
