package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Simplici0/fabquote/internal/domain"
)

const customerColumns = `id, name, company, email, phone, address, notes, created_at`

// CreateCustomer inserts c and returns it with its id and creation time.
func (s *Store) CreateCustomer(ctx context.Context, c domain.Customer) (domain.Customer, error) {
	c.CreatedAt = s.now().UTC().Truncate(time.Second)
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO customers (name, company, email, phone, address, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, c.Name, c.Company, c.Email, c.Phone, c.Address, c.Notes, formatTime(c.CreatedAt), formatTime(c.CreatedAt))
	if err != nil {
		return domain.Customer{}, fmt.Errorf("insert customer: %w", err)
	}
	if c.ID, err = result.LastInsertId(); err != nil {
		return domain.Customer{}, fmt.Errorf("read customer id: %w", err)
	}
	return c, nil
}

// Customer reads one customer.
func (s *Store) Customer(ctx context.Context, id int64) (domain.Customer, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = ?`, id)
	c, err := scanCustomer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Customer{}, fmt.Errorf("customer %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Customer{}, fmt.Errorf("query customer: %w", err)
	}
	return c, nil
}

// ListCustomers returns a page of customers ordered by name.
func (s *Store) ListCustomers(ctx context.Context, limit, offset int) ([]domain.Customer, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+customerColumns+`
		FROM customers
		ORDER BY name COLLATE NOCASE, id
		LIMIT ? OFFSET ?
	`, limit, max(offset, 0))
	if err != nil {
		return nil, fmt.Errorf("query customers: %w", err)
	}
	defer rows.Close()

	customers := make([]domain.Customer, 0)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customers: %w", err)
	}
	return customers, nil
}

// UpdateCustomer saves every editable field of an existing customer.
func (s *Store) UpdateCustomer(ctx context.Context, c domain.Customer) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE customers
		SET
			name = ?,
			company = ?,
			email = ?,
			phone = ?,
			address = ?,
			notes = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, c.Name, c.Company, c.Email, c.Phone, c.Address, c.Notes, c.ID)
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("customer %d: %w", c.ID, domain.ErrNotFound)
	}
	return nil
}

// SetQuoteCustomer links a stored quote to a customer. Both must exist.
func (s *Store) SetQuoteCustomer(ctx context.Context, quoteID, customerID int64) error {
	if _, err := s.Customer(ctx, customerID); err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx, `UPDATE quotes SET customer_id = ? WHERE id = ?`, customerID, quoteID)
	if err != nil {
		return fmt.Errorf("link quote customer: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("link quote customer: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("quote %d: %w", quoteID, domain.ErrNotFound)
	}
	return nil
}

// QuotesForCustomer lists a customer's quotes newest first.
func (s *Store) QuotesForCustomer(ctx context.Context, customerID int64) ([]domain.QuoteRecord, error) {
	if _, err := s.Customer(ctx, customerID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+quoteColumns+`
		FROM quotes
		WHERE customer_id = ?
		ORDER BY datetime(created_at) DESC, id DESC
	`, customerID)
	if err != nil {
		return nil, fmt.Errorf("query customer quotes: %w", err)
	}
	defer rows.Close()
	return scanQuotes(rows)
}

func scanCustomer(row scanner) (domain.Customer, error) {
	var (
		c         domain.Customer
		createdAt string
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Company, &c.Email, &c.Phone, &c.Address, &c.Notes, &createdAt); err != nil {
		return domain.Customer{}, err
	}
	t, err := parseTime(createdAt)
	if err != nil {
		return domain.Customer{}, err
	}
	c.CreatedAt = t
	return c, nil
}
