package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Simplici0/fabquote/internal/catalog"
	"github.com/Simplici0/fabquote/internal/domain"
)

// Shop reads the quoting profile of the user with email.
func (s *Store) Shop(ctx context.Context, email string) (domain.Shop, error) {
	sh := domain.Shop{Email: email}
	err := s.db.QueryRowContext(ctx, `
		SELECT shop_name, markup_default, rate_inshop, rate_onsite
		FROM users
		WHERE email = ?
	`, email).Scan(&sh.Name, &sh.MarkupDefault, &sh.Rates.InShop, &sh.Rates.OnSite)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Shop{}, fmt.Errorf("shop %s: %w", email, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Shop{}, fmt.Errorf("query shop: %w", err)
	}
	return sh, nil
}

// UpdateShop saves the profile fields of an existing user.
func (s *Store) UpdateShop(ctx context.Context, sh domain.Shop) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET
			shop_name = ?,
			markup_default = ?,
			rate_inshop = ?,
			rate_onsite = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE email = ?
	`, sh.Name, sh.MarkupDefault, sh.Rates.InShop, sh.Rates.OnSite, sh.Email)
	if err != nil {
		return fmt.Errorf("update shop: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update shop: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("shop %s: %w", sh.Email, domain.ErrNotFound)
	}
	return nil
}

// SeededPrices loads every supplier-quoted price for the catalog.
func (s *Store) SeededPrices(ctx context.Context) (map[string]catalog.SeededPrice, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT profile, price_per_foot, supplier FROM seeded_prices`)
	if err != nil {
		return nil, fmt.Errorf("query seeded prices: %w", err)
	}
	defer rows.Close()

	prices := make(map[string]catalog.SeededPrice)
	for rows.Next() {
		var profile string
		var p catalog.SeededPrice
		if err := rows.Scan(&profile, &p.PricePerFoot, &p.Supplier); err != nil {
			return nil, fmt.Errorf("scan seeded price: %w", err)
		}
		prices[profile] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate seeded prices: %w", err)
	}
	return prices, nil
}

// SetSeededPrice records a supplier-quoted price for profile, replacing any
// earlier one.
func (s *Store) SetSeededPrice(ctx context.Context, profile string, p catalog.SeededPrice) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO seeded_prices (profile, price_per_foot, supplier, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(profile) DO UPDATE SET
			price_per_foot = excluded.price_per_foot,
			supplier = excluded.supplier,
			updated_at = excluded.updated_at
	`, profile, p.PricePerFoot, p.Supplier)
	if err != nil {
		return fmt.Errorf("upsert seeded price %s: %w", profile, err)
	}
	return nil
}
