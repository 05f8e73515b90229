package seed

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/Simplici0/fabquote/internal/auth"
	"github.com/Simplici0/fabquote/internal/catalog"
	"github.com/Simplici0/fabquote/internal/domain"
)

// Config contains the values required by startup seed.
type Config struct {
	AdminEmail    string
	AdminPassword string
	ShopName      string
	// Rates and MarkupDefault initialise a new admin's shop profile. Zero
	// values keep the column defaults.
	Rates         domain.Rates
	MarkupDefault int
	SeededPrices  map[string]catalog.SeededPrice
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Updates int
}

// Run executes the startup seed in an idempotent way.
func Run(db *sql.DB, cfg Config) (Stats, error) {
	tx, err := db.Begin()
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	if err := seedAdmin(tx, cfg, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := upsertSeededPrices(tx, cfg.SeededPrices, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func seedAdmin(tx *sql.Tx, cfg Config, stats *Stats) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM users WHERE email = ? LIMIT 1)`, cfg.AdminEmail).Scan(&exists); err != nil {
		return fmt.Errorf("check admin user existence: %w", err)
	}
	if exists {
		return nil
	}

	hash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	if _, err := tx.Exec(`INSERT INTO users (email, password_hash, shop_name) VALUES (?, ?, ?)`,
		cfg.AdminEmail, hash, cfg.ShopName); err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}
	if cfg.Rates.InShop > 0 && cfg.Rates.OnSite > 0 {
		if _, err := tx.Exec(`UPDATE users SET rate_inshop = ?, rate_onsite = ? WHERE email = ?`,
			cfg.Rates.InShop, cfg.Rates.OnSite, cfg.AdminEmail); err != nil {
			return fmt.Errorf("set admin rates: %w", err)
		}
	}
	if cfg.MarkupDefault > 0 {
		if _, err := tx.Exec(`UPDATE users SET markup_default = ? WHERE email = ?`, cfg.MarkupDefault, cfg.AdminEmail); err != nil {
			return fmt.Errorf("set admin markup: %w", err)
		}
	}
	stats.Inserts++
	return nil
}

// upsertSeededPrices inserts new profiles and rewrites changed ones.
// Unchanged rows are left alone so a re-run reports nothing.
func upsertSeededPrices(tx *sql.Tx, prices map[string]catalog.SeededPrice, stats *Stats) error {
	profiles := make([]string, 0, len(prices))
	for p := range prices {
		profiles = append(profiles, p)
	}
	sort.Strings(profiles)

	for _, profile := range profiles {
		price := prices[profile]
		if price.PricePerFoot <= 0 {
			continue
		}

		var current catalog.SeededPrice
		err := tx.QueryRow(`SELECT price_per_foot, supplier FROM seeded_prices WHERE profile = ?`, profile).
			Scan(&current.PricePerFoot, &current.Supplier)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			if _, err := tx.Exec(`
				INSERT INTO seeded_prices (profile, price_per_foot, supplier)
				VALUES (?, ?, ?)
			`, profile, price.PricePerFoot, price.Supplier); err != nil {
				return fmt.Errorf("insert seeded price %s: %w", profile, err)
			}
			stats.Inserts++
		case err != nil:
			return fmt.Errorf("check seeded price %s: %w", profile, err)
		case current != price:
			if _, err := tx.Exec(`
				UPDATE seeded_prices
				SET price_per_foot = ?, supplier = ?, updated_at = CURRENT_TIMESTAMP
				WHERE profile = ?
			`, price.PricePerFoot, price.Supplier, profile); err != nil {
				return fmt.Errorf("update seeded price %s: %w", profile, err)
			}
			stats.Updates++
		}
	}
	return nil
}
