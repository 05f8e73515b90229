package seed

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/Simplici0/fabquote/internal/auth"
	"github.com/Simplici0/fabquote/internal/catalog"
	"github.com/Simplici0/fabquote/internal/db"
	"github.com/Simplici0/fabquote/internal/domain"
	"github.com/Simplici0/fabquote/internal/migrations"
)

func newSeedTestDB(t *testing.T) *sql.DB {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "seed-test.db"))
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	if err := migrations.Up(database); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return database
}

func TestRunIsIdempotent(t *testing.T) {
	database := newSeedTestDB(t)

	cfg := Config{
		AdminEmail:    "admin@shop.com",
		AdminPassword: "12345",
		ShopName:      "Desert Iron Works",
		Rates:         domain.Rates{InShop: 110, OnSite: 135},
		MarkupDefault: 20,
		SeededPrices: map[string]catalog.SeededPrice{
			"sq_tube_2x2_11ga": {PricePerFoot: 4.10, Supplier: "Osorio"},
			"flat_bar_2x0.25":  {PricePerFoot: 1.85, Supplier: "Osorio"},
			"ignored":          {PricePerFoot: 0},
		},
	}

	for i := 0; i < 10; i++ {
		stats, err := Run(database, cfg)
		if err != nil {
			t.Fatalf("run seed (iteration=%d): %v", i, err)
		}
		if i == 0 {
			if stats.Inserts != 3 {
				t.Fatalf("expected 3 inserts in first run, got %d", stats.Inserts)
			}
			continue
		}
		if stats.Inserts != 0 || stats.Updates != 0 {
			t.Fatalf("expected no changes in iteration %d, got %+v", i, stats)
		}
	}

	assertCount(t, database, `SELECT COUNT(*) FROM users WHERE email = ?`, "admin@shop.com", 1)
	assertCount(t, database, `SELECT COUNT(*) FROM seeded_prices`, nil, 2)

	var (
		hash   string
		name   string
		markup int
		inShop float64
	)
	if err := database.QueryRow(`SELECT password_hash, shop_name, markup_default, rate_inshop FROM users WHERE email = ?`, "admin@shop.com").
		Scan(&hash, &name, &markup, &inShop); err != nil {
		t.Fatalf("query admin: %v", err)
	}
	if !auth.CheckPassword(hash, "12345") {
		t.Fatalf("expected admin hash to match password")
	}
	if name != "Desert Iron Works" || markup != 20 || inShop != 110 {
		t.Fatalf("admin profile = %q %d %v", name, markup, inShop)
	}
}

func TestRunUpdatesChangedPrices(t *testing.T) {
	database := newSeedTestDB(t)

	cfg := Config{SeededPrices: map[string]catalog.SeededPrice{
		"sq_tube_2x2_11ga": {PricePerFoot: 4.10, Supplier: "Osorio"},
	}}
	if _, err := Run(database, cfg); err != nil {
		t.Fatalf("first run: %v", err)
	}

	cfg.SeededPrices["sq_tube_2x2_11ga"] = catalog.SeededPrice{PricePerFoot: 4.35, Supplier: "Osorio"}
	stats, err := Run(database, cfg)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if stats.Inserts != 0 || stats.Updates != 1 {
		t.Fatalf("stats = %+v, want 0 inserts and 1 update", stats)
	}

	var price float64
	if err := database.QueryRow(`SELECT price_per_foot FROM seeded_prices WHERE profile = ?`, "sq_tube_2x2_11ga").Scan(&price); err != nil {
		t.Fatalf("query price: %v", err)
	}
	if price != 4.35 {
		t.Fatalf("price = %v, want 4.35", price)
	}
}

func TestRunSkipsAdminWithoutCredentials(t *testing.T) {
	database := newSeedTestDB(t)

	stats, err := Run(database, Config{AdminEmail: "admin@shop.com"})
	if err != nil {
		t.Fatalf("run seed: %v", err)
	}
	if stats.Inserts != 0 {
		t.Fatalf("expected no inserts, got %d", stats.Inserts)
	}
	assertCount(t, database, `SELECT COUNT(*) FROM users`, nil, 0)
}

func assertCount(t *testing.T, database *sql.DB, query string, args any, expected int) {
	t.Helper()

	var count int
	var err error
	switch v := args.(type) {
	case nil:
		err = database.QueryRow(query).Scan(&count)
	case []any:
		err = database.QueryRow(query, v...).Scan(&count)
	default:
		err = database.QueryRow(query, v).Scan(&count)
	}
	if err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != expected {
		t.Fatalf("expected count %d, got %d", expected, count)
	}
}
