// Package store is the SQLite persistence for sessions, quotes, recorded
// actuals, customers and shop profiles.
package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Simplici0/fabquote/internal/domain"
	"github.com/Simplici0/fabquote/internal/session"
)

// timeLayout matches CURRENT_TIMESTAMP so datetime() ordering works on
// every row.
const timeLayout = "2006-01-02 15:04:05"

// Store implements every persistence port on one database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

var (
	_ session.Store        = (*Store)(nil)
	_ domain.QuoteStore    = (*Store)(nil)
	_ domain.HistoryStore  = (*Store)(nil)
	_ domain.ShopStore     = (*Store)(nil)
	_ domain.CustomerStore = (*Store)(nil)
)

// New wraps an open, migrated database.
func New(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(raw string) (time.Time, error) {
	for _, layout := range []string{timeLayout, time.RFC3339Nano, "2006-01-02T15:04:05Z"} {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse timestamp %q", raw)
}
