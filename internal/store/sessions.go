package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Simplici0/fabquote/internal/domain"
	"github.com/Simplici0/fabquote/internal/session"
)

func (s *Store) Create(ctx context.Context, sess *session.Session) error {
	sess.Version = 1
	state, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO quote_sessions (id, owner, job_type, stage, version, state_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, sess.ID, sess.Owner, string(sess.JobType), string(sess.Stage()), sess.Version, string(state),
		formatTime(sess.CreatedAt), formatTime(sess.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*session.Session, error) {
	var state string
	var version int
	err := s.db.QueryRowContext(ctx, `SELECT state_json, version FROM quote_sessions WHERE id = ?`, id).Scan(&state, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}
	var sess session.Session
	if err := json.Unmarshal([]byte(state), &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	sess.Version = version
	return &sess, nil
}

// Update writes sess only if the row is still at sess.Version.
func (s *Store) Update(ctx context.Context, sess *session.Session) error {
	next := sess.Version + 1
	stored := *sess
	stored.Version = next
	state, err := json.Marshal(&stored)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE quote_sessions
		SET
			job_type = ?,
			stage = ?,
			version = ?,
			state_json = ?,
			updated_at = ?
		WHERE id = ? AND version = ?
	`, string(sess.JobType), string(sess.Stage()), next, string(state), formatTime(sess.UpdatedAt), sess.ID, sess.Version)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if affected == 0 {
		var exists bool
		if err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM quote_sessions WHERE id = ?)`, sess.ID).Scan(&exists); err != nil {
			return fmt.Errorf("check session existence: %w", err)
		}
		if !exists {
			return fmt.Errorf("session %s: %w", sess.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("session %s at version %d: %w", sess.ID, sess.Version, domain.ErrVersionConflict)
	}
	sess.Version = next
	return nil
}
