package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/agenghermawan/clandestineproject/internal/audit"
)

const schema = `
CREATE TABLE IF NOT EXISTS admin_audit_events (
	id             UUID PRIMARY KEY,
	occurred_at    TIMESTAMPTZ NOT NULL,
	action         TEXT NOT NULL,
	actor_id       TEXT NOT NULL,
	target_user_id TEXT NOT NULL DEFAULT '',
	request_id     TEXT NOT NULL DEFAULT '',
	client_ip      TEXT NOT NULL DEFAULT '',
	device         TEXT NOT NULL DEFAULT '',
	outcome        INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS admin_audit_events_occurred_at_idx ON admin_audit_events (occurred_at DESC);
`

// Store persists admin audit events in PostgreSQL.
type Store struct {
	db *sql.DB
}

// New creates a PostgreSQL audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the events table when it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create audit schema: %w", err)
	}
	return nil
}

// Append inserts an event. Replays of the same event id are ignored.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	query := `
		INSERT INTO admin_audit_events (
			id, occurred_at, action, actor_id, target_user_id,
			request_id, client_ip, device, outcome
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query,
		event.ID,
		event.Timestamp,
		string(event.Action),
		event.ActorID,
		event.TargetUserID,
		event.RequestID,
		event.ClientIP,
		event.Device,
		event.Outcome,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListRecent returns up to limit events, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT id, occurred_at, action, actor_id, target_user_id,
		       request_id, client_ip, device, outcome
		FROM admin_audit_events
		ORDER BY occurred_at DESC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var e audit.Event
		var action string
		if err := rows.Scan(
			&e.ID,
			&e.Timestamp,
			&action,
			&e.ActorID,
			&e.TargetUserID,
			&e.RequestID,
			&e.ClientIP,
			&e.Device,
			&e.Outcome,
		); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Action = audit.Action(action)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
