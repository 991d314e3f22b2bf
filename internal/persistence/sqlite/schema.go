package sqlite

import (
	"context"
	"fmt"
)

// schemaStatements holds the bootstrap DDL. Every statement is
// idempotent so Bootstrap can run on every startup.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		email         TEXT NOT NULL COLLATE NOCASE UNIQUE,
		display_name  TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		is_admin      INTEGER NOT NULL DEFAULT 0,
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS areas (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL COLLATE NOCASE UNIQUE,
		location    TEXT,
		category    TEXT NOT NULL CHECK (category IN ('MEETING_ROOM', 'HOT_DESK')),
		capacity    INTEGER NOT NULL CHECK (capacity > 0),
		is_full_day INTEGER NOT NULL DEFAULT 0,
		min_minutes INTEGER NOT NULL DEFAULT 0,
		max_minutes INTEGER NOT NULL DEFAULT 0,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS reservations (
		id            TEXT PRIMARY KEY,
		area_id       TEXT NOT NULL REFERENCES areas(id),
		creator_id    TEXT NOT NULL REFERENCES users(id),
		collaborators TEXT NOT NULL DEFAULT '',
		date          TEXT NOT NULL,
		start_time    TEXT,
		end_time      TEXT,
		seats         INTEGER NOT NULL CHECK (seats > 0),
		status        TEXT NOT NULL CHECK (status IN ('pending', 'confirmed', 'active', 'completed', 'cancelled')),
		notes         TEXT,
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS reservations_live_slot
		ON reservations (area_id, date, IFNULL(start_time, ''), IFNULL(end_time, ''), creator_id)
		WHERE status != 'cancelled'`,
	`CREATE INDEX IF NOT EXISTS reservations_area_date
		ON reservations (area_id, date)`,
	`CREATE TABLE IF NOT EXISTS policy (
		id                   INTEGER PRIMARY KEY CHECK (id = 1),
		office_days          TEXT NOT NULL,
		office_hours_start   INTEGER NOT NULL,
		office_hours_end     INTEGER NOT NULL,
		business_hours_start INTEGER NOT NULL,
		business_hours_end   INTEGER NOT NULL,
		max_days_ahead       INTEGER NOT NULL,
		allow_same_day       INTEGER NOT NULL,
		require_approval     INTEGER NOT NULL,
		updated_at           TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL REFERENCES users(id),
		token      TEXT NOT NULL UNIQUE,
		expires_at TEXT NOT NULL,
		created_at TEXT NOT NULL,
		revoked_at TEXT
	)`,
}

// Bootstrap creates the schema if it does not exist yet.
func (cp *ConnectionPool) Bootstrap(ctx context.Context) error {
	for _, statement := range schemaStatements {
		if _, err := cp.db.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("failed to bootstrap schema: %w", err)
		}
	}
	return nil
}
