package database

import (
	"context"
	"database/sql"
	"fmt"

	"checklist-api/pkg/logger"
)

// Referencing columns carry no foreign keys: deleting a checklist or profile
// leaves its dependents in place.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS profiles (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		avatar_url    TEXT,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS checklists (
		id             TEXT PRIMARY KEY,
		profile_id     TEXT NOT NULL,
		title          TEXT NOT NULL,
		is_shared_copy BOOLEAN NOT NULL DEFAULT FALSE,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS checklists_profile_idx ON checklists (profile_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id             TEXT PRIMARY KEY,
		seq            BIGSERIAL,
		checklist_id   TEXT NOT NULL,
		parent_id      TEXT,
		title          TEXT NOT NULL,
		description    TEXT,
		order_number   INTEGER NOT NULL DEFAULT 0,
		start_time     TIMESTAMPTZ,
		end_time       TIMESTAMPTZ,
		allocated_time INTEGER,
		is_completed   BOOLEAN NOT NULL DEFAULT FALSE,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS tasks_checklist_idx ON tasks (checklist_id, created_at, seq)`,
	`CREATE TABLE IF NOT EXISTS share_requests (
		id           TEXT PRIMARY KEY,
		checklist_id TEXT NOT NULL,
		sender_id    TEXT NOT NULL,
		receiver_id  TEXT NOT NULL,
		status       TEXT NOT NULL DEFAULT 'pending'
		             CHECK (status IN ('pending', 'accepted', 'rejected')),
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS share_requests_receiver_idx ON share_requests (receiver_id, status)`,
	`CREATE TABLE IF NOT EXISTS timer_logs (
		id              TEXT PRIMARY KEY,
		checklist_id    TEXT NOT NULL,
		elapsed_seconds INTEGER NOT NULL CHECK (elapsed_seconds >= 0),
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS timer_logs_checklist_idx ON timer_logs (checklist_id, created_at DESC)`,
}

// MigrateOrCreateSchema creates all tables and indexes if they do not exist.
func MigrateOrCreateSchema(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	logger.Info(ctx, "Schema ensured", "statements", len(schema))
	return nil
}
