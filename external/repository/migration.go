package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS matches (
		id BIGINT PRIMARY KEY,
		host_id TEXT NOT NULL,
		start_at TIMESTAMPTZ NOT NULL,
		activities JSONB NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		channel_id TEXT NOT NULL DEFAULT '',
		message_id TEXT NOT NULL DEFAULT '',
		recruitment_end_at TIMESTAMPTZ,
		is_recruiting BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_matches_recruiting ON matches (id) WHERE is_recruiting`,
	`CREATE TABLE IF NOT EXISTS match_attendance (
		match_id BIGINT NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL,
		activity TEXT NOT NULL,
		PRIMARY KEY (match_id, user_id, activity)
	)`,
	`CREATE TABLE IF NOT EXISTS match_absence (
		match_id BIGINT NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL,
		activity TEXT NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (match_id, user_id, activity)
	)`,
	`CREATE TABLE IF NOT EXISTS match_reminders (
		match_id BIGINT NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL,
		PRIMARY KEY (match_id, user_id)
	)`,
}

func RunMigration(ctx context.Context, pool *pgxpool.Pool) error {
	for _, s := range migrationStatements {
		stmt := strings.TrimSpace(s)
		if stmt == "" {
			continue
		}
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
