package migration

import (
	"context"
	"fmt"

	"skill-swap/internal/database"
)

// statements are applied in order; each entry must be idempotent so startup
// can run the full list every time.
var statements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL DEFAULT '',
		active BOOLEAN NOT NULL DEFAULT TRUE,
		skills_offered TEXT[] NOT NULL DEFAULT '{}',
		skills_wanted TEXT[] NOT NULL DEFAULT '{}',
		location TEXT NOT NULL DEFAULT '',
		languages TEXT[] NOT NULL DEFAULT '{}',
		availability JSONB NOT NULL DEFAULT '{}',
		rating_sum DOUBLE PRECISION NOT NULL DEFAULT 0,
		rating_count INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_users_skills_offered ON users USING GIN (skills_offered)`,
	`CREATE INDEX IF NOT EXISTS idx_users_skills_wanted ON users USING GIN (skills_wanted)`,
	`CREATE TABLE IF NOT EXISTS user_skills (
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		skill_name TEXT NOT NULL,
		level TEXT NOT NULL,
		PRIMARY KEY (user_id, skill_name)
	)`,
	`CREATE TABLE IF NOT EXISTS matches (
		id UUID PRIMARY KEY,
		user1_id UUID NOT NULL REFERENCES users(id),
		user2_id UUID NOT NULL REFERENCES users(id),
		skill_offered_summary TEXT NOT NULL DEFAULT '',
		skill_wanted_summary TEXT NOT NULL DEFAULT '',
		compatibility_score DOUBLE PRECISION NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'pending',
		user1_interest BOOLEAN NOT NULL DEFAULT FALSE,
		user2_interest BOOLEAN NOT NULL DEFAULT FALSE,
		algorithm_data JSONB NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		expires_at TIMESTAMPTZ NOT NULL,
		CONSTRAINT matches_pair_ordered CHECK (user1_id < user2_id),
		CONSTRAINT matches_pair_unique UNIQUE (user1_id, user2_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_matches_user1 ON matches (user1_id, status)`,
	`CREATE INDEX IF NOT EXISTS idx_matches_user2 ON matches (user2_id, status)`,
}

// Apply creates the schema. The matches_pair_unique constraint is what makes
// concurrent match creation race-free: the canonical (user1, user2) ordering
// plus the unique index turns duplicate inserts into no-ops.
func Apply(ctx context.Context, db database.DB) error {
	if db == nil {
		return fmt.Errorf("nil db")
	}
	for i, stmt := range statements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration statement %d: %w", i, err)
		}
	}
	return nil
}
