package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the users table when it does not exist yet. Real
// deployments run migrations out of band; this keeps a fresh database
// usable without them.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id                            TEXT PRIMARY KEY,
			username                      TEXT NOT NULL,
			email                         TEXT NOT NULL,
			password_hash                 TEXT NOT NULL,
			is_verified                   BOOLEAN NOT NULL DEFAULT FALSE,
			is_admin                      BOOLEAN NOT NULL DEFAULT FALSE,
			verify_token                  TEXT,
			verify_token_expiry           TIMESTAMPTZ,
			forgot_password_token         TEXT,
			forgot_password_token_expiry  TIMESTAMPTZ,
			created_at                    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at                    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT users_username_key UNIQUE (username),
			CONSTRAINT users_email_key UNIQUE (email)
		)
	`)

	return err
}
