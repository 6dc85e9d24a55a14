package testutil

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// advisoryLockID serializes integration tests that share a database.
const advisoryLockID = 764201

// AcquireDBLock takes a session-level advisory lock so concurrent test
// packages do not trample each other's data. The returned function
// releases the lock.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ResetSchema empties all tables and restores the seeded default group.
// Assumes migrations have already been applied.
func ResetSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx,
		"TRUNCATE quotes, memberships, groups, users RESTART IDENTITY CASCADE",
	); err != nil {
		return fmt.Errorf("truncate tables: %w", err)
	}

	if _, err := pool.Exec(ctx,
		"INSERT INTO groups (name) VALUES ('Everyone') ON CONFLICT (name) DO NOTHING",
	); err != nil {
		return fmt.Errorf("seed default group: %w", err)
	}

	return nil
}
