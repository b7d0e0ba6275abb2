package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"hash/fnv"
)

// SQLExecutor lets repository methods run against either *sql.DB or an open
// *sql.Tx, so a service can compose several repository calls into one
// transaction.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundError
	}
	return nil
}

// rebuildLockKey maps a (competition, category) pair onto the int64 keyspace
// of Postgres advisory locks. Collisions between different keys only cause
// needless serialization, never corruption.
func rebuildLockKey(competitionID int, categoryKey string) int64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "bracket:%d:%s", competitionID, categoryKey)
	return int64(h.Sum64())
}

// AcquireRebuildLock takes the exclusive transaction-scoped advisory lock
// for one (competition, category) key. It blocks until the lock is granted
// and releases automatically at commit/rollback. Rebuilds take it
// exclusively; result writes take the shared variant, so a rebuild can
// never interleave with result recording on the bracket it is replacing.
func AcquireRebuildLock(ctx context.Context, exec SQLExecutor, competitionID int, categoryKey string) error {
	_, err := exec.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, rebuildLockKey(competitionID, categoryKey))
	if err != nil {
		return fmt.Errorf("failed to acquire rebuild lock for competition %d category %q: %w", competitionID, categoryKey, err)
	}
	return nil
}

// AcquireRecordLock takes the shared counterpart of AcquireRebuildLock.
func AcquireRecordLock(ctx context.Context, exec SQLExecutor, competitionID int, categoryKey string) error {
	_, err := exec.ExecContext(ctx, `SELECT pg_advisory_xact_lock_shared($1)`, rebuildLockKey(competitionID, categoryKey))
	if err != nil {
		return fmt.Errorf("failed to acquire record lock for competition %d category %q: %w", competitionID, categoryKey, err)
	}
	return nil
}
