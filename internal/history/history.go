// Package history implements the History DB collaborator: a sqlite-backed
// record of which installed (name, arch) pairs were installed directly by
// the user, the FilterUserInstalled primitive internal/query's unneeded/
// safe-to-remove reducers need but cannot derive from the pool alone.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/rpmgoal/rpmgoal/internal/goal"
	"github.com/rpmgoal/rpmgoal/internal/idset"
	"github.com/rpmgoal/rpmgoal/internal/pool"
)

// DB holds the history store with separate read/write pools, mirroring
// the single-writer/many-readers sqlite pattern every install/erase run
// needs for safe concurrent CLI invocations.
type DB struct {
	write *sql.DB
	read  *sql.DB
	pool  *pool.Pool
	path  string
}

// Open opens (or creates) the history database at dbPath and ensures its
// schema exists. p is the pool DB records are resolved against when
// answering FilterUserInstalled.
func Open(ctx context.Context, dbPath string, p *pool.Pool) (*DB, error) {
	connStr := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", dbPath)

	write, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open write connection: %w", err)
	}
	write.SetMaxOpenConns(1)
	write.SetMaxIdleConns(1)
	write.SetConnMaxIdleTime(time.Minute)
	write.SetConnMaxLifetime(time.Hour)

	read, err := sql.Open("sqlite", connStr)
	if err != nil {
		write.Close()
		return nil, fmt.Errorf("open read connection: %w", err)
	}
	read.SetMaxOpenConns(10)
	read.SetMaxIdleConns(5)
	read.SetConnMaxIdleTime(time.Minute)
	read.SetConnMaxLifetime(time.Hour)

	db := &DB{write: write, read: read, pool: p, path: dbPath}
	if err := db.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return db, nil
}

// Close closes both connections.
func (db *DB) Close() error {
	writeErr := db.write.Close()
	readErr := db.read.Close()
	if writeErr != nil {
		return writeErr
	}
	return readErr
}

func (db *DB) initSchema(ctx context.Context) error {
	schema := `
CREATE TABLE IF NOT EXISTS user_installed (
    name TEXT NOT NULL,
    arch TEXT NOT NULL,
    reason TEXT NOT NULL,
    recorded_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (name, arch)
);

CREATE INDEX IF NOT EXISTS idx_user_installed_name ON user_installed(name);
`
	_, err := db.write.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Record upserts a (name, arch) pair as user-installed under reason,
// called once per Goal.GetReason(id) == ReasonUser after a successful
// transaction.
func (db *DB) Record(ctx context.Context, name, arch string, reason goal.Reason) error {
	_, err := db.write.ExecContext(ctx, `
INSERT INTO user_installed (name, arch, reason, recorded_at)
VALUES (?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(name, arch) DO UPDATE SET reason = excluded.reason, recorded_at = excluded.recorded_at
`, name, arch, reason.String())
	if err != nil {
		return fmt.Errorf("record user install %s.%s: %w", name, arch, err)
	}
	return nil
}

// Forget removes a (name, arch) pair, called after its package is erased.
func (db *DB) Forget(ctx context.Context, name, arch string) error {
	_, err := db.write.ExecContext(ctx, "DELETE FROM user_installed WHERE name = ? AND arch = ?", name, arch)
	if err != nil {
		return fmt.Errorf("forget %s.%s: %w", name, arch, err)
	}
	return nil
}

// userInstalledKeys loads every recorded (name, arch) pair.
func (db *DB) userInstalledKeys(ctx context.Context) (map[[2]string]bool, error) {
	rows, err := db.read.QueryContext(ctx, "SELECT name, arch FROM user_installed")
	if err != nil {
		return nil, fmt.Errorf("query user_installed: %w", err)
	}
	defer rows.Close()

	keys := make(map[[2]string]bool)
	for rows.Next() {
		var name, arch string
		if err := rows.Scan(&name, &arch); err != nil {
			return nil, fmt.Errorf("scan user_installed row: %w", err)
		}
		keys[[2]string{name, arch}] = true
	}
	return keys, rows.Err()
}

// FilterUserInstalled restricts candidates to ids whose (name, arch) was
// recorded as user-installed, implementing internal/query's
// HistoryProvider interface. A query error degrades to an empty result
// rather than panicking, since this runs inside a read-only reducer.
func (db *DB) FilterUserInstalled(candidates *idset.PackageSet) *idset.PackageSet {
	keys, err := db.userInstalledKeys(context.Background())
	result := idset.New()
	if err != nil {
		return result
	}
	candidates.Each(func(id int) {
		sv, ok := db.pool.Get(id)
		if !ok {
			return
		}
		if keys[[2]string{sv.Name, sv.Arch}] {
			result.Set(id)
		}
	})
	return result
}
