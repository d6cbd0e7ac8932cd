package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var sqliteSchema = []string{
	`
	CREATE TABLE IF NOT EXISTS analysis_sessions (
		id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		url TEXT NOT NULL,
		error TEXT NOT NULL DEFAULT '',
		listing TEXT,
		distances TEXT,
		analysis TEXT,
		created_at TEXT NOT NULL,
		initialized_at TEXT
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS route_cache (
        origin TEXT NOT NULL,
        destination TEXT NOT NULL,
        mode TEXT NOT NULL,
        departure INTEGER NOT NULL,
        duration_seconds INTEGER NOT NULL,
        distance_meters INTEGER NOT NULL,
        created_at INTEGER NOT NULL,
        PRIMARY KEY (origin, destination, mode, departure)
    );
	`,
	`
	CREATE TABLE IF NOT EXISTS place_cache (
        query TEXT PRIMARY KEY,
        places TEXT NOT NULL,
        created_at INTEGER NOT NULL
    );
	`,
	`
	CREATE INDEX IF NOT EXISTS idx_route_cache_created_at
    ON route_cache(created_at);
	`,
}

var postgresSchema = []string{
	`
	CREATE TABLE IF NOT EXISTS analysis_sessions (
		id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		url TEXT NOT NULL,
		error TEXT NOT NULL DEFAULT '',
		listing TEXT,
		distances TEXT,
		analysis TEXT,
		created_at TIMESTAMPTZ NOT NULL,
		initialized_at TIMESTAMPTZ
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS route_cache (
        origin TEXT NOT NULL,
        destination TEXT NOT NULL,
        mode TEXT NOT NULL,
        departure TIMESTAMPTZ NOT NULL,
        duration_seconds INTEGER NOT NULL,
        distance_meters INTEGER NOT NULL,
        created_at TIMESTAMPTZ NOT NULL,
        PRIMARY KEY (origin, destination, mode, departure)
    );
	`,
	`
	CREATE TABLE IF NOT EXISTS place_cache (
        query TEXT PRIMARY KEY,
        places TEXT NOT NULL,
        created_at TIMESTAMPTZ NOT NULL
    );
	`,
	`
	CREATE INDEX IF NOT EXISTS idx_route_cache_created_at
    ON route_cache(created_at);
	`,
}

// Initialize the SQLite database schema.
func InitSchema(db *sql.DB) error {
	return initSchema(db, sqliteSchema)
}

// Initialize the Postgres database schema.
func InitPostgresSchema(db *sql.DB) error {
	return initSchema(db, postgresSchema)
}

func initSchema(db *sql.DB, statements []string) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// PruneCache deletes cache rows created before olderThan and reports how
// many were removed. postgres selects placeholder and timestamp encoding.
func PruneCache(ctx context.Context, db *sql.DB, postgres bool, olderThan time.Time) (int64, error) {
	if db == nil {
		return 0, errors.New("prune cache: DB is nil")
	}

	var cutoff any = olderThan.Unix()
	ph := "?"
	if postgres {
		cutoff = olderThan.UTC()
		ph = "$1"
	}

	var total int64
	for _, table := range []string{"route_cache", "place_cache"} {
		res, err := db.ExecContext(ctx, "DELETE FROM "+table+" WHERE created_at < "+ph, cutoff)
		if err != nil {
			return total, fmt.Errorf("prune cache: delete from %s: %w", table, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("prune cache: rows affected %s: %w", table, err)
		}
		total += n
	}

	return total, nil
}
