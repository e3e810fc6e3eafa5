package accesslog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"rose-hq/rosegate/pkg/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS access_records (
    id           TEXT PRIMARY KEY,
    timestamp    INTEGER NOT NULL,
    request_id   TEXT NOT NULL,
    method       TEXT NOT NULL,
    path         TEXT NOT NULL,
    route        TEXT NOT NULL,
    status       INTEGER NOT NULL,
    bytes_sent   INTEGER NOT NULL,
    duration_ms  INTEGER NOT NULL,
    remote_addr  TEXT NOT NULL,
    user_agent   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_access_records_timestamp ON access_records (timestamp);
CREATE INDEX IF NOT EXISTS idx_access_records_request_id ON access_records (request_id);
`

// SQLiteStore persists access records in a local SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (creating if necessary) the database at the
// configured path and ensures the schema exists.
func NewSQLiteStore(cfg *config.SQLiteConfig) (*SQLiteStore, error) {
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %q: %w", dir, err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d", cfg.Path, cfg.BusyTimeout.Milliseconds())
	if cfg.WALMode {
		dsn += "&_journal_mode=WAL"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %q: %w", cfg.Path, err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database %q: %w", cfg.Path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: slog.Default().With("component", "accesslog.storage"),
	}, nil
}

// Insert writes one record.
func (s *SQLiteStore) Insert(ctx context.Context, rec Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO access_records
		 (id, timestamp, request_id, method, path, route, status, bytes_sent, duration_ms, remote_addr, user_agent)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Timestamp.UnixMilli(), rec.RequestID, rec.Method, rec.Path,
		rec.Route, rec.Status, rec.BytesSent, rec.DurationMs, rec.RemoteAddr, rec.UserAgent,
	)
	if err != nil {
		return fmt.Errorf("failed to insert access record: %w", err)
	}
	return nil
}

// Count returns the number of stored records.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM access_records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count access records: %w", err)
	}
	return n, nil
}

// DeleteOlderThan removes records whose timestamp precedes cutoff and
// returns how many were deleted.
func (s *SQLiteStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM access_records WHERE timestamp < ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to prune access records: %w", err)
	}
	return res.RowsAffected()
}

// DeleteOverCount removes the oldest records beyond maxRecords and returns
// how many were deleted.
func (s *SQLiteStore) DeleteOverCount(ctx context.Context, maxRecords int64) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM access_records WHERE id IN (
		    SELECT id FROM access_records ORDER BY timestamp DESC LIMIT -1 OFFSET ?
		 )`, maxRecords)
	if err != nil {
		return 0, fmt.Errorf("failed to prune access records by count: %w", err)
	}
	return res.RowsAffected()
}

// Ping verifies the database connection, for readiness checks.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
