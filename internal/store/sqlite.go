package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteCache implements Cache using modernc.org/sqlite.
type SQLiteCache struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteCache{db: db, now: time.Now}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS document_cache (
	cache_key  TEXT PRIMARY KEY,
	data       BLOB NOT NULL,
	fetched_at INTEGER NOT NULL,
	expires_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_document_cache_expires_at ON document_cache(expires_at);
`

// Migrate creates the cache schema if it does not exist.
func (s *SQLiteCache) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

// Close closes the underlying database.
func (s *SQLiteCache) Close() error {
	return s.db.Close()
}

// GetCached returns a live entry, or nil when missing or expired.
func (s *SQLiteCache) GetCached(ctx context.Context, key string) ([]byte, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT data FROM document_cache WHERE cache_key = ? AND expires_at > ?`,
		key, s.now().UnixNano(),
	)

	var data []byte
	err := row.Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get cached %s", key)
	}
	return data, nil
}

// SetCached upserts an entry that expires after ttl.
func (s *SQLiteCache) SetCached(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	now := s.now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO document_cache (cache_key, data, fetched_at, expires_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(cache_key) DO UPDATE SET data = excluded.data,
		   fetched_at = excluded.fetched_at, expires_at = excluded.expires_at`,
		key, data, now.UnixNano(), now.Add(ttl).UnixNano(),
	)
	return eris.Wrapf(err, "sqlite: set cached %s", key)
}

// DeleteExpired removes expired entries and reports how many were dropped.
func (s *SQLiteCache) DeleteExpired(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM document_cache WHERE expires_at <= ?`,
		s.now().UnixNano(),
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: delete expired")
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "sqlite: rows affected")
}
