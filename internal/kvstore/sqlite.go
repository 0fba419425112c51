package kvstore

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	ierr "github.com/hiretrack/hiretrack/internal/errors"
	"github.com/hiretrack/hiretrack/internal/logger"
	_ "modernc.org/sqlite"
)

// SQLiteStore persists values in a single table of a SQLite file. Several
// processes may open the same file; writes that hit a lock are retried.
type SQLiteStore struct {
	DB           *sql.DB
	path         string
	busyRetryMax uint64
	logger       *logger.Logger
}

// OpenSQLite opens (and migrates) the store at path
func OpenSQLite(ctx context.Context, path string, busyRetryMax uint64, log *logger.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Unable to open local store at %s", path).
			Mark(ierr.ErrDatabase)
	}

	s := &SQLiteStore{DB: db, path: path, busyRetryMax: busyRetryMax, logger: log}
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	return s.withBusyRetry(ctx, "migrate", func() error {
		_, err := s.DB.ExecContext(ctx, `
PRAGMA journal_mode = WAL;
PRAGMA busy_timeout = 1000;

CREATE TABLE IF NOT EXISTS kv (
	key TEXT PRIMARY KEY,
	value BLOB NOT NULL,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`)
		return err
	})
}

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.withBusyRetry(ctx, "get", func() error {
		return s.DB.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	})
	switch {
	case ierr.Is(err, sql.ErrNoRows):
		return nil, false, nil
	case err != nil:
		return nil, false, ierr.WithError(err).
			WithHint("Unable to read from local store").
			WithReportableDetails(map[string]any{"key": key}).
			Mark(ierr.ErrDatabase)
	}
	return value, true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte) error {
	err := s.withBusyRetry(ctx, "set", func() error {
		_, err := s.DB.ExecContext(ctx, `
			INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			key, value, time.Now().UTC(),
		)
		return err
	})
	if err != nil {
		return ierr.WithError(err).
			WithHint("Unable to write to local store").
			WithReportableDetails(map[string]any{"key": key}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	err := s.withBusyRetry(ctx, "delete", func() error {
		_, err := s.DB.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
		return err
	})
	if err != nil {
		return ierr.WithError(err).
			WithHint("Unable to write to local store").
			WithReportableDetails(map[string]any{"key": key}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (s *SQLiteStore) DeleteIf(ctx context.Context, key string, expected []byte) (bool, error) {
	var deleted int64
	err := s.withBusyRetry(ctx, "delete_if", func() error {
		res, err := s.DB.ExecContext(ctx, `DELETE FROM kv WHERE key = ? AND value = ?`, key, expected)
		if err != nil {
			return err
		}
		deleted, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return false, ierr.WithError(err).
			WithHint("Unable to write to local store").
			WithReportableDetails(map[string]any{"key": key}).
			Mark(ierr.ErrDatabase)
	}
	return deleted > 0, nil
}

func (s *SQLiteStore) Path() string { return s.path }

func (s *SQLiteStore) Close() error {
	return s.DB.Close()
}

// withBusyRetry retries op while SQLite reports the database as locked by
// another process. Any other error stops immediately.
func (s *SQLiteStore) withBusyRetry(ctx context.Context, opName string, op func() error) error {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), s.busyRetryMax),
		ctx,
	)
	return backoff.RetryNotify(func() error {
		err := op()
		if err != nil && !isBusy(err) {
			return backoff.Permanent(err)
		}
		return err
	}, policy, func(err error, wait time.Duration) {
		s.logger.Debugw("local store busy, retrying", "op", opName, "wait", wait, "error", err)
	})
}

func isBusy(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}
