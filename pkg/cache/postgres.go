// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package cache

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// poolIface is the subset of pgxpool.Pool used by PostgresStore.
type poolIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore keeps entries in the brick_cache table.
type PostgresStore struct {
	pool poolIface
}

// NewPostgresStore creates a store over an existing pool.
func NewPostgresStore(pool poolIface) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// OpenPostgres connects to dsn and waits for the database to answer,
// retrying with exponential backoff.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, oops.With("operation", "connect to database").Wrap(err)
	}

	s := NewPostgresStore(pool)
	if err := s.ping(ctx, retry.WithMaxRetries(5, retry.NewExponential(100*time.Millisecond))); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) ping(ctx context.Context, backoff retry.Backoff) error {
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := s.pool.Ping(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return oops.With("operation", "ping database").Wrap(err)
	}
	return nil
}

// Close closes the database connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Put inserts or replaces the entry name.
func (s *PostgresStore) Put(ctx context.Context, name string, data []byte) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO brick_cache (name, data, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (name) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		name, data,
	)
	if err != nil {
		return translate(err, "put cache entry")
	}
	return nil
}

// Get reads the entry name.
func (s *PostgresStore) Get(ctx context.Context, name string) ([]byte, bool, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM brick_cache WHERE name = $1`, name).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, translate(err, "get cache entry")
	}
	return data, true, nil
}

// Has reports whether the entry name exists.
func (s *PostgresStore) Has(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM brick_cache WHERE name = $1)`, name).Scan(&exists)
	if err != nil {
		return false, translate(err, "check cache entry")
	}
	return exists, nil
}

// Clear deletes every entry.
func (s *PostgresStore) Clear(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM brick_cache`); err != nil {
		return translate(err, "clear cache")
	}
	return nil
}

func translate(err error, operation string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UndefinedTable {
		return ErrNotMigrated(err)
	}
	return oops.With("operation", operation).Wrap(err)
}
