// Package postgres persists the catalog, market snapshots and run headers in PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"prun-economy-lab/internal/storage"
)

const applicationName = "prun-economy-lab"

// SQLSTATE codes translated into storage errors.
const (
	codeNotNullViolation = "23502"
	codeUniqueViolation  = "23505"
	codeCheckViolation   = "23514"
)

// Pool is the connection pool shared by the catalog, market and run stores.
type Pool struct {
	*pgxpool.Pool
}

// NewPool connects to dsn and pings the server. Sessions report
// application_name unless the DSN sets one.
func NewPool(ctx context.Context, dsn string) (*Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if _, ok := cfg.ConnConfig.RuntimeParams["application_name"]; !ok {
		cfg.ConnConfig.RuntimeParams["application_name"] = applicationName
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Pool{Pool: pool}, nil
}

// inTx runs fn in a transaction, committing on nil and rolling back otherwise.
func (p *Pool) inTx(ctx context.Context, fn func(pgx.Tx) error) error {
	return pgx.BeginFunc(ctx, p.Pool, fn)
}

// storageError wraps err with the operation name. Missing rows and constraint
// violations also match the storage sentinel errors.
func storageError(err error, format string, args ...any) error {
	op := fmt.Sprintf(format, args...)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w: %w", op, storage.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return fmt.Errorf("%s: %w: %w", op, storage.ErrDuplicateKey, err)
		case codeNotNullViolation, codeCheckViolation:
			return fmt.Errorf("%s: %w: %w", op, storage.ErrInvalidInput, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
