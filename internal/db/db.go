package db

import (
	"context"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DB struct {
	Pool *pgxpool.Pool
}

func New(dsn string) (*DB, error) {
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	return &DB{Pool: pool}, nil
}

func (d *DB) Close() {
	d.Pool.Close()
}

// querier is satisfied by both the pool and an open transaction, so
// repository methods work the same inside and outside a unit of work.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type txKey struct{}

// conn returns the transaction bound to ctx by InTransaction, or the pool.
func (d *DB) conn(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return d.Pool
}

// InTransaction runs fn inside a single transaction holding an advisory lock
// per prison number. Locks are taken in sorted order so operations touching
// overlapping prisoners queue instead of deadlocking. Repository calls made
// with the ctx passed to fn join the transaction.
func (d *DB) InTransaction(ctx context.Context, prisonNumbers []string, fn func(ctx context.Context) error) error {
	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	txCtx := context.WithValue(ctx, txKey{}, tx)
	if err := d.Lock(txCtx, prisonNumbers); err != nil {
		return err
	}

	if err := fn(txCtx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Lock takes the advisory lock for each prison number inside the current
// transaction, in sorted order. Used by InTransaction for the upfront lock
// set and by callers that discover further affected prisoners mid-flight.
func (d *DB) Lock(ctx context.Context, prisonNumbers []string) error {
	q := d.conn(ctx)
	locks := append([]string(nil), prisonNumbers...)
	sort.Strings(locks)
	for _, pn := range locks {
		if _, err := q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, pn); err != nil {
			return fmt.Errorf("failed to lock prison number %s: %w", pn, err)
		}
	}
	return nil
}
