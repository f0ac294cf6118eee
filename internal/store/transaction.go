// Package store provides abstractions and implementations for data persistence.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/taskwell/taskwell-api/internal/platform/logger"
)

// TxFn is a function that executes within a database transaction.
// The transaction is committed if the function returns nil, or rolled
// back if it returns an error. Multi-statement operations (reorder,
// import commit, project deletion) always run through this wrapper so
// partial writes are never observable.
type TxFn func(ctx context.Context, tx *sql.Tx) error

// RunInTransaction executes the given function within a database
// transaction. On error the transaction is rolled back and the original
// error propagates to the caller unchanged; there are no retries.
func RunInTransaction(ctx context.Context, db *sql.DB, fn TxFn) error {
	log := logger.FromContextOrDefault(ctx, slog.Default())

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction",
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			if txErr := tx.Rollback(); txErr != nil {
				log.Error("failed to roll back transaction after panic",
					slog.String("error", txErr.Error()),
					slog.Any("panic", p))
			} else {
				log.Error("rolled back transaction after panic",
					slog.Any("panic", p))
			}
			panic(p)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			log.Error("failed to roll back transaction",
				slog.String("rollback_error", rollbackErr.Error()),
				slog.String("original_error", err.Error()))
			return fmt.Errorf(
				"error rolling back transaction: %v (original error: %w)",
				rollbackErr,
				err,
			)
		}
		log.Debug("rolled back transaction due to error",
			slog.String("error", err.Error()))
		return err
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit transaction",
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Debug("transaction committed successfully")
	return nil
}

// Transactor runs functions inside a database transaction. Services
// depend on this interface rather than *sql.DB directly so tests can
// substitute an implementation without a live database.
type Transactor interface {
	Transact(ctx context.Context, fn TxFn) error
}

// sqlTransactor is the production Transactor backed by a *sql.DB.
type sqlTransactor struct {
	db *sql.DB
}

// NewTransactor creates a Transactor over the given database handle.
func NewTransactor(db *sql.DB) Transactor {
	return &sqlTransactor{db: db}
}

// Transact implements Transactor.
func (t *sqlTransactor) Transact(ctx context.Context, fn TxFn) error {
	return RunInTransaction(ctx, t.db, fn)
}
