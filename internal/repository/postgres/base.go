package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/kineayuda/booking-api/internal/repository"
)

// Postgres error codes of interest.
const (
	pgUniqueViolation    = "23505"
	pgExclusionViolation = "23P01"
)

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	db *sqlx.DB
}

// NewBaseRepository creates a new base repository
func NewBaseRepository(db *sqlx.DB) BaseRepository {
	return BaseRepository{db: db}
}

// GetDB returns the database instance
func (r *BaseRepository) GetDB() *sqlx.DB {
	return r.db
}

// WithTx executes a function within a transaction
func (r *BaseRepository) WithTx(ctx context.Context, fn func(repository.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

// NewTxRunner returns a repository.TxRunner backed by the given pool.
func NewTxRunner(db *sqlx.DB) repository.TxRunner {
	r := NewBaseRepository(db)
	return &r
}

// ext resolves the opaque transaction handle to an executor, falling back
// to the pool when tx is nil.
func (r *BaseRepository) ext(tx repository.Tx) sqlx.ExtContext {
	if tx == nil {
		return r.db
	}
	return tx.(*sqlx.Tx)
}

// IsNoRows reports whether err is a missing-row error.
func IsNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// IsUniqueViolation reports whether err is a unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation
}

// IsExclusionViolation reports whether err is an exclusion constraint
// violation (the slot overlap constraint raises this).
func IsExclusionViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pgExclusionViolation
}
