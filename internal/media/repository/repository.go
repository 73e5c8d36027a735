// Package repository persists confirmed media records.
package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when a record does not exist for the tenant.
var ErrNotFound = errors.New("media record not found")

// ErrDuplicate is returned when a storage key has already been confirmed.
var ErrDuplicate = errors.New("media record already exists")

const uniqueViolation = "23505"

// DB is the subset of pgxpool.Pool the repository uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository provides access to media_photos and media_receipts.
type Repository struct {
	db DB
}

// New creates a repository on a pool (or pgxmock in tests).
func New(db DB) *Repository {
	return &Repository{db: db}
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func duplicate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicate
	}
	return err
}
