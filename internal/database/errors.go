package database

import (
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrDuplicate is returned when a unique constraint is violated
	ErrDuplicate = errors.New("duplicate key")

	// ErrExclusionViolation is returned when the booking overlap constraint fires
	ErrExclusionViolation = errors.New("overlapping booking")

	// ErrForeignKeyViolation is returned when a referenced row is missing or still referenced
	ErrForeignKeyViolation = errors.New("foreign key violation")

	// ErrConcurrentUpdate is returned when a conditional update matched no row
	ErrConcurrentUpdate = errors.New("row was modified concurrently")
)

// Postgres error codes
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqExclusionViolation  = "23P01"
)

// translateError maps driver constraint errors onto package sentinels and
// returns other errors unchanged
func translateError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case pqUniqueViolation:
		return ErrDuplicate
	case pqExclusionViolation:
		return ErrExclusionViolation
	case pqForeignKeyViolation:
		return ErrForeignKeyViolation
	}
	return err
}
