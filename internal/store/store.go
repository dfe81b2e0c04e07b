// Package store provides the durable record stores backing the API, built on
// database/sql over SQLite. Lookups that miss return (nil, nil); constraint
// violations and absent rows are translated into the sentinel errors below so
// callers never inspect driver errors.
package store

import (
	"errors"

	"modernc.org/sqlite"
)

var (
	// ErrDuplicateEmail is returned when creating a user with an email that
	// already has an identity.
	ErrDuplicateEmail = errors.New("email already exists")

	// ErrNotFound is returned by updates and deletes that matched no row.
	ErrNotFound = errors.New("record not found")
)

// SQLite extended result code for a UNIQUE constraint violation.
const sqliteConstraintUnique = 2067

func isUniqueViolation(err error) bool {
	var serr *sqlite.Error
	return errors.As(err, &serr) && serr.Code() == sqliteConstraintUnique
}
