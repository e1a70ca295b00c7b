package common

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// IsUniqueViolation reports whether err is a PostgreSQL unique_violation
// (SQLSTATE 23505). Repositories map it to ErrorDuplicate.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// IsTransient reports whether err is a recoverable query failure: connection
// exceptions (class 08), serialization failures (40001), or deadlocks (40P01).
// Whether and how to retry is the caller's decision.
func IsTransient(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	if strings.HasPrefix(pgErr.Code, "08") {
		return true
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}
