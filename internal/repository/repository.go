package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinel errors shared by every repository implementation. Services
// translate these into the API-facing error taxonomy.
var (
	// ErrNotFound means the referenced row does not exist (or a conditional
	// statement matched no row).
	ErrNotFound = errors.New("not found")
	// ErrDuplicate means a uniqueness constraint was violated at insert time.
	ErrDuplicate = errors.New("duplicate")
	// ErrAlreadyPaired means the pair membership guard rejected the write.
	ErrAlreadyPaired = errors.New("user already in a pair")
	// ErrRestricted means the row is still referenced and cannot be deleted.
	ErrRestricted = errors.New("row is referenced")
)

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (code 23505).
func isUniqueViolation(err error) bool {
	var pge *pgconn.PgError
	if errors.As(err, &pge) {
		return pge.Code == "23505"
	}
	return false
}

// uniqueConstraint returns the name of the violated unique constraint, or ""
// when err is not a unique violation.
func uniqueConstraint(err error) string {
	var pge *pgconn.PgError
	if errors.As(err, &pge) && pge.Code == "23505" {
		return pge.ConstraintName
	}
	return ""
}

// isForeignKeyViolation reports whether err is a PostgreSQL foreign key
// violation (code 23503).
func isForeignKeyViolation(err error) bool {
	var pge *pgconn.PgError
	if errors.As(err, &pge) {
		return pge.Code == "23503"
	}
	return false
}
