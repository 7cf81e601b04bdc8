package postgres

import (
	"errors"
	"slices"

	"github.com/lib/pq"
)

// uniqueViolation is the PostgreSQL SQLSTATE for a unique index rejection.
const uniqueViolation = "23505"

// IsUniqueViolation reports whether err is a unique-constraint rejection.
// With constraint names given, only violations of those constraints match;
// violations of unrelated constraints stay hard failures.
func IsUniqueViolation(err error, constraints ...string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return false
	}
	if len(constraints) == 0 {
		return true
	}
	return slices.Contains(constraints, pqErr.Constraint)
}
