package postgres

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"rentwear-backend/internal/domain"
)

const uniqueViolation = "23505"

// notFound maps sql.ErrNoRows to a domain NotFound error.
func notFound(err error, entity string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFound("%s not found", entity)
	}
	return err
}

// uniqueConstraint returns the violated constraint name for a unique violation.
func uniqueConstraint(err error) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return pqErr.Constraint, true
	}
	return "", false
}
