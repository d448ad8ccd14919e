package postgres

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"debtledger-backend/internal/domain"
)

// notFound maps sql.ErrNoRows onto the domain taxonomy. Other errors pass
// through untouched.
func notFound(err error, kind string, id int64) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFound(kind, id)
	}
	return err
}

func notFoundRef(err error, kind, ref string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFoundRef(kind, ref)
	}
	return err
}

// isUniqueViolation reports whether err is a postgres unique-constraint
// violation (class 23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
