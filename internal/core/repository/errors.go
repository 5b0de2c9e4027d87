package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/duynhne/content-service/internal/core/domain"
)

// PostgreSQL SQLSTATE codes translated into domain errors.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// translate maps constraint violations onto domain errors and passes any
// other error through unchanged.
func translate(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case uniqueViolation:
		return errors.Join(domain.ErrConflict, err)
	case foreignKeyViolation:
		return errors.Join(domain.ErrMissingReference, err)
	default:
		return err
	}
}
