package postgres

import (
	"errors"
	"fmt"

	"github.com/dom/donutdot/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const uniqueViolation = "23505"

// translate maps driver errors onto the domain taxonomy. notFound is returned
// for a missing row; nil falls back to the bare ErrNotFound category.
func translate(err error, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if notFound != nil {
			return notFound
		}
		return domain.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", domain.ErrConflict, pgErr.ConstraintName)
	}

	return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
}
