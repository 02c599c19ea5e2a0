package service

import (
	"errors"

	"github.com/dom/donutdot/internal/domain"
)

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
