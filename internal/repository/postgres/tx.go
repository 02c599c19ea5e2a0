package postgres

import (
	"context"

	"github.com/dom/donutdot/internal/repository"
	"gorm.io/gorm"
)

type transactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) *transactor {
	return &transactor{db: db}
}

func (t *transactor) WithinTx(ctx context.Context, fn func(repos *repository.Repositories) error) error {
	var fnErr error
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fnErr = fn(NewRepositories(tx))
		return fnErr
	})
	if err != nil && fnErr == nil {
		// begin or commit failed
		return translate(err, nil)
	}
	return err
}
