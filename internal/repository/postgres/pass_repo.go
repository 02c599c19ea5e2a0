package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/dom/donutdot/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type passRepository struct {
	db *gorm.DB
}

func NewPassRepository(db *gorm.DB) *passRepository {
	return &passRepository{db: db}
}

func (r *passRepository) Create(ctx context.Context, pass *domain.Pass) error {
	return translate(r.db.WithContext(ctx).Create(pass).Error, nil)
}

func (r *passRepository) FindByReference(ctx context.Context, referenceID string) (*domain.Pass, error) {
	var pass domain.Pass
	err := r.db.WithContext(ctx).
		Where("reference_id = ?", referenceID).
		Order("purchased_at ASC").
		First(&pass).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(err, nil)
	}
	return &pass, nil
}

func (r *passRepository) ActiveByUser(ctx context.Context, userID int64, now time.Time) (*domain.Pass, error) {
	var pass domain.Pass
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND consumed_at IS NULL AND expires_at > ?", userID, now).
		Order("purchased_at ASC").
		First(&pass).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(err, nil)
	}
	return &pass, nil
}

func (r *passRepository) Consume(ctx context.Context, userID int64, now time.Time) (*domain.Pass, error) {
	var consumed *domain.Pass
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pass domain.Pass
		err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("user_id = ? AND consumed_at IS NULL AND expires_at > ?", userID, now).
			Order("purchased_at ASC").
			First(&pass).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		result := tx.Model(&domain.Pass{}).
			Where("id = ? AND consumed_at IS NULL AND expires_at > ?", pass.ID, now).
			Update("consumed_at", now)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected != 1 {
			return nil
		}

		pass.ConsumedAt = &now
		consumed = &pass
		return nil
	})
	if err != nil {
		return nil, translate(err, nil)
	}
	return consumed, nil
}

func (r *passRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.Pass, error) {
	var passes []*domain.Pass
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("purchased_at DESC").
		Find(&passes).Error
	if err != nil {
		return nil, translate(err, nil)
	}
	return passes, nil
}
