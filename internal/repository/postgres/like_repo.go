package postgres

import (
	"context"

	"github.com/dom/donutdot/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type likeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) *likeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) Create(ctx context.Context, edge *domain.LikeEdge) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "from_user_id"}, {Name: "to_user_id"}},
			DoNothing: true,
		}).
		Create(edge)
	if result.Error != nil {
		return false, translate(result.Error, nil)
	}
	return result.RowsAffected == 1, nil
}

func (r *likeRepository) Exists(ctx context.Context, fromUserID, toUserID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.LikeEdge{}).
		Where("from_user_id = ? AND to_user_id = ?", fromUserID, toUserID).
		Count(&count).Error
	if err != nil {
		return false, translate(err, nil)
	}
	return count > 0, nil
}

func (r *likeRepository) LikedIDs(ctx context.Context, fromUserID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&domain.LikeEdge{}).
		Where("from_user_id = ?", fromUserID).
		Pluck("to_user_id", &ids).Error
	if err != nil {
		return nil, translate(err, nil)
	}
	return ids, nil
}
