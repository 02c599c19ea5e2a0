package postgres

import (
	"context"

	"github.com/dom/donutdot/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type matchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(db *gorm.DB) *matchRepository {
	return &matchRepository{db: db}
}

func (r *matchRepository) Create(ctx context.Context, match *domain.Match) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_a_id"}, {Name: "user_b_id"}},
			DoNothing: true,
		}).
		Create(match)
	if result.Error != nil {
		return false, translate(result.Error, nil)
	}
	return result.RowsAffected == 1, nil
}

func (r *matchRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Match, error) {
	var match domain.Match
	err := r.db.WithContext(ctx).First(&match, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, domain.ErrMatchNotFound)
	}
	return &match, nil
}

func (r *matchRepository) GetByPair(ctx context.Context, userID, otherID int64) (*domain.Match, error) {
	a, b := domain.CanonicalPair(userID, otherID)
	var match domain.Match
	err := r.db.WithContext(ctx).First(&match, "user_a_id = ? AND user_b_id = ?", a, b).Error
	if err != nil {
		return nil, translate(err, domain.ErrMatchNotFound)
	}
	return &match, nil
}

func (r *matchRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.Match, error) {
	var matches []*domain.Match
	err := r.db.WithContext(ctx).
		Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&matches).Error
	if err != nil {
		return nil, translate(err, nil)
	}
	return matches, nil
}

// UpdateState moves the match from one state to another. It reports false
// when the stored state is no longer from.
func (r *matchRepository) UpdateState(ctx context.Context, id uuid.UUID, from, to domain.MatchState) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.Match{}).
		Where("id = ? AND state = ?", id, from).
		Update("state", to)
	if result.Error != nil {
		return false, translate(result.Error, nil)
	}
	if result.RowsAffected == 1 {
		return true, nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Match{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, translate(err, nil)
	}
	if count == 0 {
		return false, domain.ErrMatchNotFound
	}
	return false, nil
}
