package postgres

import (
	"context"
	"time"

	"github.com/dom/donutdot/internal/domain"
	"github.com/dom/donutdot/internal/repository"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *profileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	return translate(r.db.WithContext(ctx).Create(profile).Error, nil)
}

// Upsert writes the onboarding fields. Moderation flags and preferences of an
// existing row are left alone.
func (r *profileRepository) Upsert(ctx context.Context, profile *domain.Profile) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "name", "age", "location", "university", "bio", "gender", "updated_at"}),
	}).Create(profile).Error
	return translate(err, nil)
}

func (r *profileRepository) GetByID(ctx context.Context, userID int64) (*domain.Profile, error) {
	var profile domain.Profile
	err := r.db.WithContext(ctx).First(&profile, "user_id = ?", userID).Error
	if err != nil {
		return nil, translate(err, domain.ErrProfileNotFound)
	}
	return &profile, nil
}

func (r *profileRepository) GetByIDs(ctx context.Context, userIDs []int64) ([]*domain.Profile, error) {
	var profiles []*domain.Profile
	if len(userIDs) == 0 {
		return profiles, nil
	}
	err := r.db.WithContext(ctx).Where("user_id IN ?", userIDs).Find(&profiles).Error
	if err != nil {
		return nil, translate(err, nil)
	}
	return profiles, nil
}

func (r *profileRepository) Update(ctx context.Context, profile *domain.Profile) error {
	return translate(r.db.WithContext(ctx).Save(profile).Error, nil)
}

func (r *profileRepository) UpdatePreferences(ctx context.Context, userID int64, filters domain.Filters) error {
	return r.updateColumns(ctx, userID, map[string]interface{}{
		"preferences": datatypes.NewJSONType(filters),
		"updated_at":  time.Now().UTC(),
	})
}

func (r *profileRepository) SetBanned(ctx context.Context, userID int64, banned bool) error {
	return r.updateColumns(ctx, userID, map[string]interface{}{
		"banned":     banned,
		"updated_at": time.Now().UTC(),
	})
}

func (r *profileRepository) MarkVerified(ctx context.Context, userID int64, at time.Time) error {
	return r.updateColumns(ctx, userID, map[string]interface{}{
		"verified":    true,
		"verified_at": at,
		"updated_at":  at,
	})
}

func (r *profileRepository) updateColumns(ctx context.Context, userID int64, values map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Profile{}).
		Where("user_id = ?", userID).
		Updates(values)
	if result.Error != nil {
		return translate(result.Error, nil)
	}
	if result.RowsAffected == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}

// ListCandidates returns the newest eligible profiles first, capped at Limit.
func (r *profileRepository) ListCandidates(ctx context.Context, query repository.CandidateQuery) ([]*domain.Profile, error) {
	liked := r.db.Model(&domain.LikeEdge{}).
		Select("to_user_id").
		Where("from_user_id = ?", query.ViewerID)

	q := r.db.WithContext(ctx).
		Where("user_id <> ?", query.ViewerID).
		Where("banned = ?", false).
		Where("name <> '' AND location <> ''").
		Where("age BETWEEN ? AND ?", query.Filters.MinAge, query.Filters.MaxAge).
		Where("user_id NOT IN (?)", liked)

	if query.Filters.Location != "" {
		q = q.Where("location = ?", query.Filters.Location)
	}
	if query.Filters.VerifiedOnly {
		q = q.Where("verified = ?", true)
	}
	if query.Filters.Gender != "" {
		q = q.Where("gender = ?", query.Filters.Gender)
	}
	if len(query.Exclude) > 0 {
		q = q.Where("user_id NOT IN ?", query.Exclude)
	}
	if query.Limit > 0 {
		q = q.Limit(query.Limit)
	}

	var profiles []*domain.Profile
	if err := q.Order("created_at DESC").Find(&profiles).Error; err != nil {
		return nil, translate(err, nil)
	}
	return profiles, nil
}
