package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/dom/donutdot/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type chatSessionRepository struct {
	db *gorm.DB
}

func NewChatSessionRepository(db *gorm.DB) *chatSessionRepository {
	return &chatSessionRepository{db: db}
}

func (r *chatSessionRepository) Create(ctx context.Context, session *domain.ChatSession) error {
	return translate(r.db.WithContext(ctx).Create(session).Error, nil)
}

func (r *chatSessionRepository) FindByMatchID(ctx context.Context, matchID uuid.UUID) (*domain.ChatSession, error) {
	var session domain.ChatSession
	err := r.db.WithContext(ctx).First(&session, "match_id = ?", matchID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(err, nil)
	}
	return &session, nil
}

func (r *chatSessionRepository) FindByMatchIDs(ctx context.Context, matchIDs []uuid.UUID) ([]*domain.ChatSession, error) {
	var sessions []*domain.ChatSession
	if len(matchIDs) == 0 {
		return sessions, nil
	}
	err := r.db.WithContext(ctx).Where("match_id IN ?", matchIDs).Find(&sessions).Error
	if err != nil {
		return nil, translate(err, nil)
	}
	return sessions, nil
}

func (r *chatSessionRepository) ActiveByUser(ctx context.Context, userID int64, now time.Time) (*domain.ChatSession, error) {
	var session domain.ChatSession
	err := r.db.WithContext(ctx).
		Where("(user_a_id = ? OR user_b_id = ?) AND expires_at > ?", userID, userID, now).
		Order("expires_at DESC").
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(err, nil)
	}
	return &session, nil
}

func (r *chatSessionRepository) ListExpiredUnnotified(ctx context.Context, now time.Time, limit int) ([]*domain.ChatSession, error) {
	var sessions []*domain.ChatSession
	err := r.db.WithContext(ctx).
		Where("expires_at <= ? AND notified = ?", now, false).
		Order("expires_at ASC").
		Limit(limit).
		Find(&sessions).Error
	if err != nil {
		return nil, translate(err, nil)
	}
	return sessions, nil
}

func (r *chatSessionRepository) ClaimNotification(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.ChatSession{}).
		Where("id = ? AND notified = ?", id, false).
		Update("notified", true)
	if result.Error != nil {
		return false, translate(result.Error, nil)
	}
	return result.RowsAffected == 1, nil
}
