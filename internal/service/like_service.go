package service

import (
	"context"
	"time"

	"github.com/dom/donutdot/internal/domain"
	"github.com/dom/donutdot/internal/metrics"
	"github.com/dom/donutdot/internal/repository"
	"github.com/google/uuid"
)

// LikeService is the interaction ledger: it records directed likes and
// answers reciprocity questions.
type LikeService struct {
	likeRepo repository.LikeRepository
	now      func() time.Time
}

func NewLikeService(likeRepo repository.LikeRepository, now func() time.Time) *LikeService {
	return &LikeService{
		likeRepo: likeRepo,
		now:      now,
	}
}

// Record stores the edge from -> to. Repeating a like is a no-op that
// reports created=false.
func (s *LikeService) Record(ctx context.Context, fromUserID, toUserID int64) (bool, error) {
	if err := validatePair(fromUserID, toUserID); err != nil {
		return false, err
	}

	created, err := s.likeRepo.Create(ctx, &domain.LikeEdge{
		ID:         uuid.New(),
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		CreatedAt:  s.now(),
	})
	if err != nil {
		return false, err
	}
	if created {
		metrics.LikesTotal.Inc()
	}
	return created, nil
}

func (s *LikeService) Exists(ctx context.Context, fromUserID, toUserID int64) (bool, error) {
	return s.likeRepo.Exists(ctx, fromUserID, toUserID)
}

// IsMutual reports whether both directed edges exist.
func (s *LikeService) IsMutual(ctx context.Context, userID, otherID int64) (bool, error) {
	forward, err := s.likeRepo.Exists(ctx, userID, otherID)
	if err != nil || !forward {
		return false, err
	}
	return s.likeRepo.Exists(ctx, otherID, userID)
}

func validatePair(fromUserID, toUserID int64) error {
	if fromUserID == 0 || toUserID == 0 {
		return domain.ErrInvalidUserID
	}
	if fromUserID == toUserID {
		return domain.ErrSelfLike
	}
	return nil
}
