package service

import (
	"context"
	"strings"
	"time"

	"github.com/dom/donutdot/internal/domain"
	"github.com/dom/donutdot/internal/metrics"
	"github.com/dom/donutdot/internal/repository"
	"github.com/rs/zerolog/log"
)

// PassService is the pass ledger.
type PassService struct {
	passRepo repository.PassRepository
	validity time.Duration
	now      func() time.Time
}

func NewPassService(passRepo repository.PassRepository, validity time.Duration, now func() time.Time) *PassService {
	return &PassService{
		passRepo: passRepo,
		validity: validity,
		now:      now,
	}
}

// Grant credits userID with a new pass. References are not deduplicated here.
func (s *PassService) Grant(ctx context.Context, userID int64, referenceID string) (*domain.Pass, error) {
	if userID == 0 {
		return nil, domain.ErrInvalidUserID
	}

	pass := domain.NewPass(userID, referenceID, s.now(), s.validity)
	if err := s.passRepo.Create(ctx, pass); err != nil {
		return nil, err
	}

	metrics.PassesGrantedTotal.WithLabelValues(referenceSource(referenceID)).Inc()
	log.Info().
		Int64("user_id", userID).
		Str("pass_id", pass.ID.String()).
		Str("reference_id", referenceID).
		Time("expires_at", pass.ExpiresAt).
		Msg("pass granted")

	return pass, nil
}

// ActivePass returns the user's oldest active pass, or nil.
func (s *PassService) ActivePass(ctx context.Context, userID int64) (*domain.Pass, error) {
	if userID == 0 {
		return nil, domain.ErrInvalidUserID
	}
	return s.passRepo.ActiveByUser(ctx, userID, s.now())
}

// Consume spends the user's oldest active pass. A nil pass means there was
// nothing left to spend.
func (s *PassService) Consume(ctx context.Context, userID int64) (*domain.Pass, error) {
	if userID == 0 {
		return nil, domain.ErrInvalidUserID
	}
	return s.passRepo.Consume(ctx, userID, s.now())
}

func (s *PassService) FindByReference(ctx context.Context, referenceID string) (*domain.Pass, error) {
	return s.passRepo.FindByReference(ctx, referenceID)
}

// List returns every pass the user holds, newest first.
func (s *PassService) List(ctx context.Context, userID int64) ([]*domain.Pass, error) {
	if userID == 0 {
		return nil, domain.ErrInvalidUserID
	}
	return s.passRepo.ListByUser(ctx, userID)
}

func referenceSource(referenceID string) string {
	if i := strings.IndexByte(referenceID, ':'); i > 0 {
		switch ns := referenceID[:i]; ns {
		case domain.ReferencePurchase, domain.ReferenceAdminGrant:
			return ns
		}
	}
	return "other"
}
