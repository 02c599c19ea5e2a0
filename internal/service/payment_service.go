package service

import (
	"context"
	"strings"
	"time"

	"github.com/dom/donutdot/internal/domain"
	"github.com/rs/zerolog/log"
)

// PaymentEvent is the abstract "pass paid" signal from the payment provider.
type PaymentEvent struct {
	ExternalReferenceID string `json:"externalReferenceId" validate:"required"`
	PayerIdentity       string `json:"payerIdentity"`
}

type PaymentResult struct {
	Pass *domain.Pass `json:"pass"`
	// Granted is false when the reference had already produced a pass.
	Granted bool `json:"granted"`
}

type PaymentService struct {
	passes   *PassService
	sessions *SessionService
	now      func() time.Time
}

func NewPaymentService(passes *PassService, sessions *SessionService, now func() time.Time) *PaymentService {
	return &PaymentService{
		passes:   passes,
		sessions: sessions,
		now:      now,
	}
}

// NewReference builds a purchase reference for userID at the current time.
func (s *PaymentService) NewReference(userID int64) (string, error) {
	if userID == 0 {
		return "", domain.ErrInvalidUserID
	}
	return domain.NewReference(domain.ReferencePurchase, userID, s.now()), nil
}

// HandlePaid grants the pass named by the event's reference. Replaying the
// same reference returns the pass already granted.
func (s *PaymentService) HandlePaid(ctx context.Context, event PaymentEvent) (*PaymentResult, error) {
	ref, err := domain.ParseReference(strings.TrimSpace(event.ExternalReferenceID))
	if err != nil {
		return nil, err
	}
	referenceID := ref.String()

	existing, err := s.passes.FindByReference(ctx, referenceID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		log.Info().
			Str("reference_id", referenceID).
			Str("pass_id", existing.ID.String()).
			Msg("duplicate payment event ignored")
		return &PaymentResult{Pass: existing, Granted: false}, nil
	}

	pass, err := s.passes.Grant(ctx, ref.UserID, referenceID)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int64("user_id", ref.UserID).
		Str("payer", event.PayerIdentity).
		Str("reference_id", referenceID).
		Msg("payment processed")

	s.sessions.Notify(ctx, ref.UserID, passGrantedMessage(s.sessions.Duration(), s.passes.validity))

	return &PaymentResult{Pass: pass, Granted: true}, nil
}
