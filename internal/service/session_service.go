package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dom/donutdot/internal/domain"
	"github.com/dom/donutdot/internal/metrics"
	"github.com/dom/donutdot/internal/notify"
	"github.com/dom/donutdot/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type SessionConfig struct {
	Duration      time.Duration
	NotifyTimeout time.Duration
	SweepBatch    int
}

// SessionService turns matches into timed chat sessions and announces their
// expiry.
type SessionService struct {
	repos    *repository.Repositories
	notifier notify.Notifier
	cfg      SessionConfig
	now      func() time.Time
}

func NewSessionService(repos *repository.Repositories, notifier notify.Notifier, cfg SessionConfig, now func() time.Time) *SessionService {
	return &SessionService{
		repos:    repos,
		notifier: notifier,
		cfg:      cfg,
		now:      now,
	}
}

// Negotiation is the outcome of trying to fund a session for a match.
type Negotiation struct {
	Match   *domain.Match       `json:"match"`
	State   domain.MatchState   `json:"state"`
	Session *domain.ChatSession `json:"session,omitempty"`
	// PaidBy is the user whose pass was consumed, zero when none was.
	PaidBy int64 `json:"paidBy,omitempty"`
}

// Negotiate funds a session for match from the first user in payers holding
// an active pass. Consumption, session creation and the match state change
// commit together. Losing the pass to a concurrent consumer leaves the match
// in pass_pending. When another negotiation moves the match first, the stored
// outcome is returned unchanged.
func (s *SessionService) Negotiate(ctx context.Context, match *domain.Match, payers ...int64) (*Negotiation, error) {
	var payer int64
	for _, userID := range payers {
		pass, err := s.repos.Pass.ActiveByUser(ctx, userID, s.now())
		if err != nil {
			return nil, err
		}
		if pass != nil {
			payer = userID
			break
		}
	}

	if payer == 0 {
		return s.markPending(ctx, match, domain.EventNoActivePass)
	}

	nextState, err := domain.Transition(match.State, domain.EventPassConsumed)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var session *domain.ChatSession
	err = s.repos.Tx.WithinTx(ctx, func(tx *repository.Repositories) error {
		// The state row is claimed first so a concurrent negotiation waits
		// here and then sees the moved state.
		moved, err := tx.Match.UpdateState(ctx, match.ID, match.State, nextState)
		if err != nil {
			return err
		}
		if !moved {
			return domain.ErrMatchMoved
		}

		pass, err := tx.Pass.Consume(ctx, payer, now)
		if err != nil {
			return err
		}
		if pass == nil {
			return domain.ErrPassConsumed
		}

		session = domain.NewChatSession(match, pass, now, s.cfg.Duration)
		return tx.ChatSession.Create(ctx, session)
	})
	switch {
	case errors.Is(err, domain.ErrMatchMoved):
		return s.current(ctx, match.ID)
	case errors.Is(err, domain.ErrPassConsumed):
		metrics.PassConsumeConflictsTotal.Inc()
		log.Warn().
			Str("match_id", match.ID.String()).
			Int64("user_id", payer).
			Msg("pass consumed concurrently, match left pending")
		return s.markPending(ctx, match, domain.EventConsumeLost)
	case err != nil:
		return nil, err
	}

	match.State = nextState
	metrics.SessionsStartedTotal.Inc()
	log.Info().
		Str("match_id", match.ID.String()).
		Str("session_id", session.ID.String()).
		Int64("paid_by", payer).
		Time("expires_at", session.ExpiresAt).
		Msg("chat session started")

	s.announceSession(ctx, match, session)

	return &Negotiation{Match: match, State: nextState, Session: session, PaidBy: payer}, nil
}

func (s *SessionService) markPending(ctx context.Context, match *domain.Match, event domain.MatchEvent) (*Negotiation, error) {
	next, err := domain.Transition(match.State, event)
	if err != nil {
		return nil, err
	}
	if next != match.State {
		moved, err := s.repos.Match.UpdateState(ctx, match.ID, match.State, next)
		if err != nil {
			return nil, err
		}
		if !moved {
			return s.current(ctx, match.ID)
		}
		match.State = next
	}

	metrics.PassPendingTotal.Inc()
	s.announcePending(ctx, match)

	return &Negotiation{Match: match, State: next}, nil
}

// current reports the stored outcome of a match without notifying anyone.
func (s *SessionService) current(ctx context.Context, matchID uuid.UUID) (*Negotiation, error) {
	match, err := s.repos.Match.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	session, err := s.repos.ChatSession.FindByMatchID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	return &Negotiation{
		Match:   match,
		State:   match.EffectiveState(session, s.now()),
		Session: session,
	}, nil
}

func (s *SessionService) announceSession(ctx context.Context, match *domain.Match, session *domain.ChatSession) {
	a, b, err := s.participants(ctx, match)
	if err != nil {
		log.Error().Err(err).Str("match_id", match.ID.String()).Msg("failed to load participants for session notice")
		return
	}
	s.dispatch(ctx, a.UserID, sessionStartedMessage(b.Name, b.ContactHandle(), s.cfg.Duration, session.ExpiresAt))
	s.dispatch(ctx, b.UserID, sessionStartedMessage(a.Name, a.ContactHandle(), s.cfg.Duration, session.ExpiresAt))
}

func (s *SessionService) announcePending(ctx context.Context, match *domain.Match) {
	a, b, err := s.participants(ctx, match)
	if err != nil {
		log.Error().Err(err).Str("match_id", match.ID.String()).Msg("failed to load participants for pending notice")
		return
	}
	s.dispatch(ctx, a.UserID, passNeededMessage(b.Name))
	s.dispatch(ctx, b.UserID, passNeededMessage(a.Name))
}

func (s *SessionService) participants(ctx context.Context, match *domain.Match) (*domain.Profile, *domain.Profile, error) {
	profiles, err := s.repos.Profile.GetByIDs(ctx, []int64{match.UserAID, match.UserBID})
	if err != nil {
		return nil, nil, err
	}
	byID := make(map[int64]*domain.Profile, len(profiles))
	for _, p := range profiles {
		byID[p.UserID] = p
	}
	a, b := byID[match.UserAID], byID[match.UserBID]
	if a == nil || b == nil {
		return nil, nil, fmt.Errorf("match %s: %w", match.ID, domain.ErrProfileNotFound)
	}
	return a, b, nil
}

// Notify sends message to userID through the configured channels. Delivery
// failures are logged and counted, never returned.
func (s *SessionService) Notify(ctx context.Context, userID int64, message string) {
	s.dispatch(ctx, userID, message)
}

func (s *SessionService) dispatch(ctx context.Context, userID int64, message string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.NotifyTimeout)
	defer cancel()

	if err := s.notifier.Notify(ctx, userID, message); err != nil {
		metrics.NotifyFailuresTotal.WithLabelValues("any").Inc()
		log.Error().Err(err).Int64("user_id", userID).Msg("notification failed")
	}
}

// SweepExpired announces every expired, not yet announced session, at most
// once each even when sweeps overlap. It returns how many sessions this call
// announced.
func (s *SessionService) SweepExpired(ctx context.Context) (int, error) {
	sessions, err := s.repos.ChatSession.ListExpiredUnnotified(ctx, s.now(), s.cfg.SweepBatch)
	if err != nil {
		return 0, err
	}

	notified := 0
	for _, session := range sessions {
		claimed, err := s.repos.ChatSession.ClaimNotification(ctx, session.ID)
		if err != nil {
			return notified, err
		}
		if !claimed {
			continue
		}

		s.dispatch(ctx, session.UserAID, sessionExpiredMessage)
		s.dispatch(ctx, session.UserBID, sessionExpiredMessage)
		metrics.ExpiryNoticesTotal.Inc()
		notified++
	}

	if notified > 0 {
		log.Info().Int("count", notified).Msg("expired sessions announced")
	}
	return notified, nil
}

// RunSweeper calls SweepExpired every interval until ctx is done.
func (s *SessionService) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.SweepExpired(ctx); err != nil {
				log.Error().Err(err).Msg("session sweep failed")
			}
		}
	}
}

// ActiveSession returns the user's current unexpired session, or nil.
func (s *SessionService) ActiveSession(ctx context.Context, userID int64) (*domain.ChatSession, error) {
	if userID == 0 {
		return nil, domain.ErrInvalidUserID
	}
	return s.repos.ChatSession.ActiveByUser(ctx, userID, s.now())
}

// IsExpired reports whether the session has run out at the current time.
func (s *SessionService) IsExpired(session *domain.ChatSession) bool {
	return session.IsExpired(s.now())
}

func (s *SessionService) Duration() time.Duration {
	return s.cfg.Duration
}

func (s *SessionService) Remaining(session *domain.ChatSession) time.Duration {
	return session.Remaining(s.now())
}
