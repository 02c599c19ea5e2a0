package service

import (
	"context"
	"time"

	"github.com/dom/donutdot/internal/config"
	"github.com/dom/donutdot/internal/domain"
	"github.com/dom/donutdot/internal/notify"
	"github.com/dom/donutdot/internal/repository"
)

// OnboardingStore holds in-progress onboarding conversations. Get returns
// nil when the user has nothing in progress.
type OnboardingStore interface {
	Get(ctx context.Context, userID int64) (*domain.OnboardingState, error)
	Save(ctx context.Context, state *domain.OnboardingState) error
	Clear(ctx context.Context, userID int64) error
}

// BrowseTracker remembers the candidates already shown in the current
// browsing pass.
type BrowseTracker interface {
	Seen(ctx context.Context, userID int64) ([]int64, error)
	MarkSeen(ctx context.Context, userID, candidateID int64) error
	Reset(ctx context.Context, userID int64) error
}

// VerificationStore holds pending email verifications. TakeVerification
// returns nil for unknown or expired tokens and hands each one out once.
type VerificationStore interface {
	SaveVerification(ctx context.Context, v *domain.EmailVerification) error
	TakeVerification(ctx context.Context, token string) (*domain.EmailVerification, error)
}

// Deps is everything NewServices wires together.
type Deps struct {
	Repos      *repository.Repositories
	Onboarding OnboardingStore
	Browse     BrowseTracker
	Verify     VerificationStore
	Notifier   notify.Notifier
	Config     *config.Config
	// Now defaults to time.Now in UTC.
	Now func() time.Time
}

type Services struct {
	Auth       *AuthService
	Profile    *ProfileService
	Onboarding *OnboardingService
	Like       *LikeService
	Candidate  *CandidateService
	Pass       *PassService
	Session    *SessionService
	Match      *MatchService
	Payment    *PaymentService
	Moderation *ModerationService
}

func NewServices(deps Deps) *Services {
	now := deps.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	notifier := deps.Notifier
	if notifier == nil {
		notifier = notify.Discard
	}
	cfg := deps.Config
	repos := deps.Repos

	profiles := NewProfileService(repos.Profile, now)
	likes := NewLikeService(repos.Like, now)
	passes := NewPassService(repos.Pass, cfg.PassValidity, now)
	candidates := NewCandidateService(repos.Profile, deps.Browse, cfg.CandidatePoolLimit, now)
	sessions := NewSessionService(repos, notifier, SessionConfig{
		Duration:      cfg.SessionDuration,
		NotifyTimeout: cfg.NotifyTimeout,
		SweepBatch:    cfg.SweepBatchSize,
	}, now)

	return &Services{
		Auth:       NewAuthService(cfg),
		Profile:    profiles,
		Onboarding: NewOnboardingService(profiles, deps.Onboarding, now),
		Like:       likes,
		Candidate:  candidates,
		Pass:       passes,
		Session:    sessions,
		Match:      NewMatchService(repos, likes, candidates, sessions, now),
		Payment:    NewPaymentService(passes, sessions, now),
		Moderation: NewModerationService(repos.Profile, repos.Report, deps.Verify, passes, sessions, now),
	}
}
