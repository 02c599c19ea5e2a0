package repository

import (
	"context"
	"time"

	"github.com/dom/donutdot/internal/domain"
	"github.com/google/uuid"
)

// Lookups named Get* return a domain NotFound error when nothing matches.
// Lookups named Find* or Active* return (nil, nil) instead.

type ProfileRepository interface {
	Create(ctx context.Context, profile *domain.Profile) error
	Upsert(ctx context.Context, profile *domain.Profile) error
	GetByID(ctx context.Context, userID int64) (*domain.Profile, error)
	Update(ctx context.Context, profile *domain.Profile) error
	UpdatePreferences(ctx context.Context, userID int64, filters domain.Filters) error
	SetBanned(ctx context.Context, userID int64, banned bool) error
	MarkVerified(ctx context.Context, userID int64, at time.Time) error
	ListCandidates(ctx context.Context, query CandidateQuery) ([]*domain.Profile, error)
	GetByIDs(ctx context.Context, userIDs []int64) ([]*domain.Profile, error)
}

// CandidateQuery describes the eligible pool for a viewer. Implementations
// always exclude the viewer, banned or incomplete profiles, and everyone the
// viewer has liked.
type CandidateQuery struct {
	ViewerID int64
	Filters  domain.Filters
	Exclude  []int64
	Limit    int
}

type LikeRepository interface {
	// Create records the edge and reports whether this call inserted it.
	Create(ctx context.Context, edge *domain.LikeEdge) (bool, error)
	Exists(ctx context.Context, fromUserID, toUserID int64) (bool, error)
	LikedIDs(ctx context.Context, fromUserID int64) ([]int64, error)
}

type MatchRepository interface {
	// Create inserts the match unless the pair already has one and reports
	// whether this call inserted it.
	Create(ctx context.Context, match *domain.Match) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Match, error)
	GetByPair(ctx context.Context, userID, otherID int64) (*domain.Match, error)
	ListByUser(ctx context.Context, userID int64) ([]*domain.Match, error)
	// UpdateState moves the match from one state to another and reports
	// whether the stored state was still from.
	UpdateState(ctx context.Context, id uuid.UUID, from, to domain.MatchState) (bool, error)
}

type PassRepository interface {
	Create(ctx context.Context, pass *domain.Pass) error
	FindByReference(ctx context.Context, referenceID string) (*domain.Pass, error)
	// ActiveByUser returns the oldest active pass, or nil.
	ActiveByUser(ctx context.Context, userID int64, now time.Time) (*domain.Pass, error)
	// Consume atomically marks the oldest active pass consumed. A nil pass
	// means nothing was consumed; the result is authoritative even if a
	// prior ActiveByUser call saw an active pass.
	Consume(ctx context.Context, userID int64, now time.Time) (*domain.Pass, error)
	ListByUser(ctx context.Context, userID int64) ([]*domain.Pass, error)
}

type ChatSessionRepository interface {
	Create(ctx context.Context, session *domain.ChatSession) error
	FindByMatchID(ctx context.Context, matchID uuid.UUID) (*domain.ChatSession, error)
	FindByMatchIDs(ctx context.Context, matchIDs []uuid.UUID) ([]*domain.ChatSession, error)
	ActiveByUser(ctx context.Context, userID int64, now time.Time) (*domain.ChatSession, error)
	ListExpiredUnnotified(ctx context.Context, now time.Time, limit int) ([]*domain.ChatSession, error)
	// ClaimNotification flips notified to true and reports whether this call
	// made the change.
	ClaimNotification(ctx context.Context, id uuid.UUID) (bool, error)
}

type ReportRepository interface {
	Create(ctx context.Context, report *domain.Report) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Report, error)
	List(ctx context.Context, status *domain.ReportStatus, limit int) ([]*domain.Report, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ReportStatus) error
}

// Transactor runs fn against repositories bound to a single transaction.
// Returning an error from fn rolls back every write made through repos.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(repos *Repositories) error) error
}

type Repositories struct {
	Profile     ProfileRepository
	Like        LikeRepository
	Match       MatchRepository
	Pass        PassRepository
	ChatSession ChatSessionRepository
	Report      ReportRepository
	Tx          Transactor
}
