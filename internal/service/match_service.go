package service

import (
	"context"
	"time"

	"github.com/dom/donutdot/internal/domain"
	"github.com/dom/donutdot/internal/metrics"
	"github.com/dom/donutdot/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// MatchService orchestrates like -> match -> session.
type MatchService struct {
	repos      *repository.Repositories
	likes      *LikeService
	candidates *CandidateService
	sessions   *SessionService
	now        func() time.Time
}

func NewMatchService(
	repos *repository.Repositories,
	likes *LikeService,
	candidates *CandidateService,
	sessions *SessionService,
	now func() time.Time,
) *MatchService {
	return &MatchService{
		repos:      repos,
		likes:      likes,
		candidates: candidates,
		sessions:   sessions,
		now:        now,
	}
}

// LikeResult reports what a like led to.
type LikeResult struct {
	Matched bool                `json:"matched"`
	Match   *domain.Match       `json:"match,omitempty"`
	State   domain.MatchState   `json:"state,omitempty"`
	Session *domain.ChatSession `json:"session,omitempty"`
}

// Like records fromUserID's interest in toUserID. When the like completes a
// reciprocal pair the match is created and, only by the call that created
// it, a session is negotiated with the liker's pass preferred.
func (s *MatchService) Like(ctx context.Context, fromUserID, toUserID int64) (*LikeResult, error) {
	if err := validatePair(fromUserID, toUserID); err != nil {
		return nil, err
	}

	liker, err := s.repos.Profile.GetByID(ctx, fromUserID)
	if err != nil {
		return nil, err
	}
	if liker.Banned {
		return nil, domain.ErrUserBanned
	}
	target, err := s.repos.Profile.GetByID(ctx, toUserID)
	if err != nil {
		return nil, err
	}
	if target.Banned {
		return nil, domain.ErrProfileNotFound
	}

	if _, err := s.likes.Record(ctx, fromUserID, toUserID); err != nil {
		return nil, err
	}

	reciprocal, err := s.likes.Exists(ctx, toUserID, fromUserID)
	if err != nil {
		return nil, err
	}
	if !reciprocal {
		return &LikeResult{Matched: false}, nil
	}

	match := domain.NewMatch(fromUserID, toUserID, s.now())
	created, err := s.repos.Match.Create(ctx, match)
	if err != nil {
		return nil, err
	}
	if !created {
		return s.existing(ctx, fromUserID, toUserID)
	}

	metrics.MatchesTotal.Inc()
	log.Info().
		Str("match_id", match.ID.String()).
		Int64("user_a_id", match.UserAID).
		Int64("user_b_id", match.UserBID).
		Msg("match created")

	negotiation, err := s.sessions.Negotiate(ctx, match, fromUserID, toUserID)
	if err != nil {
		return nil, err
	}

	return &LikeResult{
		Matched: true,
		Match:   negotiation.Match,
		State:   negotiation.State,
		Session: negotiation.Session,
	}, nil
}

// existing reports a pair's match. A match still in matched never finished
// negotiation, so it is negotiated again here with userID's pass preferred.
func (s *MatchService) existing(ctx context.Context, userID, otherID int64) (*LikeResult, error) {
	match, err := s.repos.Match.GetByPair(ctx, userID, otherID)
	if err != nil {
		return nil, err
	}
	if match.State == domain.MatchStateMatched {
		log.Warn().Str("match_id", match.ID.String()).Msg("resuming unfinished session negotiation")
		negotiation, err := s.sessions.Negotiate(ctx, match, userID, otherID)
		if err != nil {
			return nil, err
		}
		return &LikeResult{
			Matched: true,
			Match:   negotiation.Match,
			State:   negotiation.State,
			Session: negotiation.Session,
		}, nil
	}

	session, err := s.repos.ChatSession.FindByMatchID(ctx, match.ID)
	if err != nil {
		return nil, err
	}
	return &LikeResult{
		Matched: true,
		Match:   match,
		State:   match.EffectiveState(session, s.now()),
		Session: session,
	}, nil
}

// Skip passes on a candidate for the rest of the browsing pass.
func (s *MatchService) Skip(ctx context.Context, userID, candidateID int64) error {
	return s.candidates.MarkSeen(ctx, userID, candidateID)
}

// MatchView is a match as seen by one of its participants.
type MatchView struct {
	Match       *domain.Match       `json:"match"`
	State       domain.MatchState   `json:"state"`
	Counterpart *domain.Profile     `json:"counterpart,omitempty"`
	Session     *domain.ChatSession `json:"session,omitempty"`
}

// Matches lists userID's matches, newest first, with expiry folded in.
func (s *MatchService) Matches(ctx context.Context, userID int64) ([]*MatchView, error) {
	if userID == 0 {
		return nil, domain.ErrInvalidUserID
	}

	matches, err := s.repos.Match.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return []*MatchView{}, nil
	}

	matchIDs := make([]uuid.UUID, len(matches))
	counterpartIDs := make([]int64, len(matches))
	for i, m := range matches {
		matchIDs[i] = m.ID
		counterpartIDs[i] = m.Counterpart(userID)
	}

	sessions, err := s.repos.ChatSession.FindByMatchIDs(ctx, matchIDs)
	if err != nil {
		return nil, err
	}
	sessionByMatch := make(map[uuid.UUID]*domain.ChatSession, len(sessions))
	for _, cs := range sessions {
		sessionByMatch[cs.MatchID] = cs
	}

	profiles, err := s.repos.Profile.GetByIDs(ctx, counterpartIDs)
	if err != nil {
		return nil, err
	}
	profileByID := make(map[int64]*domain.Profile, len(profiles))
	for _, p := range profiles {
		profileByID[p.UserID] = p
	}

	now := s.now()
	views := make([]*MatchView, 0, len(matches))
	for _, m := range matches {
		session := sessionByMatch[m.ID]
		views = append(views, &MatchView{
			Match:       m,
			State:       m.EffectiveState(session, now),
			Counterpart: profileByID[m.Counterpart(userID)],
			Session:     session,
		})
	}
	return views, nil
}

// StartSession retries session negotiation for a match still waiting for a
// pass, or one whose first negotiation never finished, trying the
// requester's pass before the counterpart's.
func (s *MatchService) StartSession(ctx context.Context, userID int64, matchID uuid.UUID) (*Negotiation, error) {
	if userID == 0 {
		return nil, domain.ErrInvalidUserID
	}

	match, err := s.repos.Match.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !match.Includes(userID) {
		return nil, domain.ErrNotMatchMember
	}
	if match.State != domain.MatchStatePassPending && match.State != domain.MatchStateMatched {
		return nil, domain.ErrMatchNotPending
	}

	return s.sessions.Negotiate(ctx, match, userID, match.Counterpart(userID))
}
