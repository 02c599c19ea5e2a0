package service

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/dom/donutdot/internal/domain"
	"github.com/dom/donutdot/internal/repository"
	"github.com/rs/zerolog/log"
)

// randomWeight scales the random component of a candidate's score.
const randomWeight = 0.5

// CandidateService picks the next profile a user should see.
type CandidateService struct {
	profileRepo repository.ProfileRepository
	browse      BrowseTracker
	poolLimit   int
	now         func() time.Time
	random      func() float64
}

func NewCandidateService(profileRepo repository.ProfileRepository, browse BrowseTracker, poolLimit int, now func() time.Time) *CandidateService {
	return &CandidateService{
		profileRepo: profileRepo,
		browse:      browse,
		poolLimit:   poolLimit,
		now:         now,
		random:      rand.Float64,
	}
}

// SetRandom replaces the source of the ranking noise.
func (s *CandidateService) SetRandom(random func() float64) {
	s.random = random
}

// Next returns the best-scoring eligible candidate for userID, or nil when
// the pool is exhausted for this browsing pass. A nil filters uses the
// viewer's stored preferences.
func (s *CandidateService) Next(ctx context.Context, userID int64, filters *domain.Filters) (*domain.Profile, error) {
	viewer, err := s.viewer(ctx, userID)
	if err != nil {
		return nil, err
	}

	f := viewer.Filters()
	if filters != nil {
		f = filters.Normalize()
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}

	seen, err := s.browse.Seen(ctx, userID)
	if err != nil {
		return nil, err
	}

	pool, err := s.profileRepo.ListCandidates(ctx, repository.CandidateQuery{
		ViewerID: userID,
		Filters:  f,
		Exclude:  seen,
		Limit:    s.poolLimit,
	})
	if err != nil {
		return nil, err
	}

	best := s.rank(pool)
	if best == nil {
		return nil, nil
	}

	if err := s.browse.MarkSeen(ctx, userID, best.UserID); err != nil {
		return nil, err
	}

	log.Debug().
		Int64("user_id", userID).
		Int64("candidate_id", best.UserID).
		Int("pool_size", len(pool)).
		Msg("candidate selected")

	return best, nil
}

// rank scores each profile as randomWeight*U[0,1) minus the profile's age in
// years, so newer profiles tend to win.
func (s *CandidateService) rank(pool []*domain.Profile) *domain.Profile {
	now := s.now()
	var best *domain.Profile
	var bestScore float64
	for _, p := range pool {
		score := randomWeight*s.random() - p.AgeInYears(now)
		if best == nil || score > bestScore {
			best = p
			bestScore = score
		}
	}
	return best
}

// MarkSeen adds candidateID to the current browsing pass without liking it.
func (s *CandidateService) MarkSeen(ctx context.Context, userID, candidateID int64) error {
	if err := validatePair(userID, candidateID); err != nil {
		return err
	}
	return s.browse.MarkSeen(ctx, userID, candidateID)
}

// Reset starts a new browsing pass so previously shown candidates reappear.
func (s *CandidateService) Reset(ctx context.Context, userID int64) error {
	if userID == 0 {
		return domain.ErrInvalidUserID
	}
	return s.browse.Reset(ctx, userID)
}

func (s *CandidateService) Preferences(ctx context.Context, userID int64) (domain.Filters, error) {
	viewer, err := s.viewer(ctx, userID)
	if err != nil {
		return domain.Filters{}, err
	}
	return viewer.Filters(), nil
}

func (s *CandidateService) UpdatePreferences(ctx context.Context, userID int64, filters domain.Filters) (domain.Filters, error) {
	if _, err := s.viewer(ctx, userID); err != nil {
		return domain.Filters{}, err
	}

	f := filters.Normalize()
	if err := f.Validate(); err != nil {
		return domain.Filters{}, err
	}
	if err := s.profileRepo.UpdatePreferences(ctx, userID, f); err != nil {
		return domain.Filters{}, err
	}
	return f, nil
}

func (s *CandidateService) viewer(ctx context.Context, userID int64) (*domain.Profile, error) {
	if userID == 0 {
		return nil, domain.ErrInvalidUserID
	}
	viewer, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if viewer.Banned {
		return nil, domain.ErrUserBanned
	}
	return viewer, nil
}
