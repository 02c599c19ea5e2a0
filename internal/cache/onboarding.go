package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dom/donutdot/internal/domain"
)

// OnboardingStore keeps each user's in-progress onboarding step under
// onboarding:<userID>. Abandoned conversations fall away with the TTL.
type OnboardingStore struct {
	rdb *Redis
	ttl time.Duration
}

func NewOnboardingStore(rdb *Redis, ttl time.Duration) *OnboardingStore {
	return &OnboardingStore{rdb: rdb, ttl: ttl}
}

func onboardingKey(userID int64) string {
	return fmt.Sprintf("onboarding:%d", userID)
}

// Get returns the current state, or nil if the user has no step in progress.
func (s *OnboardingStore) Get(ctx context.Context, userID int64) (*domain.OnboardingState, error) {
	raw, err := s.rdb.client.Get(ctx, onboardingKey(userID)).Bytes()
	if isNil(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	var state domain.OnboardingState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("failed to decode onboarding state: %w", err)
	}
	return &state, nil
}

// Save writes the state and refreshes its TTL.
func (s *OnboardingStore) Save(ctx context.Context, state *domain.OnboardingState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode onboarding state: %w", err)
	}
	if err := s.rdb.client.Set(ctx, onboardingKey(state.UserID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *OnboardingStore) Clear(ctx context.Context, userID int64) error {
	if err := s.rdb.client.Del(ctx, onboardingKey(userID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}
