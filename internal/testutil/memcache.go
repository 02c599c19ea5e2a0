package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/dom/donutdot/internal/domain"
)

// MemoryCache stands in for the redis-backed onboarding store, browse
// tracker, verification store and rate limiter.
type MemoryCache struct {
	mu         sync.Mutex
	onboarding map[int64]domain.OnboardingState
	seen       map[int64]map[int64]bool
	limited    map[string]bool
	verify     map[string]domain.EmailVerification

	// Limit, when true, makes Allow refuse a key after its first use.
	Limit bool
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		onboarding: make(map[int64]domain.OnboardingState),
		seen:       make(map[int64]map[int64]bool),
		limited:    make(map[string]bool),
		verify:     make(map[string]domain.EmailVerification),
	}
}

func (c *MemoryCache) Get(ctx context.Context, userID int64) (*domain.OnboardingState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	state, ok := c.onboarding[userID]
	if !ok {
		return nil, nil
	}
	return &state, nil
}

func (c *MemoryCache) Save(ctx context.Context, state *domain.OnboardingState) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onboarding[state.UserID] = *state
	return nil
}

func (c *MemoryCache) Clear(ctx context.Context, userID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.onboarding, userID)
	return nil
}

func (c *MemoryCache) Seen(ctx context.Context, userID int64) ([]int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]int64, 0, len(c.seen[userID]))
	for id := range c.seen[userID] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (c *MemoryCache) MarkSeen(ctx context.Context, userID, candidateID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	set, ok := c.seen[userID]
	if !ok {
		set = make(map[int64]bool)
		c.seen[userID] = set
	}
	set[candidateID] = true
	return nil
}

func (c *MemoryCache) Reset(ctx context.Context, userID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.seen, userID)
	return nil
}

func (c *MemoryCache) Allow(ctx context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.Limit {
		return true, nil
	}
	if c.limited[key] {
		return false, nil
	}
	c.limited[key] = true
	return true, nil
}

func (c *MemoryCache) SaveVerification(ctx context.Context, v *domain.EmailVerification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.verify[v.Token] = *v
	return nil
}

func (c *MemoryCache) TakeVerification(ctx context.Context, token string) (*domain.EmailVerification, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.verify[token]
	if !ok {
		return nil, nil
	}
	delete(c.verify, token)
	return &v, nil
}
