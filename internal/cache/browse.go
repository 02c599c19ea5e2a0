package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/dom/donutdot/internal/domain"
)

// BrowseTracker remembers which candidates a user has already been shown in
// the current browsing pass. The set expires ttl after the last addition.
type BrowseTracker struct {
	rdb *Redis
	ttl time.Duration
}

func NewBrowseTracker(rdb *Redis, ttl time.Duration) *BrowseTracker {
	return &BrowseTracker{rdb: rdb, ttl: ttl}
}

func browseKey(userID int64) string {
	return fmt.Sprintf("browse:%d", userID)
}

func (b *BrowseTracker) Seen(ctx context.Context, userID int64) ([]int64, error) {
	members, err := b.rdb.client.SMembers(ctx, browseKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (b *BrowseTracker) MarkSeen(ctx context.Context, userID, candidateID int64) error {
	key := browseKey(userID)
	pipe := b.rdb.client.TxPipeline()
	pipe.SAdd(ctx, key, candidateID)
	pipe.Expire(ctx, key, b.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// Reset starts a new browsing pass.
func (b *BrowseTracker) Reset(ctx context.Context, userID int64) error {
	if err := b.rdb.client.Del(ctx, browseKey(userID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}
