package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dom/donutdot/internal/domain"
)

// VerificationStore keeps pending email verifications under
// verify:<token> until they are confirmed or the TTL runs out.
type VerificationStore struct {
	rdb *Redis
	ttl time.Duration
}

func NewVerificationStore(rdb *Redis, ttl time.Duration) *VerificationStore {
	return &VerificationStore{rdb: rdb, ttl: ttl}
}

func verificationKey(token string) string {
	return "verify:" + token
}

func (s *VerificationStore) SaveVerification(ctx context.Context, v *domain.EmailVerification) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode verification: %w", err)
	}
	if err := s.rdb.client.Set(ctx, verificationKey(v.Token), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// TakeVerification removes and returns the verification for token, or nil
// when there is none. Two callers racing on one token get it at most once.
func (s *VerificationStore) TakeVerification(ctx context.Context, token string) (*domain.EmailVerification, error) {
	raw, err := s.rdb.client.GetDel(ctx, verificationKey(token)).Bytes()
	if isNil(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	var v domain.EmailVerification
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("failed to decode verification: %w", err)
	}
	return &v, nil
}
