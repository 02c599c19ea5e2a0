package domain

import (
	"time"

	"github.com/google/uuid"
)

// Pass is a single-use grant that funds one timed chat session.
type Pass struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID      int64      `json:"userId" gorm:"not null;index:idx_passes_owner"`
	ReferenceID string     `json:"referenceId" gorm:"size:128;not null;index"`
	PurchasedAt time.Time  `json:"purchasedAt" gorm:"not null;index:idx_passes_owner"`
	ExpiresAt   time.Time  `json:"expiresAt" gorm:"not null"`
	ConsumedAt  *time.Time `json:"consumedAt,omitempty"`
}

// TableName returns the table name for GORM
func (Pass) TableName() string {
	return "passes"
}

// NewPass creates a pass purchased at now and valid for validity.
func NewPass(userID int64, referenceID string, now time.Time, validity time.Duration) *Pass {
	return &Pass{
		ID:          uuid.New(),
		UserID:      userID,
		ReferenceID: referenceID,
		PurchasedAt: now,
		ExpiresAt:   now.Add(validity),
	}
}

// IsActive reports whether the pass is unconsumed and not past its own expiry.
func (p *Pass) IsActive(now time.Time) bool {
	return p.ConsumedAt == nil && now.Before(p.ExpiresAt)
}
