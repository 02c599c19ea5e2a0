package domain

import (
	"time"

	"github.com/google/uuid"
)

// ChatSession is the bounded window in which two matched users may talk on
// the external channel. It is funded by exactly one consumed pass.
type ChatSession struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	MatchID   uuid.UUID `json:"matchId" gorm:"type:uuid;not null;uniqueIndex"`
	PassID    uuid.UUID `json:"passId" gorm:"type:uuid;not null;uniqueIndex"`
	UserAID   int64     `json:"userAId" gorm:"not null;index"`
	UserBID   int64     `json:"userBId" gorm:"not null;index"`
	StartedAt time.Time `json:"startedAt" gorm:"not null"`
	ExpiresAt time.Time `json:"expiresAt" gorm:"not null;index"`
	Notified  bool      `json:"notified" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName returns the table name for GORM
func (ChatSession) TableName() string {
	return "chat_sessions"
}

// NewChatSession starts a session for match at now lasting duration.
func NewChatSession(match *Match, pass *Pass, now time.Time, duration time.Duration) *ChatSession {
	return &ChatSession{
		ID:        uuid.New(),
		MatchID:   match.ID,
		PassID:    pass.ID,
		UserAID:   match.UserAID,
		UserBID:   match.UserBID,
		StartedAt: now,
		ExpiresAt: now.Add(duration),
		CreatedAt: now,
	}
}

// IsExpired reports whether at is at or past the expiry instant.
func (s *ChatSession) IsExpired(at time.Time) bool {
	return !at.Before(s.ExpiresAt)
}

// Remaining returns the time left in the session, or zero once expired.
func (s *ChatSession) Remaining(at time.Time) time.Duration {
	if s.IsExpired(at) {
		return 0
	}
	return s.ExpiresAt.Sub(at)
}
