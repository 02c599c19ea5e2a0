package domain

import (
	"time"

	"github.com/google/uuid"
)

// LikeEdge is a directed interest signal. The (from, to) pair is unique.
type LikeEdge struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	FromUserID int64     `json:"fromUserId" gorm:"not null;uniqueIndex:idx_likes_pair"`
	ToUserID   int64     `json:"toUserId" gorm:"not null;uniqueIndex:idx_likes_pair;index"`
	CreatedAt  time.Time `json:"createdAt"`
}

// TableName returns the table name for GORM
func (LikeEdge) TableName() string {
	return "likes"
}
