package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MatchState is the lifecycle position of a matched pair.
type MatchState string

const (
	MatchStateMatched        MatchState = "matched"
	MatchStatePassPending    MatchState = "pass_pending"
	MatchStateSessionActive  MatchState = "session_active"
	MatchStateSessionExpired MatchState = "session_expired"
)

// MatchEvent drives Transition.
type MatchEvent string

const (
	// EventPassConsumed fires when a pass was consumed and a session created
	// in the same transaction.
	EventPassConsumed MatchEvent = "pass_consumed"
	// EventNoActivePass fires when neither participant holds an active pass.
	EventNoActivePass MatchEvent = "no_active_pass"
	// EventConsumeLost fires when a pass reported active was taken by a
	// concurrent consumption before ours committed.
	EventConsumeLost MatchEvent = "consume_lost"
	// EventSessionElapsed fires when wall-clock time reaches the session expiry.
	EventSessionElapsed MatchEvent = "session_elapsed"
)

// Transition returns the state reached from current on event. It never
// moves a match backwards; unknown pairs return ErrInvalidTransition.
func Transition(current MatchState, event MatchEvent) (MatchState, error) {
	switch current {
	case MatchStateMatched:
		switch event {
		case EventPassConsumed:
			return MatchStateSessionActive, nil
		case EventNoActivePass, EventConsumeLost:
			return MatchStatePassPending, nil
		}
	case MatchStatePassPending:
		switch event {
		case EventPassConsumed:
			return MatchStateSessionActive, nil
		case EventNoActivePass, EventConsumeLost:
			return MatchStatePassPending, nil
		}
	case MatchStateSessionActive:
		if event == EventSessionElapsed {
			return MatchStateSessionExpired, nil
		}
	}
	return current, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, event, current)
}

// Match is a confirmed reciprocal like. UserAID < UserBID always holds so
// each unordered pair has exactly one row.
type Match struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserAID     int64      `json:"userAId" gorm:"not null;uniqueIndex:idx_matches_pair"`
	UserBID     int64      `json:"userBId" gorm:"not null;uniqueIndex:idx_matches_pair;index"`
	InitiatorID int64      `json:"initiatorId" gorm:"not null"`
	State       MatchState `json:"state" gorm:"type:varchar(20);not null;default:'matched'"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// TableName returns the table name for GORM
func (Match) TableName() string {
	return "matches"
}

// NewMatch builds a match for the pair in canonical order.
func NewMatch(initiatorID, targetID int64, now time.Time) *Match {
	a, b := CanonicalPair(initiatorID, targetID)
	return &Match{
		ID:          uuid.New(),
		UserAID:     a,
		UserBID:     b,
		InitiatorID: initiatorID,
		State:       MatchStateMatched,
		CreatedAt:   now,
	}
}

// CanonicalPair orders two user ids so the smaller comes first.
func CanonicalPair(x, y int64) (int64, int64) {
	if x > y {
		return y, x
	}
	return x, y
}

// Includes reports whether userID is one of the two participants.
func (m *Match) Includes(userID int64) bool {
	return m.UserAID == userID || m.UserBID == userID
}

// Counterpart returns the other participant.
func (m *Match) Counterpart(userID int64) int64 {
	if m.UserAID == userID {
		return m.UserBID
	}
	return m.UserAID
}

// EffectiveState folds the session clock into the stored state. Expiry is
// never persisted, so a session_active match whose session has run out
// reports session_expired.
func (m *Match) EffectiveState(session *ChatSession, now time.Time) MatchState {
	if m.State == MatchStateSessionActive && session != nil && session.IsExpired(now) {
		state, err := Transition(m.State, EventSessionElapsed)
		if err == nil {
			return state
		}
	}
	return m.State
}
