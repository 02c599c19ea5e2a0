package domain

import (
	"errors"
	"fmt"
)

// Error categories. Every error returned by the engine wraps exactly one of
// these so callers can branch with errors.Is.
var (
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Validation errors
var (
	ErrInvalidUserID       = fmt.Errorf("%w: user id is required", ErrValidation)
	ErrSelfLike            = fmt.Errorf("%w: cannot like yourself", ErrValidation)
	ErrInvalidAge          = fmt.Errorf("%w: age must be between %d and %d", ErrValidation, MinAge, MaxAge)
	ErrInvalidAgeRange     = fmt.Errorf("%w: min age must not exceed max age", ErrValidation)
	ErrMissingName         = fmt.Errorf("%w: name is required", ErrValidation)
	ErrMissingLocation     = fmt.Errorf("%w: location is required", ErrValidation)
	ErrInvalidReference    = fmt.Errorf("%w: malformed payment reference", ErrValidation)
	ErrNoOnboardingStep    = fmt.Errorf("%w: no conversation in progress, use a command", ErrValidation)
	ErrInvalidEditField    = fmt.Errorf("%w: unknown profile field", ErrValidation)
	ErrInvalidTransition   = fmt.Errorf("%w: invalid match state transition", ErrValidation)
	ErrNotMatchMember      = fmt.Errorf("%w: user is not part of this match", ErrValidation)
	ErrMatchNotPending     = fmt.Errorf("%w: match is not waiting for a pass", ErrValidation)
	ErrUserBanned          = fmt.Errorf("%w: user is banned", ErrValidation)
	ErrInvalidReportStatus = fmt.Errorf("%w: invalid report status", ErrValidation)
	ErrMissingReason       = fmt.Errorf("%w: a reason is required", ErrValidation)
	ErrSelfReport          = fmt.Errorf("%w: cannot report yourself", ErrValidation)
	ErrInvalidEmail        = fmt.Errorf("%w: invalid email address", ErrValidation)
)

// Not found errors
var (
	ErrProfileNotFound = fmt.Errorf("%w: profile", ErrNotFound)
	ErrMatchNotFound   = fmt.Errorf("%w: match", ErrNotFound)
	ErrPassNotFound    = fmt.Errorf("%w: pass", ErrNotFound)
	ErrSessionNotFound = fmt.Errorf("%w: chat session", ErrNotFound)
	ErrReportNotFound  = fmt.Errorf("%w: report", ErrNotFound)

	// ErrVerificationNotFound covers unknown, used and expired tokens alike.
	ErrVerificationNotFound = fmt.Errorf("%w: verification token", ErrNotFound)
)

// Conflict errors
var (
	// ErrPassConsumed means a conditional pass update lost to a concurrent
	// consumption. The session engine folds it into the pass_pending outcome.
	ErrPassConsumed = fmt.Errorf("%w: pass already consumed", ErrConflict)
	ErrRateLimited  = fmt.Errorf("%w: too many requests", ErrConflict)
	// ErrMatchMoved means another negotiation changed the match state first.
	ErrMatchMoved = fmt.Errorf("%w: match state changed concurrently", ErrConflict)
)
