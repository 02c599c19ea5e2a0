package domain

import (
	"strings"
	"time"
)

// EmailVerification is an outstanding request to prove ownership of an
// address. Confirming it marks the profile verified.
type EmailVerification struct {
	Token     string    `json:"token"`
	UserID    int64     `json:"userId"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// EmailDomain returns the lower-cased part after the @, which stands in for
// the user's university once verified.
func EmailDomain(email string) (string, error) {
	local, host, ok := strings.Cut(strings.TrimSpace(email), "@")
	if !ok || local == "" || host == "" || strings.Contains(host, "@") || !strings.Contains(host, ".") {
		return "", ErrInvalidEmail
	}
	return strings.ToLower(host), nil
}
