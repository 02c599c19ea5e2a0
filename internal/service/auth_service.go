package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dom/donutdot/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrInvalidSecret = errors.New("invalid secret")
)

// AuthService mints user tokens for the channel gateway and checks the
// admin secret.
type AuthService struct {
	cfg *config.Config
	now func() time.Time
}

func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{
		cfg: cfg,
		now: time.Now,
	}
}

type TokenResult struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// IssueToken returns a signed access token whose subject is userID.
func (s *AuthService) IssueToken(userID int64) (*TokenResult, error) {
	if userID <= 0 {
		return nil, ErrInvalidToken
	}

	now := s.now()
	expiresAt := now.Add(time.Duration(s.cfg.JWTExpirationHours) * time.Hour)
	claims := jwt.MapClaims{
		"sub": strconv.FormatInt(userID, 10),
		"exp": expiresAt.Unix(),
		"iat": now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, err
	}
	return &TokenResult{AccessToken: signed, ExpiresAt: expiresAt}, nil
}

// ValidateToken verifies tokenString and returns the user id it names.
func (s *AuthService) ValidateToken(tokenString string) (int64, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, ErrInvalidToken
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return 0, ErrInvalidToken
	}
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil || userID <= 0 {
		return 0, ErrInvalidToken
	}
	return userID, nil
}

// CheckAdminSecret compares secret with the configured bcrypt hash.
func (s *AuthService) CheckAdminSecret(secret string) error {
	if s.cfg.AdminSecretHash == "" || secret == "" {
		return ErrInvalidSecret
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.AdminSecretHash), []byte(secret)); err != nil {
		return ErrInvalidSecret
	}
	return nil
}
