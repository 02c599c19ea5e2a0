package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/dom/donutdot/internal/service"
	"github.com/rs/zerolog/log"
)

const (
	HeaderChannelSecret = "X-Channel-Secret"
	HeaderPaymentSecret = "X-Payment-Secret"
	HeaderCronSecret    = "X-Cron-Secret"
	HeaderAdminSecret   = "X-Admin-Secret"
)

// RequireSecret rejects requests whose header does not carry expected. An
// empty expected value disables the route entirely.
func RequireSecret(header, expected string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(header)
			if expected == "" || subtle.ConstantTimeCompare([]byte(got), []byte(expected)) != 1 {
				log.Warn().Str("header", header).Str("path", r.URL.Path).Msg("shared secret rejected")
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin checks the admin secret against its bcrypt hash.
func RequireAdmin(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := authService.CheckAdminSecret(r.Header.Get(HeaderAdminSecret)); err != nil {
				log.Warn().Str("path", r.URL.Path).Msg("admin secret rejected")
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
