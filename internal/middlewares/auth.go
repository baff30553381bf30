package middlewares

import (
	"crypto/subtle"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"curryhouse/internal/common/httpx"
	"curryhouse/internal/config"
)

// AdminAuth guards the back-office routes with HTTP Basic credentials:
// one admin user, bcrypt-hashed password from the environment.
func AdminAuth(cfg config.AdminConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			if !ok {
				unauthorized(w)
				return
			}
			if subtle.ConstantTimeCompare([]byte(user), []byte(cfg.User)) != 1 {
				unauthorized(w)
				return
			}
			if bcrypt.CompareHashAndPassword([]byte(cfg.PasswordHash), []byte(pass)) != nil {
				unauthorized(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="admin"`)
	httpx.Error(w, http.StatusUnauthorized, "unauthorized")
}
