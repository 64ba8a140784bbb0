package middleware

import (
	"crypto/subtle"
	"net/http"
)

// APIKeyHeader is the header carrying the static pre-shared key.
const APIKeyHeader = "X-API-Key"

// RequireAPIKey is middleware that requires the static pre-shared key on
// every request. An empty configured key disables the check entirely, which
// is only appropriate for local development.
func RequireAPIKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key != "" {
				provided := r.Header.Get(APIKeyHeader)
				if subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusUnauthorized)
					w.Write([]byte(`{"error": "unauthorized"}`))
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
