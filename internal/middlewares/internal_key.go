package middlewares

import (
	"crypto/subtle"
	"net/http"
)

const InternalKeyHeader = "X-Internal-Key"

// InternalKeyMiddleware guards the loopback ingest surface. With no key
// configured the surface stays disabled rather than open.
func InternalKeyMiddleware(key string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key == "" {
				http.Error(w, "internal API disabled", http.StatusServiceUnavailable)
				return
			}
			raw := r.Header.Get(InternalKeyHeader)
			if raw == "" {
				http.Error(w, "Missing internal key", http.StatusUnauthorized)
				return
			}
			if subtle.ConstantTimeCompare([]byte(raw), []byte(key)) != 1 {
				http.Error(w, "Invalid internal key", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
