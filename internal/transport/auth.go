package transport

import (
	"net/http"

	"github.com/rpggio/hvacquote/internal/mcp"
)

// AuthMiddleware enforces a static bearer token. An empty token disables it.
func AuthMiddleware(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}
			if !mcp.TokenMatches(r.Header.Get("Authorization"), token) {
				http.Error(w, "invalid bearer token", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
