// Package middleware provides HTTP middleware for request authentication.
package middleware

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/marisol/resume-optimizer/internal/auth"
)

// RequireAuth creates middleware that verifies bearer tokens before a request
// reaches its handler. When the verifier is disabled requests pass through
// with no header inspection at all.
func RequireAuth(verifier auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !verifier.Enabled() {
				next.ServeHTTP(w, r)
				return
			}

			// Extract Authorization header
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w, "Unauthorized")
				return
			}

			// Parse Bearer token
			// Handle case-insensitive "Bearer" prefix
			parts := strings.Fields(authHeader)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				unauthorized(w, "Unauthorized")
				return
			}

			token := strings.TrimSpace(parts[1])
			if token == "" {
				unauthorized(w, "Unauthorized")
				return
			}

			// Verify token
			if err := verifier.Verify(r.Context(), token); err != nil {
				if errors.Is(err, auth.ErrInvalidToken) {
					unauthorized(w, "Unauthorized Invalid Token")
				} else {
					unauthorized(w, "Unauthorized Exception: "+err.Error())
				}
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// unauthorized writes a 401 JSON error response.
func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}
