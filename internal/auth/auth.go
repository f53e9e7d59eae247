// Package auth provides bearer-token verification for job submission.
//
// Three variants are supported: verification disabled, local HS256 JWT
// validation against a shared secret, and remote verification against a
// Supabase auth endpoint.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/marisol/resume-optimizer/internal/config"
)

// ErrInvalidToken marks a token the verifier examined and rejected, as
// opposed to a verification attempt that failed outright (network error,
// unexpected response). Callers distinguish the two when shaping 401 bodies.
var ErrInvalidToken = errors.New("invalid token")

// Verifier checks bearer tokens before a job may be submitted.
type Verifier interface {
	// Enabled reports whether verification is active. When false the
	// middleware passes requests through without touching headers.
	Enabled() bool

	// Verify returns nil for an acceptable token, a wrapped ErrInvalidToken
	// for a rejected one, and any other error when the check itself failed.
	Verify(ctx context.Context, token string) error
}

// Disabled is a Verifier that accepts every request.
type Disabled struct{}

// Enabled always returns false.
func (Disabled) Enabled() bool { return false }

// Verify always succeeds.
func (Disabled) Verify(ctx context.Context, token string) error { return nil }

// FromConfig selects the verifier variant named by cfg.AuthMode.
func FromConfig(cfg config.Config) (Verifier, error) {
	switch cfg.AuthMode {
	case config.AuthDisabled:
		return Disabled{}, nil
	case config.AuthJWT:
		return NewJWTVerifier(cfg.JWTSecret), nil
	case config.AuthSupabase:
		return NewSupabaseVerifier(cfg.SupabaseURL, cfg.SupabaseAnonKey), nil
	default:
		return nil, fmt.Errorf("unknown auth mode: %q", cfg.AuthMode)
	}
}
