package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// SupabaseVerifier checks tokens against a Supabase auth endpoint. The token
// is forwarded as-is; Supabase decides whether it names a live session.
type SupabaseVerifier struct {
	baseURL string
	anonKey string
	client  *http.Client
}

// NewSupabaseVerifier creates a verifier for the given project URL and anon key.
func NewSupabaseVerifier(baseURL, anonKey string) *SupabaseVerifier {
	return &SupabaseVerifier{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Enabled always returns true.
func (v *SupabaseVerifier) Enabled() bool { return true }

// Verify asks the Supabase user endpoint whether the token names a live
// session. A non-200 response means the token was rejected; transport
// failures surface as-is so the caller can report them separately.
func (v *SupabaseVerifier) Verify(ctx context.Context, token string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return fmt.Errorf("failed to build verification request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("apikey", v.anonKey)

	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("token verification request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: auth endpoint returned status %d", ErrInvalidToken, resp.StatusCode)
	}
	return nil
}
