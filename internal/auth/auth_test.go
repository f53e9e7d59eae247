package auth

import (
	"context"
	"testing"

	"github.com/marisol/resume-optimizer/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabled(t *testing.T) {
	v := Disabled{}
	assert.False(t, v.Enabled())
	assert.NoError(t, v.Verify(context.Background(), ""))
	assert.NoError(t, v.Verify(context.Background(), "anything"))
}

func TestFromConfig_Disabled(t *testing.T) {
	v, err := FromConfig(config.Config{AuthMode: config.AuthDisabled})
	require.NoError(t, err)
	assert.IsType(t, Disabled{}, v)
}

func TestFromConfig_JWT(t *testing.T) {
	v, err := FromConfig(config.Config{
		AuthMode:  config.AuthJWT,
		JWTSecret: "secret",
	})
	require.NoError(t, err)
	assert.IsType(t, &JWTVerifier{}, v)
	assert.True(t, v.Enabled())
}

func TestFromConfig_Supabase(t *testing.T) {
	v, err := FromConfig(config.Config{
		AuthMode:        config.AuthSupabase,
		SupabaseURL:     "https://project.supabase.co",
		SupabaseAnonKey: "anon-key",
	})
	require.NoError(t, err)
	assert.IsType(t, &SupabaseVerifier{}, v)
	assert.True(t, v.Enabled())
}

func TestFromConfig_UnknownMode(t *testing.T) {
	_, err := FromConfig(config.Config{AuthMode: "saml"})
	assert.Error(t, err)
}
