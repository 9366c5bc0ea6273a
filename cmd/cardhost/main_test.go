package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateConfigRequiresJWTSecret(t *testing.T) {
	require.ErrorIs(t, validateConfig(appConfig{}), errMissingJWTSecret)
	require.NoError(t, validateConfig(appConfig{JWTSecret: "secret"}))
	require.NoError(t, validateConfig(appConfig{AllowAnonymous: true}))
}

func TestLoadConfigReadsAuthSettings(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("ALLOW_UNAUTHENTICATED", "")
	require.Error(t, validateConfig(loadConfig()))

	t.Setenv("ALLOW_UNAUTHENTICATED", "true")
	cfg := loadConfig()
	require.True(t, cfg.AllowAnonymous)
	require.NoError(t, validateConfig(cfg))

	t.Setenv("ALLOW_UNAUTHENTICATED", "")
	t.Setenv("JWT_SECRET", "s3cret")
	cfg = loadConfig()
	require.Equal(t, "s3cret", cfg.JWTSecret)
	require.NoError(t, validateConfig(cfg))
}
