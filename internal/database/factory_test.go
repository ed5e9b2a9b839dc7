package database

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/automationos/automationos/internal/config"
	"github.com/automationos/automationos/internal/utils"
)

func TestNewClient_Supabase(t *testing.T) {
	cfg := config.NewDefault()
	cfg.Supabase.URL = "https://abcd.supabase.co/"
	cfg.Supabase.ServiceRoleKey = "service-key"

	client, closeFn, err := NewClient(cfg, zerolog.Nop())
	require.NoError(t, err)
	require.NotNil(t, closeFn)
	assert.NoError(t, closeFn())

	supabase, ok := client.(*SupabaseClient)
	require.True(t, ok)
	assert.Equal(t, "https://abcd.supabase.co", supabase.baseURL)
	assert.Equal(t, "service-key", supabase.serviceKey)
}

func TestNewClient_MissingCredentials(t *testing.T) {
	cfg := config.NewDefault()
	cfg.Supabase.URL = "https://abcd.supabase.co"

	_, _, err := NewClient(cfg, zerolog.Nop())
	require.Error(t, err)
	assert.True(t, utils.IsConfigError(err))
	assert.Contains(t, err.Error(), config.EnvServiceRoleKey)
}

func TestNewClient_DirectDatabaseStillRequiresCredentials(t *testing.T) {
	cfg := config.NewDefault()
	// Port 1 never answers; the credentials check must fail before any dial
	cfg.Database.Host = "127.0.0.1"
	cfg.Database.Port = 1

	_, _, err := NewClient(cfg, zerolog.Nop())
	require.Error(t, err)
	assert.True(t, utils.IsConfigError(err))
	assert.Contains(t, err.Error(), config.EnvSupabaseURL)
	assert.Contains(t, err.Error(), config.EnvServiceRoleKey)
}

func TestOpen_RequiresDirectDatabase(t *testing.T) {
	_, err := Open(config.NewDefault(), zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}
