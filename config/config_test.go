package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("DATABASE_URL", "postgres://localhost/pos_test")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PORT", "8080")
	t.Setenv("CORS_ORIGINS", "https://pos.example.com, https://kitchen.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/pos_test", cfg.DatabaseURL)
	assert.Equal(t, "8080", cfg.Port)
	assert.True(t, cfg.IsTest())
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, []string{"https://pos.example.com", "https://kitchen.example.com"}, cfg.CORSOrigins)
	assert.Same(t, cfg, GetConfig())
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("DATABASE_URL", "postgres://localhost/pos_test")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PORT", "")
	t.Setenv("CORS_ORIGINS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Port)
	assert.Contains(t, cfg.CORSOrigins, "http://localhost:5173")
}

func TestConnectDatabaseRequiresLoadedConfig(t *testing.T) {
	prev := GetConfig()
	defer SetConfig(prev)

	SetConfig(nil)
	err := ConnectDatabase()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration not loaded")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{
			name:   "complete",
			config: Config{DatabaseURL: "postgres://localhost/pos", JWTSecret: "s"},
		},
		{
			name:    "missing database url",
			config:  Config{JWTSecret: "s"},
			wantErr: "DATABASE_URL",
		},
		{
			name:    "missing jwt secret",
			config:  Config{DatabaseURL: "postgres://localhost/pos"},
			wantErr: "JWT_SECRET",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
