package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"APP_ENV", "PORT", "STORAGE_DRIVER", "DB_NAME", "JWT_TTL_HOURS", "CLIENT_URL"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, StorageMongo, cfg.StorageDriver)
	assert.Equal(t, "eTuitionBD", cfg.DBName)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTTTL())
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.ClientOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("STORAGE_DRIVER", "Memory")
	t.Setenv("CLIENT_URL", "https://a.example, https://b.example ,")
	t.Setenv("JWT_TTL_HOURS", "not-a-number")

	cfg := Load()

	assert.Equal(t, 8081, cfg.Port)
	assert.Equal(t, StorageMemory, cfg.StorageDriver)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.ClientOrigins)
	assert.Equal(t, 7*24, cfg.JWTTTLHours)
}

func TestLoad_JWTSecret(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		secret  string
		want    string
		wantErr error
	}{
		{name: "dev falls back", env: "dev", want: devJWTSecret},
		{name: "test falls back", env: "test", want: devJWTSecret},
		{name: "production requires a secret", env: "production", wantErr: ErrMissingJWTSecret},
		{name: "staging requires a secret", env: "staging", wantErr: ErrMissingJWTSecret},
		{name: "explicit secret wins", env: "production", secret: "s3cr3t", want: "s3cr3t"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("APP_ENV", tt.env)
			t.Setenv("JWT_SECRET", tt.secret)

			cfg := Load()

			if tt.wantErr != nil {
				require.ErrorIs(t, cfg.Validate(), tt.wantErr)
				assert.Empty(t, cfg.JWTSecret)
				return
			}
			require.NoError(t, cfg.Validate())
			assert.Equal(t, tt.want, cfg.JWTSecret)
		})
	}
}

func TestWithTimeout_InheritsParentCancellation(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	ctx, done := WithTimeout(parent, time.Minute)
	defer done()

	cancel()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("child context was not cancelled with its parent")
	}
}
