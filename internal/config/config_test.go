package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("fails fast without a jwt secret", func(t *testing.T) {
		t.Setenv("AUTH_JWT_SECRET", "")

		cfg, err := Load()

		assert.Nil(t, cfg)
		assert.ErrorIs(t, err, ErrMissingJWTSecret)
	})

	t.Run("applies defaults", func(t *testing.T) {
		t.Setenv("AUTH_JWT_SECRET", "s3cret")
		t.Setenv("APP_PORT", "")
		t.Setenv("AUTH_ACCESS_TOKEN_TTL_MINUTES", "")
		t.Setenv("AUTH_BCRYPT_COST", "")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "0.0.0.0:5000", cfg.App.Addr())
		assert.Equal(t, 7*24*time.Hour, cfg.Auth.AccessTokenTTL())
		assert.Equal(t, 10, cfg.Auth.BcryptCost)
		assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
		assert.False(t, cfg.Seed.Enabled())
	})

	t.Run("rejects bcrypt cost out of range", func(t *testing.T) {
		t.Setenv("AUTH_JWT_SECRET", "s3cret")
		t.Setenv("AUTH_BCRYPT_COST", "99")

		_, err := Load()

		assert.ErrorContains(t, err, "AUTH_BCRYPT_COST")
	})

	t.Run("rejects invalid redis db", func(t *testing.T) {
		t.Setenv("AUTH_JWT_SECRET", "s3cret")
		t.Setenv("REDIS_DB", "one")

		_, err := Load()

		assert.ErrorContains(t, err, "REDIS_DB")
	})

	t.Run("seed enabled with normalized email", func(t *testing.T) {
		t.Setenv("AUTH_JWT_SECRET", "s3cret")
		t.Setenv("AUTH_BCRYPT_COST", "")
		t.Setenv("REDIS_DB", "")
		t.Setenv("SEED_ADMIN_EMAIL", "  Admin@School.EDU ")
		t.Setenv("SEED_ADMIN_PASSWORD", "password123")

		cfg, err := Load()
		require.NoError(t, err)

		assert.True(t, cfg.Seed.Enabled())
		assert.Equal(t, "admin@school.edu", cfg.Seed.AdminEmail)
	})
}
