package config

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCooldownFromMinutes(t *testing.T) {
	assert.Equal(t, 180*time.Minute, CooldownFromMinutes(DefaultViewCooldownMinutes))
	assert.Equal(t, 90*time.Second, CooldownFromMinutes(1.5))
	assert.Zero(t, CooldownFromMinutes(0))
	assert.Zero(t, CooldownFromMinutes(-5))
	assert.Zero(t, CooldownFromMinutes(math.NaN()))
	assert.Zero(t, CooldownFromMinutes(math.Inf(1)))
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("VIEW_COOLDOWN_MINUTES", "0")
	t.Setenv("VIEW_STORE", "Redis")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Zero(t, cfg.ViewCooldown)
	assert.Equal(t, "redis", cfg.ViewStore)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
}

func TestKeysDefaultToEmpty(t *testing.T) {
	t.Setenv("MODERATOR_KEY", "")
	t.Setenv("ADMIN_KEY", "")
	t.Setenv("JWT_SECRET", "")

	cfg := Load()

	assert.Empty(t, cfg.ModeratorKey)
	assert.Empty(t, cfg.AdminKey)
	assert.Empty(t, cfg.JWTSecret)
	assert.ErrorIs(t, cfg.Validate(), ErrMissingJWTSecret)
}

func TestValidateRejectsPlaceholderSecret(t *testing.T) {
	assert.ErrorIs(t, (&Config{JWTSecret: "your-secret-key"}).Validate(), ErrMissingJWTSecret)
	assert.ErrorIs(t, (&Config{JWTSecret: "   "}).Validate(), ErrMissingJWTSecret)
	assert.NoError(t, (&Config{JWTSecret: "f3c1b0d9a7e2"}).Validate())
}
