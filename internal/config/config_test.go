package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "dev-secret-key", cfg.JWTSecret)
	assert.Equal(t, 5*time.Minute, cfg.CatalogCacheTTL)
	assert.Equal(t, 5, cfg.KioskRateLimitBurst)
	assert.Equal(t, 3, cfg.ExpiryReminderDays)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_RequiresSecretInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.ErrorIs(t, err, ErrMissingJWTSecret)
}

func TestLoad_InvalidNumbers(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")

	t.Run("burst", func(t *testing.T) {
		t.Setenv("KIOSK_RATE_LIMIT_BURST", "many")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("reminder days", func(t *testing.T) {
		t.Setenv("EXPIRY_REMINDER_DAYS", "three")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("ttl", func(t *testing.T) {
		t.Setenv("CATALOG_CACHE_TTL", "soon")
		_, err := Load()
		assert.Error(t, err)
	})
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "prod-secret")
	t.Setenv("PORT", "9090")
	t.Setenv("MAINTENANCE_CRON", "@hourly")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "prod-secret", cfg.JWTSecret)
	assert.Equal(t, "@hourly", cfg.MaintenanceCron)
	assert.False(t, cfg.IsDevelopment())
}

func TestSchedulerEnabled(t *testing.T) {
	assert.True(t, (&Config{MaintenanceCron: "5 0 * * *"}).SchedulerEnabled())
	assert.False(t, (&Config{MaintenanceCron: "off"}).SchedulerEnabled())
	assert.False(t, (&Config{}).SchedulerEnabled())
}
