package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	cfg := fromViper(v)

	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, "getHoliDeInfo", cfg.Holidays.Operation)
	assert.Equal(t, 3*time.Second, cfg.Holidays.RequestTimeout)
	assert.Equal(t, 2, cfg.Holidays.MaxAttempts)
	assert.Equal(t, 5*time.Second, cfg.Holidays.RetryDelay)
	assert.Equal(t, 3, cfg.Holidays.BatchSize)
	assert.Equal(t, "data", cfg.Events.Path)
	assert.Equal(t, SettingsBackendMemory, cfg.Settings.Backend)
	assert.Equal(t, 50, cfg.Maintenance.SnapshotRetention)
	assert.False(t, cfg.Database.Enabled)
}

func TestOverridesAndFallbacks(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("HOLIDAY_REQUEST_TIMEOUT", "not-a-duration")
	v.Set("HOLIDAY_BATCH_SIZE", 0)
	v.Set("FIREBASE_DATABASE_URL", "https://ankr.firebaseio.com/")
	v.Set("FIREBASE_EVENTS_PATH", "/events/")
	v.Set("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	v.Set("SETTINGS_BACKEND", "REDIS")
	cfg := fromViper(v)

	assert.Equal(t, 3*time.Second, cfg.Holidays.RequestTimeout)
	assert.Equal(t, 3, cfg.Holidays.BatchSize)
	assert.Equal(t, "https://ankr.firebaseio.com", cfg.Events.DatabaseURL)
	assert.Equal(t, "events", cfg.Events.Path)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, SettingsBackendRedis, cfg.Settings.Backend)
}

func TestLocation(t *testing.T) {
	assert.Equal(t, time.Local, (&Config{}).Location())

	loc := (&Config{Timezone: "Nowhere/Unknown"}).Location()
	_, offset := time.Date(2025, 1, 1, 0, 0, 0, 0, loc).Zone()
	assert.Equal(t, 9*60*60, offset)
}
