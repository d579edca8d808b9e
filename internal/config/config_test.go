package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "csv", cfg.StoreBackend)
	assert.Equal(t, "0 8 */3 * *", cfg.CronSchedule)
	assert.Equal(t, 3, cfg.CronIntervalDays)
	assert.Equal(t, 8, cfg.CronHour)
	assert.Equal(t, 0, cfg.CronMinute)
	assert.False(t, cfg.CronIntervalMode)
}

func TestLoadPostgresRequiresURL(t *testing.T) {
	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	require.Error(t, err)

	t.Setenv("DATABASE_URL", "postgres://localhost/outreach")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.StoreBackend)
}

func TestLoadRejectsBadScheduleParams(t *testing.T) {
	t.Setenv("CRON_HOUR", "25")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("CRON_HOUR", "8")
	t.Setenv("CRON_INTERVAL_DAYS", "0")
	_, err = Load()
	require.Error(t, err)

	t.Setenv("CRON_INTERVAL_DAYS", "3")
	t.Setenv("CRON_MINUTE", "60")
	_, err = Load()
	require.Error(t, err)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("STORE_BACKEND", "redis")
	_, err := Load()
	require.Error(t, err)
}
