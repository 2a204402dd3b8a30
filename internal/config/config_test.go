package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("STORAGE_DRIVER", "memory")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.StorageDriver)
	assert.Equal(t, 2*time.Second, cfg.Cooldown)
	assert.Equal(t, 10, cfg.MaxPerMinute)
	assert.Equal(t, 100, cfg.MaxPerDay)
	assert.Equal(t, "mistral-small-latest", cfg.AIModel)
	assert.InDelta(t, 0.15, cfg.ImageSendChance, 1e-9)
	assert.Equal(t, time.UTC, cfg.Location())

	s := cfg.MindSettings()
	assert.Equal(t, 20, s.HistoryLimit)
	assert.Equal(t, 50, s.FactsLimit)
	assert.InDelta(t, 0.05, s.TrustIncrement, 1e-9)
	assert.Equal(t, time.UTC, s.Location)
}

func TestParse_Overrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "redis")
	t.Setenv("REDIS_ADDR", "cache:6379")
	t.Setenv("COOLDOWN", "500ms")
	t.Setenv("MAX_PER_DAY", "7")
	t.Setenv("TIMEZONE", "Europe/Moscow")
	t.Setenv("ADMIN_USER_IDS", "1, 2,,")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, cfg.MindSettings().Cooldown)
	assert.Equal(t, 7, cfg.MindSettings().MaxPerDay)
	assert.Equal(t, "cache:6379", cfg.StorageOptions().RedisAddr)
	assert.Equal(t, "Europe/Moscow", cfg.Location().String())
	assert.Equal(t, []string{"1", "2"}, cfg.AdminUserIDs)
}

func TestParse_Invalid(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "mongo")
	t.Setenv("MAX_TRUST", "2")
	_, err := Parse()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORAGE_DRIVER")
	assert.Contains(t, err.Error(), "MAX_TRUST")
}

func TestAccess(t *testing.T) {
	cfg := &Config{
		AdminUserIDs:     []string{"admin"},
		BlacklistUserIDs: []string{"bad"},
		WhitelistUserIDs: []string{"friend"},
	}
	assert.True(t, cfg.Access("stranger"))
	assert.False(t, cfg.Access("bad"))

	cfg.WhitelistEnabled = true
	assert.False(t, cfg.Access("stranger"))
	assert.True(t, cfg.Access("friend"))
	assert.True(t, cfg.Access("admin"))
	assert.True(t, cfg.IsAdmin("admin"))
	assert.False(t, cfg.IsAdmin("friend"))

	cfg.BlacklistUserIDs = append(cfg.BlacklistUserIDs, "admin")
	assert.False(t, cfg.Access("admin"))
}
