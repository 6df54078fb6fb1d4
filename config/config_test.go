package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"ALLSPORTS_API_KEY", "FEED_URL", "FEED_SPORT", "FEED_RECONNECT_DELAY",
		"DATABASE_URL", "HOST", "PORT", "AMQP_URL", "AMQP_EXCHANGE",
		"STATUS_SYNC_INTERVAL", "LOG_LEVEL", "LOG_FORMAT", "ENVIRONMENT",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "wss://wss.allsportsapi.com/live_events", cfg.FeedURL)
	assert.Equal(t, "football", cfg.FeedSport)
	assert.Equal(t, 5*time.Second, cfg.FeedReconnectDelay)
	assert.Equal(t, "0.0.0.0:8000", cfg.Addr())
	assert.Equal(t, "sportz.events", cfg.AMQPExchange)
	assert.Equal(t, time.Minute, cfg.StatusSyncInterval)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.FeedEnabled())
	assert.Empty(t, cfg.DatabaseURL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ALLSPORTS_API_KEY", "secret")
	t.Setenv("PORT", "9090")
	t.Setenv("FEED_RECONNECT_DELAY", "250ms")
	t.Setenv("STATUS_SYNC_INTERVAL", "30")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg := Load()

	assert.True(t, cfg.FeedEnabled())
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.FeedReconnectDelay)
	assert.Equal(t, 30*time.Second, cfg.StatusSyncInterval)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestGetEnvDurationRejectsGarbage(t *testing.T) {
	t.Setenv("SOME_DELAY", "soon")
	assert.Equal(t, 3*time.Second, getEnvDuration("SOME_DELAY", 3*time.Second))

	t.Setenv("SOME_DELAY", "-5s")
	assert.Equal(t, 3*time.Second, getEnvDuration("SOME_DELAY", 3*time.Second))
}
