package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// AllSportsAPI feed
	AllSportsAPIKey    string
	FeedURL            string
	FeedSport          string
	FeedReconnectDelay time.Duration

	// Database. Empty means in-memory storage.
	DatabaseURL string

	// Server
	Host string
	Port string

	// Event relay. Empty AMQPURL disables the relay.
	AMQPURL      string
	AMQPExchange string

	// Background jobs
	StatusSyncInterval time.Duration

	// Logging
	LogLevel  string
	LogFormat string

	Environment string
}

func Load() *Config {
	// .env is optional; real deployments inject variables directly
	_ = godotenv.Load()

	return &Config{
		AllSportsAPIKey:    getEnv("ALLSPORTS_API_KEY", ""),
		FeedURL:            getEnv("FEED_URL", "wss://wss.allsportsapi.com/live_events"),
		FeedSport:          getEnv("FEED_SPORT", "football"),
		FeedReconnectDelay: getEnvDuration("FEED_RECONNECT_DELAY", 5*time.Second),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		Host: getEnv("HOST", "0.0.0.0"),
		Port: getEnv("PORT", "8000"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "sportz.events"),

		StatusSyncInterval: getEnvDuration("STATUS_SYNC_INTERVAL", time.Minute),

		LogLevel:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "text")),

		Environment: getEnv("ENVIRONMENT", "development"),
	}
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

// FeedEnabled reports whether the live feed has a credential to connect with.
func (c *Config) FeedEnabled() bool {
	return c.AllSportsAPIKey != ""
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(value, "%d", &result); err != nil || result <= 0 {
		return defaultValue
	}
	return result
}

// getEnvDuration accepts Go duration strings ("5s", "2m") or a bare number of seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	if secs := getEnvInt(key, 0); secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
