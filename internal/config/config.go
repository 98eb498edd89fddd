package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	HTTPPort        string
	CartAPIBaseURL  string
	RedisAddr       string // empty means in-process cache
	KafkaBrokers    []string
	JWTSecret       string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	CartFreshness   time.Duration
	SearchDebounce  time.Duration
	CatalogRefresh  time.Duration
}

func Load() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		CartAPIBaseURL:  getEnv("CART_API_URL", "http://localhost:9000"),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		KafkaBrokers:    splitList(getEnv("KAFKA_BROKERS", "")),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		RequestTimeout:  getDuration("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		CartFreshness:   getDuration("CART_FRESHNESS", 30*time.Second),
		SearchDebounce:  getDuration("SEARCH_DEBOUNCE", 150*time.Millisecond),
		CatalogRefresh:  getDuration("CATALOG_REFRESH", 5*time.Minute),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
