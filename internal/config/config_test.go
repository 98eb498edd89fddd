package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "http://localhost:9000", cfg.CartAPIBaseURL)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, 30*time.Second, cfg.CartFreshness)
	assert.Equal(t, 150*time.Millisecond, cfg.SearchDebounce)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9999")
	t.Setenv("KAFKA_BROKERS", "b1:9092, b2:9092,")
	t.Setenv("CART_FRESHNESS", "45s")
	t.Setenv("REQUEST_TIMEOUT", "garbage")

	cfg := Load()

	assert.Equal(t, "9999", cfg.HTTPPort)
	assert.Equal(t, []string{"b1:9092", "b2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 45*time.Second, cfg.CartFreshness)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout, "bad duration falls back to default")
}
