package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, ":8081", cfg.HTTPAddr)
	assert.Equal(t, []string{"kafka:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.TrustClientTotal)
	assert.Equal(t, 1500*time.Millisecond, cfg.PaymentDelay)
	assert.Empty(t, cfg.JWTSecret)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("ORDERS_TRUST_CLIENT_TOTAL", "false")
	t.Setenv("ORDER_CACHE_TTL", "30s")
	t.Setenv("POSTGRES_MAX_CONNS", "16")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.False(t, cfg.TrustClientTotal)
	assert.Equal(t, 30*time.Second, cfg.OrderCacheTTL)
	assert.Equal(t, int32(16), cfg.PostgresMaxConns)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("REQUEST_TIMEOUT", "soon")

	_, err := Load()

	assert.Error(t, err)
}

func TestBrokers_DropsBlanks(t *testing.T) {
	assert.Empty(t, Config{KafkaBrokers: []string{""}}.Brokers())
	assert.Equal(t, []string{"k1:9092"}, Config{KafkaBrokers: []string{" k1:9092 ", ""}}.Brokers())
}
