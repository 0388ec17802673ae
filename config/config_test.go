package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Talha-100/hft-matching-engine/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 12345, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "development", cfg.Logger.Mode)

	assert.True(t, cfg.Journal.Memory.Enabled)
	assert.Equal(t, 1000, cfg.Journal.Memory.MaxTrades)
	assert.True(t, cfg.Journal.File.Enabled)
	assert.Equal(t, "trades.log", cfg.Journal.File.Path)
	assert.False(t, cfg.Journal.Redis.Enabled)
	assert.False(t, cfg.Journal.Database.Enabled)
	assert.False(t, cfg.Feed.Enabled)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ENGINE_PORT", "15000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")
	t.Setenv("KAFKA_TOPIC", "tape")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 15000, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.True(t, cfg.Feed.Enabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.Feed.Brokers)
	assert.Equal(t, "tape", cfg.Feed.Topic)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"PortTooLarge", "ENGINE_PORT", "70000"},
		{"PortZero", "ENGINE_PORT", "0"},
		{"BadLogLevel", "LOG_LEVEL", "verbose"},
		{"BadLogMode", "LOG_MODE", "fancy"},
		{"ZeroMemoryTrades", "MEMORY_MAX_TRADES", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}

func TestMalformedEnvFallsBackToDefault(t *testing.T) {
	t.Setenv("ENGINE_PORT", "not-a-number")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 12345, cfg.Server.Port)
}
