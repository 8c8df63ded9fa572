package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	require.Equal(t, "3000", cfg.HTTPPort)
	require.Equal(t, "seniorcare/monitor/data", cfg.MQTTTopic)
	require.Equal(t, "ESP32_SeniorCare_001", cfg.DefaultDeviceID)
	require.Equal(t, 256, cfg.SaveQueueSize)
	require.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("MQTT_TOPIC", "test/topic")
	t.Setenv("SAVE_QUEUE_SIZE", "32")
	t.Setenv("DB_MAX_CONNS", "not-a-number") // falls back

	cfg := Load()

	require.Equal(t, "8080", cfg.HTTPPort)
	require.Equal(t, "test/topic", cfg.MQTTTopic)
	require.Equal(t, 32, cfg.SaveQueueSize)
	require.Equal(t, int32(10), cfg.DBMaxConns)
}
