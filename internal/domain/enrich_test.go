package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEnrich_StampsRecordAndAlerts(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 26, 53, 589_000_000, time.UTC)
	raw := RawTelemetry{
		DeviceID:     "dev-1",
		Temperature:  38.2,
		O2Saturation: 98,
		HealthScore:  90,
	}

	record := Enrich(raw, now)

	require.Equal(t, raw, record.RawTelemetry)
	require.Equal(t, now, record.Timestamp)
	require.Equal(t, "2026-03-14T09:26:53.589Z", record.ProcessedAt)
	require.Equal(t, StatusGood, record.OverallStatus)

	require.Len(t, record.Alerts, 1)
	require.Equal(t, now, record.Alerts[0].Timestamp)
	require.Equal(t, "dev-1", record.Alerts[0].DeviceID)
	require.False(t, record.Alerts[0].Acknowledged)
}

func TestEnrich_Deterministic(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	raw := RawTelemetry{
		DeviceID:     "dev-1",
		Temperature:  35.0,
		O2Saturation: 92,
		FallDetected: true,
		HealthScore:  40,
	}

	a := Enrich(raw, now)
	b := Enrich(raw, now)

	require.Equal(t, a, b)

	aJSON, err := json.Marshal(a)
	require.NoError(t, err)
	bJSON, err := json.Marshal(b)
	require.NoError(t, err)
	require.Equal(t, aJSON, bJSON)
}

func TestEnrich_EmptyAlertsSerializeAsArray(t *testing.T) {
	raw := RawTelemetry{
		DeviceID:     "dev-1",
		Temperature:  36.8,
		O2Saturation: 98,
		HealthScore:  95,
	}

	record := Enrich(raw, time.Now())
	require.NotNil(t, record.Alerts)

	payload, err := json.Marshal(record)
	require.NoError(t, err)
	require.Contains(t, string(payload), `"alerts":[]`)
}
