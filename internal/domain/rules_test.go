package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEvaluate_FeverOnly(t *testing.T) {
	raw := RawTelemetry{
		DeviceID:     "dev-1",
		Temperature:  38.2,
		O2Saturation: 98,
		HealthScore:  90,
	}

	alerts, status := Evaluate(raw)

	require.Len(t, alerts, 1)
	require.Equal(t, AlertFever, alerts[0].Type)
	require.Equal(t, SeverityHigh, alerts[0].Severity)
	require.NotNil(t, alerts[0].Value)
	require.Equal(t, 38.2, *alerts[0].Value)
	require.Equal(t, "dev-1", alerts[0].DeviceID)
	require.Equal(t, StatusGood, status)
}

func TestEvaluate_LowOxygenAndFall(t *testing.T) {
	raw := RawTelemetry{
		DeviceID:     "dev-1",
		Temperature:  36.5,
		O2Saturation: 92,
		FallDetected: true,
		HealthScore:  45,
	}

	alerts, status := Evaluate(raw)

	require.Len(t, alerts, 2)

	require.Equal(t, AlertLowOxygen, alerts[0].Type)
	require.Equal(t, SeverityHigh, alerts[0].Severity)
	require.NotNil(t, alerts[0].Value)
	require.Equal(t, 92.0, *alerts[0].Value)

	require.Equal(t, AlertFall, alerts[1].Type)
	require.Equal(t, SeverityCritical, alerts[1].Severity)
	require.Nil(t, alerts[1].Value)

	require.Equal(t, StatusCritical, status)
}

func TestEvaluate_Hypothermia(t *testing.T) {
	raw := RawTelemetry{
		DeviceID:     "dev-1",
		Temperature:  35.0,
		O2Saturation: 99,
		HealthScore:  75,
	}

	alerts, status := Evaluate(raw)

	require.Len(t, alerts, 1)
	require.Equal(t, AlertHypothermia, alerts[0].Type)
	require.Equal(t, SeverityMedium, alerts[0].Severity)
	require.Equal(t, 35.0, *alerts[0].Value)
	require.Equal(t, StatusWarning, status)
}

func TestEvaluate_NormalTemperatureBand(t *testing.T) {
	// 36.0 and 37.5 are inclusive bounds: neither alert fires at either end
	for _, temp := range []float64{36.0, 36.8, 37.5} {
		raw := RawTelemetry{
			DeviceID:     "dev-1",
			Temperature:  temp,
			O2Saturation: 98,
			HealthScore:  90,
		}

		alerts, _ := Evaluate(raw)
		for _, a := range alerts {
			require.NotEqual(t, AlertFever, a.Type, "temp %.1f", temp)
			require.NotEqual(t, AlertHypothermia, a.Type, "temp %.1f", temp)
		}
	}
}

func TestEvaluate_FeverBeforeLowOxygen(t *testing.T) {
	raw := RawTelemetry{
		DeviceID:     "dev-1",
		Temperature:  39.0,
		O2Saturation: 90,
		HealthScore:  90,
	}

	alerts, _ := Evaluate(raw)

	require.Len(t, alerts, 2)
	require.Equal(t, AlertFever, alerts[0].Type)
	require.Equal(t, AlertLowOxygen, alerts[1].Type)
}

func TestEvaluate_NoAlerts(t *testing.T) {
	raw := RawTelemetry{
		DeviceID:     "dev-1",
		Temperature:  36.8,
		O2Saturation: 98,
		HealthScore:  95,
	}

	alerts, status := Evaluate(raw)

	require.Empty(t, alerts)
	require.Equal(t, StatusGood, status)
}

func TestStatusForScore_Bands(t *testing.T) {
	tests := []struct {
		score int
		want  OverallStatus
	}{
		{0, StatusCritical},
		{59, StatusCritical},
		{60, StatusWarning}, // boundary belongs to the higher band
		{79, StatusWarning},
		{80, StatusGood}, // boundary belongs to the higher band
		{100, StatusGood},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, StatusForScore(tt.score), "score %d", tt.score)
	}
}
