package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gFigueiredoo/trab-iot/internal/domain"
)

func testRecord(deviceID string, score int, now time.Time) *domain.EnrichedRecord {
	record := domain.Enrich(domain.RawTelemetry{
		DeviceID:     deviceID,
		Temperature:  38.5, // FEVER, so every save appends an alert too
		O2Saturation: 98,
		HealthScore:  score,
	}, now)
	return &record
}

func TestMemoryStore_CurrentIsLastWriteWins(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	now := time.Now()

	require.NoError(t, s.Save(ctx, testRecord("dev-1", 90, now)))
	require.NoError(t, s.Save(ctx, testRecord("dev-1", 70, now.Add(time.Second))))

	current, err := s.GetCurrent(ctx, "dev-1")
	require.NoError(t, err)
	require.Equal(t, 70, current.HealthScore)
}

func TestMemoryStore_GetCurrentUnknownDevice(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.GetCurrent(context.Background(), "nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_HistoryNewestFirstWithLimit(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Now()

	for i := 0; i < 5; i++ {
		rec := testRecord("dev-1", 80+i, base.Add(time.Duration(i)*time.Second))
		require.NoError(t, s.Save(ctx, rec))
	}

	history, err := s.GetHistory(ctx, "dev-1", 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, 84, history[0].HealthScore)
	require.Equal(t, 83, history[1].HealthScore)
}

func TestMemoryStore_SaveIsNotIdempotent(t *testing.T) {
	// append-only semantics: saving the same record twice appends twice
	ctx := context.Background()
	s := NewMemoryStore()
	rec := testRecord("dev-1", 90, time.Now())

	require.NoError(t, s.Save(ctx, rec))
	require.NoError(t, s.Save(ctx, rec))

	history, err := s.GetHistory(ctx, "dev-1", 0)
	require.NoError(t, err)
	require.Len(t, history, 2)

	alerts, err := s.GetAlerts(ctx, 0)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
}

func TestMemoryStore_AlertsNewestFirstAndDefaultLimit(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Now()

	for i := 0; i < DefaultAlertsLimit+5; i++ {
		rec := domain.Enrich(domain.RawTelemetry{
			DeviceID:     fmt.Sprintf("dev-%d", i),
			Temperature:  39.0,
			O2Saturation: 98,
			HealthScore:  90,
		}, base.Add(time.Duration(i)*time.Second))
		require.NoError(t, s.Save(ctx, &rec))
	}

	alerts, err := s.GetAlerts(ctx, 0)
	require.NoError(t, err)
	require.Len(t, alerts, DefaultAlertsLimit)
	require.Equal(t, fmt.Sprintf("dev-%d", DefaultAlertsLimit+4), alerts[0].DeviceID)
}

func TestMemoryStore_ConcurrentSavesDifferentDevices(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	done := make(chan struct{})

	for i := 0; i < 4; i++ {
		go func(i int) {
			defer func() { done <- struct{}{} }()
			device := fmt.Sprintf("dev-%d", i)
			for j := 0; j < 50; j++ {
				rec := testRecord(device, j, time.Now())
				_ = s.Save(ctx, rec)
			}
		}(i)
	}
	for i := 0; i < 4; i++ {
		<-done
	}

	for i := 0; i < 4; i++ {
		history, err := s.GetHistory(ctx, fmt.Sprintf("dev-%d", i), 100)
		require.NoError(t, err)
		require.Len(t, history, 50)
	}
}
