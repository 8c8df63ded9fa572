package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/gFigueiredoo/trab-iot/internal/domain"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, NewRedisStoreWithClient(client)
}

func TestRedisStore_SetAndGetCurrent(t *testing.T) {
	ctx := context.Background()
	_, s := setupRedis(t)

	record := domain.Enrich(domain.RawTelemetry{
		DeviceID:     "dev-1",
		Temperature:  38.2,
		O2Saturation: 98,
		HealthScore:  90,
	}, time.Now().UTC())

	require.NoError(t, s.SetCurrent(ctx, &record))

	got, err := s.GetCurrent(ctx, "dev-1")
	require.NoError(t, err)
	require.Equal(t, "dev-1", got.DeviceID)
	require.Equal(t, domain.StatusGood, got.OverallStatus)
	require.Len(t, got.Alerts, 1)
	require.Equal(t, domain.AlertFever, got.Alerts[0].Type)
}

func TestRedisStore_GetCurrentMissing(t *testing.T) {
	_, s := setupRedis(t)

	_, err := s.GetCurrent(context.Background(), "nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_SetCurrentOverwrites(t *testing.T) {
	ctx := context.Background()
	mr, s := setupRedis(t)

	first := domain.Enrich(domain.RawTelemetry{
		DeviceID: "dev-1", Temperature: 36.5, O2Saturation: 98, HealthScore: 90,
	}, time.Now().UTC())
	second := domain.Enrich(domain.RawTelemetry{
		DeviceID: "dev-1", Temperature: 36.5, O2Saturation: 98, HealthScore: 70,
	}, time.Now().UTC())

	require.NoError(t, s.SetCurrent(ctx, &first))
	require.NoError(t, s.SetCurrent(ctx, &second))

	raw, err := mr.Get("device:dev-1:current")
	require.NoError(t, err)

	var stored domain.EnrichedRecord
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	require.Equal(t, domain.StatusWarning, stored.OverallStatus)
}

func TestRedisStore_PublishesUpdateAndAlerts(t *testing.T) {
	ctx := context.Background()
	_, s := setupRedis(t)

	sub := s.Client().Subscribe(ctx, UpdatesChannel, AlertsChannel)
	defer sub.Close()
	// wait for the subscription before writing
	_, err := sub.Receive(ctx)
	require.NoError(t, err)
	ch := sub.Channel()

	record := domain.Enrich(domain.RawTelemetry{
		DeviceID:     "dev-1",
		Temperature:  38.2,
		O2Saturation: 98,
		HealthScore:  90,
	}, time.Now().UTC())
	require.NoError(t, s.SetCurrent(ctx, &record))

	channels := make(map[string]int)
	for i := 0; i < 2; i++ {
		select {
		case msg := <-ch:
			channels[msg.Channel]++
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for pub-sub messages")
		}
	}
	require.Equal(t, 1, channels[UpdatesChannel])
	require.Equal(t, 1, channels[AlertsChannel])
}
