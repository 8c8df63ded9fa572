package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/gFigueiredoo/trab-iot/internal/config"
	"github.com/gFigueiredoo/trab-iot/internal/domain"
)

// RedisStore holds the per-device current slot and publishes change
// notifications for the live feed.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(ctx context.Context, cfg *config.Config) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// NewRedisStoreWithClient wraps an existing client. Used by tests.
func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) Client() *redis.Client {
	return r.client
}

func currentKey(deviceID string) string {
	return fmt.Sprintf("device:%s:current", deviceID)
}

// SetCurrent overwrites the device's current slot and publishes the record
// plus each of its alerts in one pipeline. Subscribers see the record only
// after the slot write is queued, never before.
func (r *RedisStore) SetCurrent(ctx context.Context, record *domain.EnrichedRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, currentKey(record.DeviceID), payload, 0)
	pipe.Publish(ctx, UpdatesChannel, payload)
	for i := range record.Alerts {
		alertPayload, err := json.Marshal(&record.Alerts[i])
		if err != nil {
			return fmt.Errorf("failed to marshal alert: %w", err)
		}
		pipe.Publish(ctx, AlertsChannel, alertPayload)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis pipeline failed: %w", err)
	}
	return nil
}

func (r *RedisStore) GetCurrent(ctx context.Context, deviceID string) (*domain.EnrichedRecord, error) {
	raw, err := r.client.Get(ctx, currentKey(deviceID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get current failed: %w", err)
	}

	var record domain.EnrichedRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal current record: %w", err)
	}
	return &record, nil
}
