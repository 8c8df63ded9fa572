package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/gFigueiredoo/trab-iot/internal/domain"
)

// CompositeStore fans one Save out to postgres (history, alerts) and redis
// (current slot + live notifications).
type CompositeStore struct {
	db    *PostgresStore
	redis *RedisStore
}

func NewCompositeStore(db *PostgresStore, redis *RedisStore) *CompositeStore {
	return &CompositeStore{db: db, redis: redis}
}

// Save attempts all three writes even if an earlier one fails; failures are
// joined and surfaced to the caller. Order matters: the appends complete
// before the current slot publishes, so a live subscriber never sees a
// record whose alerts aren't persisted yet.
func (s *CompositeStore) Save(ctx context.Context, record *domain.EnrichedRecord) error {
	var errs []error
	if err := s.db.AppendHistory(ctx, record); err != nil {
		errs = append(errs, fmt.Errorf("history: %w", err))
	}
	if err := s.db.InsertAlerts(ctx, record); err != nil {
		errs = append(errs, fmt.Errorf("alerts: %w", err))
	}
	if err := s.redis.SetCurrent(ctx, record); err != nil {
		errs = append(errs, fmt.Errorf("current: %w", err))
	}
	return errors.Join(errs...)
}

// GetCurrent prefers the redis slot and falls back to the latest history
// row, so a redis flush doesn't blank the dashboard.
func (s *CompositeStore) GetCurrent(ctx context.Context, deviceID string) (*domain.EnrichedRecord, error) {
	record, err := s.redis.GetCurrent(ctx, deviceID)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	history, err := s.db.GetHistory(ctx, deviceID, 1)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, ErrNotFound
	}
	return &history[0], nil
}

func (s *CompositeStore) GetHistory(ctx context.Context, deviceID string, limit int) ([]domain.EnrichedRecord, error) {
	return s.db.GetHistory(ctx, deviceID, limit)
}

func (s *CompositeStore) GetAlerts(ctx context.Context, limit int) ([]domain.Alert, error) {
	return s.db.GetAlerts(ctx, limit)
}

func (s *CompositeStore) Ping(ctx context.Context) error {
	return errors.Join(s.db.Ping(ctx), s.redis.Ping(ctx))
}
