package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/gFigueiredoo/trab-iot/internal/domain"
)

// MemoryStore keeps everything in process memory with the same append-only
// semantics as the composite store. Backs the test suites of everything
// that consumes the Store interface.
type MemoryStore struct {
	mu      sync.RWMutex
	current map[string]domain.EnrichedRecord
	history map[string][]domain.EnrichedRecord
	alerts  []domain.Alert
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		current: make(map[string]domain.EnrichedRecord),
		history: make(map[string][]domain.EnrichedRecord),
	}
}

func (s *MemoryStore) Save(ctx context.Context, record *domain.EnrichedRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	for i := range record.Alerts {
		if record.Alerts[i].ID == "" {
			record.Alerts[i].ID = uuid.NewString()
		}
	}

	stored := *record
	stored.Alerts = append([]domain.Alert(nil), record.Alerts...)

	s.current[record.DeviceID] = stored
	s.history[record.DeviceID] = append(s.history[record.DeviceID], stored)
	s.alerts = append(s.alerts, stored.Alerts...)
	return nil
}

func (s *MemoryStore) GetCurrent(ctx context.Context, deviceID string) (*domain.EnrichedRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.current[deviceID]
	if !ok {
		return nil, ErrNotFound
	}
	return &record, nil
}

func (s *MemoryStore) GetHistory(ctx context.Context, deviceID string, limit int) ([]domain.EnrichedRecord, error) {
	limit = normalizeLimit(limit, DefaultHistoryLimit)

	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.history[deviceID]
	if len(all) < limit {
		limit = len(all)
	}

	// newest first
	records := make([]domain.EnrichedRecord, 0, limit)
	for i := len(all) - 1; i >= len(all)-limit; i-- {
		records = append(records, all[i])
	}
	return records, nil
}

func (s *MemoryStore) GetAlerts(ctx context.Context, limit int) ([]domain.Alert, error) {
	limit = normalizeLimit(limit, DefaultAlertsLimit)

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.alerts) < limit {
		limit = len(s.alerts)
	}

	alerts := make([]domain.Alert, 0, limit)
	for i := len(s.alerts) - 1; i >= len(s.alerts)-limit; i-- {
		alerts = append(alerts, s.alerts[i])
	}
	return alerts, nil
}

func (s *MemoryStore) Ping(ctx context.Context) error { return nil }
