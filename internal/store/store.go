package store

import (
	"context"
	"errors"

	"github.com/gFigueiredoo/trab-iot/internal/domain"
)

const (
	DefaultHistoryLimit = 50
	DefaultAlertsLimit  = 20
)

// Pub-sub channels carrying store change notifications for the live feed.
const (
	UpdatesChannel = "seniorcare:updates"
	AlertsChannel  = "seniorcare:alerts"
)

// ErrNotFound is returned when a device has no current record yet.
var ErrNotFound = errors.New("record not found")

// Store persists enriched records. Save overwrites the per-device current
// slot, appends to history and appends each alert — append-only, no dedup:
// saving the same record twice appends twice. Reads are most-recent-first.
type Store interface {
	Save(ctx context.Context, record *domain.EnrichedRecord) error
	GetCurrent(ctx context.Context, deviceID string) (*domain.EnrichedRecord, error)
	GetHistory(ctx context.Context, deviceID string, limit int) ([]domain.EnrichedRecord, error)
	GetAlerts(ctx context.Context, limit int) ([]domain.Alert, error)
	Ping(ctx context.Context) error
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	return limit
}
