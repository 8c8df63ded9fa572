package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gFigueiredoo/trab-iot/internal/config"
	"github.com/gFigueiredoo/trab-iot/internal/domain"
)

// PostgresStore holds the append-only collections: vitals_history and
// vitals_alerts. The current slot lives in redis.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, cfg *config.Config) (*PostgresStore, error) {
	connStr := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?pool_max_conns=%d",
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBHost,
		cfg.DBPort,
		cfg.DBName,
		cfg.DBMaxConns,
	)

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to create db pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// AppendHistory inserts one enriched record, assigning its id if storage
// hasn't yet.
func (s *PostgresStore) AppendHistory(ctx context.Context, record *domain.EnrichedRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}

	alertsJSON, err := json.Marshal(record.Alerts)
	if err != nil {
		return fmt.Errorf("failed to marshal alerts: %w", err)
	}

	query := `
		INSERT INTO vitals_history
			(id, device_id, recorded_at, processed_at, temperature, humidity,
			 o2_saturation, fall_detected, checkin_status, health_score,
			 led_status, overall_status, alerts)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err = s.pool.Exec(ctx, query,
		record.ID,
		record.DeviceID,
		record.Timestamp,
		record.ProcessedAt,
		record.Temperature,
		record.Humidity,
		record.O2Saturation,
		record.FallDetected,
		record.CheckinStatus,
		record.HealthScore,
		record.LEDStatus,
		string(record.OverallStatus),
		alertsJSON,
	)
	if err != nil {
		return fmt.Errorf("history insert failed for %s: %w", record.DeviceID, err)
	}
	return nil
}

// InsertAlerts appends one row per alert on the record, assigning ids.
// Alerts always start unacknowledged.
func (s *PostgresStore) InsertAlerts(ctx context.Context, record *domain.EnrichedRecord) error {
	query := `
		INSERT INTO vitals_alerts
			(id, device_id, alert_type, severity, message, triggered_value,
			 created_at, acknowledged)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, false)
	`
	for i := range record.Alerts {
		alert := &record.Alerts[i]
		if alert.ID == "" {
			alert.ID = uuid.NewString()
		}
		_, err := s.pool.Exec(ctx, query,
			alert.ID,
			alert.DeviceID,
			string(alert.Type),
			string(alert.Severity),
			alert.Message,
			alert.Value,
			alert.Timestamp,
		)
		if err != nil {
			return fmt.Errorf("alert insert failed for %s/%s: %w", alert.DeviceID, alert.Type, err)
		}
	}
	return nil
}

func (s *PostgresStore) GetHistory(ctx context.Context, deviceID string, limit int) ([]domain.EnrichedRecord, error) {
	limit = normalizeLimit(limit, DefaultHistoryLimit)

	query := `
		SELECT id, device_id, recorded_at, processed_at, temperature, humidity,
		       o2_saturation, fall_detected, checkin_status, health_score,
		       led_status, overall_status, alerts
		FROM vitals_history
		WHERE device_id = $1
		ORDER BY recorded_at DESC
		LIMIT $2
	`
	rows, err := s.pool.Query(ctx, query, deviceID, limit)
	if err != nil {
		return nil, fmt.Errorf("history query failed: %w", err)
	}
	defer rows.Close()

	records := make([]domain.EnrichedRecord, 0, limit)
	for rows.Next() {
		var rec domain.EnrichedRecord
		var status string
		var alertsJSON []byte
		err := rows.Scan(
			&rec.ID,
			&rec.DeviceID,
			&rec.Timestamp,
			&rec.ProcessedAt,
			&rec.Temperature,
			&rec.Humidity,
			&rec.O2Saturation,
			&rec.FallDetected,
			&rec.CheckinStatus,
			&rec.HealthScore,
			&rec.LEDStatus,
			&status,
			&alertsJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("history scan failed: %w", err)
		}
		rec.OverallStatus = domain.OverallStatus(status)
		if err := json.Unmarshal(alertsJSON, &rec.Alerts); err != nil {
			return nil, fmt.Errorf("failed to unmarshal alerts for %s: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *PostgresStore) GetAlerts(ctx context.Context, limit int) ([]domain.Alert, error) {
	limit = normalizeLimit(limit, DefaultAlertsLimit)

	query := `
		SELECT id, device_id, alert_type, severity, message, triggered_value,
		       created_at, acknowledged
		FROM vitals_alerts
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("alerts query failed: %w", err)
	}
	defer rows.Close()

	alerts := make([]domain.Alert, 0, limit)
	for rows.Next() {
		var a domain.Alert
		var alertType, severity string
		err := rows.Scan(
			&a.ID,
			&a.DeviceID,
			&alertType,
			&severity,
			&a.Message,
			&a.Value,
			&a.Timestamp,
			&a.Acknowledged,
		)
		if err != nil {
			return nil, fmt.Errorf("alert scan failed: %w", err)
		}
		a.Type = domain.AlertType(alertType)
		a.Severity = domain.AlertSeverity(severity)
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}
