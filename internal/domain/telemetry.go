package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// RawTelemetry is one snapshot of sensor readings as published by the
// wearable. Immutable once parsed.
type RawTelemetry struct {
	DeviceID      string  `json:"deviceId"`
	Temperature   float64 `json:"temperature"`
	Humidity      float64 `json:"humidity"`
	O2Saturation  int     `json:"o2Saturation"`
	FallDetected  bool    `json:"fallDetected"`
	CheckinStatus bool    `json:"checkinStatus"`
	HealthScore   int     `json:"healthScore"`
	LEDStatus     bool    `json:"ledStatus"`
}

type AlertType string

const (
	AlertFever       AlertType = "FEVER"
	AlertHypothermia AlertType = "HYPOTHERMIA"
	AlertLowOxygen   AlertType = "LOW_OXYGEN"
	AlertFall        AlertType = "FALL"
)

type AlertSeverity string

const (
	SeverityMedium   AlertSeverity = "MEDIUM"
	SeverityHigh     AlertSeverity = "HIGH"
	SeverityCritical AlertSeverity = "CRITICAL"
)

// Alert is one threshold breach derived from a single telemetry snapshot.
// Value is nil for alert types that carry no numeric reading (FALL).
// ID is assigned by storage, not by the evaluator.
type Alert struct {
	ID           string        `json:"id,omitempty"`
	Type         AlertType     `json:"type"`
	Message      string        `json:"message"`
	Severity     AlertSeverity `json:"severity"`
	Value        *float64      `json:"value,omitempty"`
	DeviceID     string        `json:"deviceId"`
	Timestamp    time.Time     `json:"timestamp"`
	Acknowledged bool          `json:"acknowledged"`
}

type OverallStatus string

const (
	StatusGood     OverallStatus = "GOOD"
	StatusWarning  OverallStatus = "WARNING"
	StatusCritical OverallStatus = "CRITICAL"
)

// EnrichedRecord is the canonical persisted shape: the raw snapshot plus
// derived alerts, overall status and provenance timestamps.
type EnrichedRecord struct {
	RawTelemetry

	ID            string        `json:"id,omitempty"`
	Timestamp     time.Time     `json:"timestamp"`
	Alerts        []Alert       `json:"alerts"`
	OverallStatus OverallStatus `json:"overallStatus"`
	ProcessedAt   string        `json:"processedAt"`
}

// ParseError marks a payload that cannot become a RawTelemetry. The
// ingestion loop drops such messages; they never reach the store.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed telemetry: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed telemetry: %s", e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseRawTelemetry decodes an inbound payload. deviceId and the numeric
// vitals are required; the boolean flags and humidity default to zero
// values when absent. Unknown fields are ignored.
func ParseRawTelemetry(payload []byte) (RawTelemetry, error) {
	var aux struct {
		DeviceID      *string  `json:"deviceId"`
		Temperature   *float64 `json:"temperature"`
		Humidity      float64  `json:"humidity"`
		O2Saturation  *int     `json:"o2Saturation"`
		FallDetected  bool     `json:"fallDetected"`
		CheckinStatus bool     `json:"checkinStatus"`
		HealthScore   *int     `json:"healthScore"`
		LEDStatus     bool     `json:"ledStatus"`
	}

	if err := json.Unmarshal(payload, &aux); err != nil {
		return RawTelemetry{}, &ParseError{Reason: "invalid JSON", Err: err}
	}

	switch {
	case aux.DeviceID == nil || *aux.DeviceID == "":
		return RawTelemetry{}, &ParseError{Reason: "missing deviceId"}
	case aux.Temperature == nil:
		return RawTelemetry{}, &ParseError{Reason: "missing temperature"}
	case aux.O2Saturation == nil:
		return RawTelemetry{}, &ParseError{Reason: "missing o2Saturation"}
	case aux.HealthScore == nil:
		return RawTelemetry{}, &ParseError{Reason: "missing healthScore"}
	}

	return RawTelemetry{
		DeviceID:      *aux.DeviceID,
		Temperature:   *aux.Temperature,
		Humidity:      aux.Humidity,
		O2Saturation:  *aux.O2Saturation,
		FallDetected:  aux.FallDetected,
		CheckinStatus: aux.CheckinStatus,
		HealthScore:   *aux.HealthScore,
		LEDStatus:     aux.LEDStatus,
	}, nil
}
