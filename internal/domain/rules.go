package domain

import "time"

// VitalRule describes one clinical threshold. Rules are evaluated in the
// order they appear in DefaultVitalRules and that order is the order of the
// resulting alerts, which consumers rely on for display priority.
type VitalRule struct {
	Type      AlertType
	Severity  AlertSeverity
	Message   string
	Triggered func(raw RawTelemetry) bool
	// Value extracts the reading that tripped the rule. Nil for rules
	// that carry no numeric reading.
	Value func(raw RawTelemetry) float64
}

// DefaultVitalRules are the clinical thresholds for a senior-care wearable.
// Every rule is checked independently; FEVER and HYPOTHERMIA happen to be
// mutually exclusive with the current thresholds, but nothing here assumes
// that.
var DefaultVitalRules = []VitalRule{
	{
		Type:     AlertFever,
		Severity: SeverityHigh,
		Message:  "Temperatura elevada detectada",
		Triggered: func(r RawTelemetry) bool {
			return r.Temperature > 37.5
		},
		Value: func(r RawTelemetry) float64 { return r.Temperature },
	},
	{
		Type:     AlertHypothermia,
		Severity: SeverityMedium,
		Message:  "Temperatura baixa detectada",
		Triggered: func(r RawTelemetry) bool {
			return r.Temperature < 36.0
		},
		Value: func(r RawTelemetry) float64 { return r.Temperature },
	},
	{
		Type:     AlertLowOxygen,
		Severity: SeverityHigh,
		Message:  "Saturação de oxigênio baixa",
		Triggered: func(r RawTelemetry) bool {
			return r.O2Saturation < 95
		},
		Value: func(r RawTelemetry) float64 { return float64(r.O2Saturation) },
	},
	{
		Type:     AlertFall,
		Severity: SeverityCritical,
		Message:  "Queda detectada!",
		Triggered: func(r RawTelemetry) bool {
			return r.FallDetected
		},
	},
}

// Evaluate maps one raw snapshot to its triggered alerts and the overall
// status. Pure: no clock, no I/O. Alert timestamps and ids are stamped
// later by Enrich and the store respectively.
func Evaluate(raw RawTelemetry) ([]Alert, OverallStatus) {
	var alerts []Alert
	for _, rule := range DefaultVitalRules {
		if !rule.Triggered(raw) {
			continue
		}
		alert := Alert{
			Type:     rule.Type,
			Message:  rule.Message,
			Severity: rule.Severity,
			DeviceID: raw.DeviceID,
		}
		if rule.Value != nil {
			v := rule.Value(raw)
			alert.Value = &v
		}
		alerts = append(alerts, alert)
	}
	return alerts, StatusForScore(raw.HealthScore)
}

// StatusForScore classifies the health score. Boundary values belong to
// the higher band: 60 is WARNING, 80 is GOOD.
func StatusForScore(score int) OverallStatus {
	switch {
	case score < 60:
		return StatusCritical
	case score < 80:
		return StatusWarning
	default:
		return StatusGood
	}
}

// processedAtLayout matches the millisecond ISO form the dashboard expects.
const processedAtLayout = "2006-01-02T15:04:05.000Z07:00"

// Enrich turns a raw snapshot into the persisted record shape.
// Deterministic given now; persistence is the caller's job.
func Enrich(raw RawTelemetry, now time.Time) EnrichedRecord {
	alerts, status := Evaluate(raw)
	for i := range alerts {
		alerts[i].Timestamp = now
	}
	if alerts == nil {
		alerts = []Alert{} // serialize as [], never null
	}
	return EnrichedRecord{
		RawTelemetry:  raw,
		Timestamp:     now,
		Alerts:        alerts,
		OverallStatus: status,
		ProcessedAt:   now.UTC().Format(processedAtLayout),
	}
}
