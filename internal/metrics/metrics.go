package metrics

import (
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Stats tracks ingestion health. One instance is owned by the pipeline and
// handed to the HTTP layer; nothing here is global.
type Stats struct {
	startedAt time.Time

	TotalMessages atomic.Int64
	ParseFailures atomic.Int64
	SaveFailures  atomic.Int64
	QueueDrops    atomic.Int64

	lastMessage atomic.Int64 // unix nanos, 0 = never
	connected   atomic.Bool
}

func NewStats() *Stats {
	return &Stats{startedAt: time.Now()}
}

// MarkMessage records one successfully parsed telemetry message. Malformed
// messages must not be counted here.
func (s *Stats) MarkMessage() {
	s.TotalMessages.Add(1)
	s.lastMessage.Store(time.Now().UnixNano())
}

func (s *Stats) SetConnected(up bool) { s.connected.Store(up) }

func (s *Stats) Connected() bool { return s.connected.Load() }

func (s *Stats) Uptime() time.Duration { return time.Since(s.startedAt) }

// LastMessage reports when the last valid message arrived; ok is false if
// none has.
func (s *Stats) LastMessage() (time.Time, bool) {
	n := s.lastMessage.Load()
	if n == 0 {
		return time.Time{}, false
	}
	return time.Unix(0, n), true
}

// Snapshot is the JSON shape embedded in the service banner.
type Snapshot struct {
	TotalMessages int64   `json:"totalMessages"`
	LastMessage   *string `json:"lastMessage"`
	UptimeMS      int64   `json:"uptime"`
	IsOnline      bool    `json:"isOnline"`
}

func (s *Stats) Snapshot() Snapshot {
	snap := Snapshot{
		TotalMessages: s.TotalMessages.Load(),
		UptimeMS:      s.Uptime().Milliseconds(),
		IsOnline:      s.Connected(),
	}
	if t, ok := s.LastMessage(); ok {
		iso := t.UTC().Format(time.RFC3339)
		snap.LastMessage = &iso
	}
	return snap
}

// ServeMetrics renders the counters in Prometheus text format.
func (s *Stats) ServeMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	fmt.Fprintf(w, "seniorcare_messages_received_total %d\n", s.TotalMessages.Load())
	fmt.Fprintf(w, "seniorcare_parse_failures_total %d\n", s.ParseFailures.Load())
	fmt.Fprintf(w, "seniorcare_save_failures_total %d\n", s.SaveFailures.Load())
	fmt.Fprintf(w, "seniorcare_queue_drops_total %d\n", s.QueueDrops.Load())
	fmt.Fprintf(w, "seniorcare_mqtt_connected %d\n", boolToInt(s.Connected()))
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
