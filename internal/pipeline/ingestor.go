package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/gFigueiredoo/trab-iot/internal/domain"
	"github.com/gFigueiredoo/trab-iot/internal/metrics"
	"github.com/gFigueiredoo/trab-iot/internal/store"
)

const saveTimeout = 10 * time.Second

// Ingestor is the telemetry ingestion loop. HandleMessage runs on the MQTT
// client's callback goroutine and must never block on the store, so parsed
// records go through a buffered queue drained by a single Run worker — one
// worker keeps per-device arrival order.
type Ingestor struct {
	store store.Store
	stats *metrics.Stats
	log   *zap.Logger
	queue chan *domain.EnrichedRecord
}

func NewIngestor(st store.Store, stats *metrics.Stats, log *zap.Logger, queueSize int) *Ingestor {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Ingestor{
		store: st,
		stats: stats,
		log:   log,
		queue: make(chan *domain.EnrichedRecord, queueSize),
	}
}

// HandleMessage parses and enriches one inbound message. Malformed payloads
// are logged and dropped without touching the message counter or the store.
func (in *Ingestor) HandleMessage(topic string, payload []byte) {
	raw, err := domain.ParseRawTelemetry(payload)
	if err != nil {
		in.stats.ParseFailures.Add(1)
		in.log.Warn("dropping malformed telemetry",
			zap.String("topic", topic),
			zap.Error(err),
		)
		return
	}

	in.stats.MarkMessage()
	record := domain.Enrich(raw, time.Now())

	select {
	case in.queue <- &record:
	default:
		in.stats.QueueDrops.Add(1)
		in.log.Warn("save queue full, dropping record",
			zap.String("device_id", raw.DeviceID),
		)
	}
}

// Run drains the save queue until ctx is cancelled, then flushes whatever
// is still buffered.
func (in *Ingestor) Run(ctx context.Context) {
	for {
		select {
		case record, ok := <-in.queue:
			if !ok {
				return
			}
			in.save(record)

		case <-ctx.Done():
			for {
				select {
				case record := <-in.queue:
					in.save(record)
				default:
					return
				}
			}
		}
	}
}

func (in *Ingestor) save(record *domain.EnrichedRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	if err := in.store.Save(ctx, record); err != nil {
		in.stats.SaveFailures.Add(1)
		in.log.Error("store save failed",
			zap.String("device_id", record.DeviceID),
			zap.Error(err),
		)
		return
	}

	in.log.Debug("record saved",
		zap.String("device_id", record.DeviceID),
		zap.String("overall_status", string(record.OverallStatus)),
		zap.Int("alerts", len(record.Alerts)),
	)
}
