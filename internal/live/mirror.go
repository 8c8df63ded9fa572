package live

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/gFigueiredoo/trab-iot/internal/store"
)

// Event is the envelope delivered to websocket clients. Type is "update"
// for a full enriched record and "alert" for a single alert.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Mirror tails the store's redis notification channels and feeds the hub.
// It is a read-only bridge: losing it never affects persisted state.
type Mirror struct {
	client *redis.Client
	hub    *Hub
	log    *zap.Logger
}

func NewMirror(client *redis.Client, hub *Hub, log *zap.Logger) *Mirror {
	return &Mirror{client: client, hub: hub, log: log}
}

func (m *Mirror) Run(ctx context.Context) {
	sub := m.client.Subscribe(ctx, store.UpdatesChannel, store.AlertsChannel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			m.forward(msg)

		case <-ctx.Done():
			return
		}
	}
}

func (m *Mirror) forward(msg *redis.Message) {
	eventType := "update"
	if msg.Channel == store.AlertsChannel {
		eventType = "alert"
	}

	payload, err := json.Marshal(Event{
		Type: eventType,
		Data: json.RawMessage(msg.Payload),
	})
	if err != nil {
		m.log.Error("failed to marshal live event", zap.Error(err))
		return
	}
	m.hub.Broadcast(payload)
}
