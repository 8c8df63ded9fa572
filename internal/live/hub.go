package live

import (
	"context"

	"go.uber.org/zap"
)

// Hub fans store change notifications out to websocket clients. Delivery is
// best-effort: Broadcast never blocks, a slow client gets disconnected
// rather than stalling everyone else, and zero clients is a no-op.
type Hub struct {
	log *zap.Logger

	register   chan *client
	unregister chan *client
	broadcast  chan []byte
	clients    map[*client]struct{}
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		log:        log,
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, 64),
		clients:    make(map[*client]struct{}),
	}
}

// Broadcast queues a payload for all connected clients, dropping it if the
// hub itself is backed up. Persisted state is the source of truth; this
// channel is only a mirror.
func (h *Hub) Broadcast(payload []byte) {
	select {
	case h.broadcast <- payload:
	default:
		h.log.Warn("live broadcast buffer full, dropping update")
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.log.Info("live client connected", zap.Int("clients", len(h.clients)))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.log.Info("live client disconnected", zap.Int("clients", len(h.clients)))
			}

		case payload := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- payload:
				default:
					// client can't keep up; cut it loose
					delete(h.clients, c)
					close(c.send)
				}
			}

		case <-ctx.Done():
			// process is shutting down; connections die with it
			return
		}
	}
}
