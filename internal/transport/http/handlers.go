package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/gFigueiredoo/trab-iot/internal/live"
	"github.com/gFigueiredoo/trab-iot/internal/metrics"
	"github.com/gFigueiredoo/trab-iot/internal/store"
)

const (
	maxHistoryLimit = 500
	maxAlertsLimit  = 100

	storePingTimeout = 2 * time.Second
)

// Handler serves the pull-based query API. Live updates go over /ws.
type Handler struct {
	store store.Store
	stats *metrics.Stats
	hub   *live.Hub
	log   *zap.Logger

	defaultDevice string
	mqttTopic     string
}

func NewHandler(st store.Store, stats *metrics.Stats, hub *live.Hub, log *zap.Logger, defaultDevice, mqttTopic string) *Handler {
	return &Handler{
		store:         st,
		stats:         stats,
		hub:           hub,
		log:           log,
		defaultDevice: defaultDevice,
		mqttTopic:     mqttTopic,
	}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(NewLoggingMiddleware(h.log).Wrap)

	r.Get("/", h.handleRoot)
	r.Get("/current", h.handleCurrent)
	r.Get("/history", h.handleHistory)
	r.Get("/alerts", h.handleAlerts)
	r.Get("/health", h.handleHealth)
	r.Get("/metrics", h.stats.ServeMetrics)
	r.Get("/ws", h.hub.ServeWS)

	return r
}

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service": "SeniorCare Backend",
		"version": "1.0.0",
		"status":  "running",
		"mqtt": map[string]any{
			"connected": h.stats.Connected(),
			"topic":     h.mqttTopic,
		},
		"stats": h.stats.Snapshot(),
	})
}

func (h *Handler) handleCurrent(w http.ResponseWriter, r *http.Request) {
	deviceID := r.URL.Query().Get("device")
	if deviceID == "" {
		deviceID = h.defaultDevice
	}

	record, err := h.store.GetCurrent(r.Context(), deviceID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no data for device")
		return
	}
	if err != nil {
		h.log.Error("current query failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load current record")
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	deviceID := r.URL.Query().Get("device")
	if deviceID == "" {
		deviceID = h.defaultDevice
	}
	limit := parseLimit(r, store.DefaultHistoryLimit, maxHistoryLimit)

	records, err := h.store.GetHistory(r.Context(), deviceID, limit)
	if err != nil {
		h.log.Error("history query failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *Handler) handleAlerts(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, store.DefaultAlertsLimit, maxAlertsLimit)

	alerts, err := h.store.GetAlerts(r.Context(), limit)
	if err != nil {
		h.log.Error("alerts query failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load alerts")
		return
	}
	writeJSON(w, http.StatusOK, alerts)
}

// handleHealth always answers 200 so the dashboard can render a degraded
// state instead of erroring; connectivity problems show up in the fields.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	pingCtx, cancel := context.WithTimeout(r.Context(), storePingTimeout)
	defer cancel()
	storeUp := h.store.Ping(pingCtx) == nil

	status := "healthy"
	if !h.stats.Connected() || !storeUp {
		status = "degraded"
	}

	var lastMessage *string
	if t, ok := h.stats.LastMessage(); ok {
		iso := t.UTC().Format(time.RFC3339)
		lastMessage = &iso
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":        status,
		"uptime":        h.stats.Uptime().Milliseconds(),
		"mqtt":          h.stats.Connected(),
		"store":         storeUp,
		"totalMessages": h.stats.TotalMessages.Load(),
		"lastMessage":   lastMessage,
	})
}

func parseLimit(r *http.Request, fallback, max int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	if n > max {
		return max
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
