package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/yegors/skyalert/internal/monitor"
	"github.com/yegors/skyalert/pkg/logger"
)

// Handler contains the API handlers
type Handler struct {
	monitorService *monitor.Service
	logger         *logger.Logger
	startedAt      time.Time
}

// NewHandler creates a new API handler
func NewHandler(monitorService *monitor.Service, log *logger.Logger) *Handler {
	return &Handler{
		monitorService: monitorService,
		logger:         log.Named("api-handler"),
		startedAt:      time.Now(),
	}
}

// GetStatus returns the monitor loop status
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	status := h.monitorService.Status()
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":         status,
		"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
	})
}

// GetSightings returns the aircraft of interest from the latest cycle
func (h *Handler) GetSightings(w http.ResponseWriter, r *http.Request) {
	sightings := h.monitorService.Sightings()
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"count":     len(sightings),
		"sightings": sightings,
	})
}

// GetAlerts returns the recent alert history
func (h *Handler) GetAlerts(w http.ResponseWriter, r *http.Request) {
	alerts := h.monitorService.Alerts()
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"count":  len(alerts),
		"alerts": alerts,
	})
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
