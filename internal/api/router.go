// Package api exposes the monitor state over HTTP: loop status, the
// latest sightings, recent alerts, and a WebSocket event stream.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/yegors/skyalert/internal/monitor"
	"github.com/yegors/skyalert/internal/websocket"
	"github.com/yegors/skyalert/pkg/logger"
)

// Router wires the API handlers into a chi mux
type Router struct {
	handler  *Handler
	wsServer *websocket.Server
	logger   *logger.Logger
}

// NewRouter creates a new API router
func NewRouter(monitorService *monitor.Service, log *logger.Logger, wsServer *websocket.Server) *Router {
	return &Router{
		handler:  NewHandler(monitorService, log),
		wsServer: wsServer,
		logger:   log.Named("api-router"),
	}
}

// Routes returns the HTTP handler for the API
func (rt *Router) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", rt.handler.GetStatus)
		r.Get("/sightings", rt.handler.GetSightings)
		r.Get("/alerts", rt.handler.GetAlerts)
	})

	r.Get("/ws", rt.wsServer.HandleConnection)

	return r
}
