package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/yegors/skyalert/internal/geo"
	"github.com/yegors/skyalert/internal/monitor"
	"github.com/yegors/skyalert/internal/websocket"
	"github.com/yegors/skyalert/pkg/logger"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	log := logger.NewNop()
	svc := monitor.NewService(monitor.Config{
		Postcode:            "SW1A 1AA",
		Center:              geo.Coordinate{Lon: -0.14, Lat: 51.5},
		RadiusKm:            15,
		Interval:            2 * time.Minute,
		TrackingURLTemplate: "https://globe.adsbexchange.com/?icao=%s",
		NotificationTitle:   "Aircraft Alert",
	}, nil, nil, nil, nil, log)

	ws := websocket.NewServer(log)
	go ws.Run()

	return NewRouter(svc, log, ws).Routes()
}

func TestGetStatus(t *testing.T) {
	srv := httptest.NewServer(newTestRouter(t))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/status")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Status        monitor.Status `json:"status"`
		UptimeSeconds int64          `json:"uptime_seconds"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Status.Postcode != "SW1A 1AA" {
		t.Errorf("unexpected postcode: %q", body.Status.Postcode)
	}
	if body.Status.RadiusKm != 15 {
		t.Errorf("unexpected radius: %f", body.Status.RadiusKm)
	}
}

func TestGetSightingsAndAlertsEmpty(t *testing.T) {
	srv := httptest.NewServer(newTestRouter(t))
	defer srv.Close()

	for _, path := range []string{"/api/sightings", "/api/alerts"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("request to %s failed: %v", path, err)
		}
		var body struct {
			Count int `json:"count"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode %s response: %v", path, err)
		}
		resp.Body.Close()
		if body.Count != 0 {
			t.Errorf("%s: expected empty count, got %d", path, body.Count)
		}
	}
}

func TestUnknownRoute(t *testing.T) {
	srv := httptest.NewServer(newTestRouter(t))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/nope")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}
