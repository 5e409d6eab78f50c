package adsb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/yegors/skyalert/pkg/logger"
)

var testBBox = BoundingBox{LatMin: 49.5, LatMax: 61.0, LonMin: -9.0, LonMax: 2.0}

func TestFetchStates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/states/all" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		q := r.URL.Query()
		for _, key := range []string{"lamin", "lomin", "lamax", "lomax"} {
			if q.Get(key) == "" {
				t.Errorf("missing bounding box param %s", key)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		// Second row has null callsign, type and position; third is a
		// short malformed row.
		w.Write([]byte(`{
			"time": 1700000000,
			"states": [
				["43ab12", "MILOPS  ", "19", 1700000000, 1700000000, 0.05, 51.55, 9144.0, false, 210.5],
				["abcdef", null, null, 1700000000, 1700000000, null, null, null, true, 0],
				["012345"]
			]
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", "", "", testBBox, 5*time.Second, logger.NewNop())
	states, err := client.FetchStates(context.Background())
	if err != nil {
		t.Fatalf("FetchStates returned error: %v", err)
	}
	if len(states) != 3 {
		t.Fatalf("expected 3 states, got %d", len(states))
	}

	first := states[0]
	if first.ICAO24 != "43ab12" || first.Callsign != "MILOPS  " || first.TypeCode != "19" {
		t.Errorf("unexpected first state: %+v", first)
	}
	if !first.HasPosition || first.Lon != 0.05 || first.Lat != 51.55 {
		t.Errorf("unexpected first position: %+v", first)
	}

	second := states[1]
	if second.Callsign != "" || second.TypeCode != "" {
		t.Errorf("null fields should decode empty: %+v", second)
	}
	if second.HasPosition {
		t.Errorf("null coordinates should not count as a position: %+v", second)
	}

	third := states[2]
	if third.ICAO24 != "012345" || third.HasPosition {
		t.Errorf("short row mishandled: %+v", third)
	}
}

func TestFetchStatesNullStates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"time": 1700000000, "states": null}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", "", "", testBBox, 5*time.Second, logger.NewNop())
	states, err := client.FetchStates(context.Background())
	if err != nil {
		t.Fatalf("FetchStates returned error: %v", err)
	}
	if len(states) != 0 {
		t.Errorf("expected empty states, got %d", len(states))
	}
}

func TestFetchStatesNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", "", "", testBBox, 5*time.Second, logger.NewNop())
	if _, err := client.FetchStates(context.Background()); err == nil {
		t.Error("expected error for non-200 response")
	}
}

func TestFetchStatesUsesToken(t *testing.T) {
	var tokenRequests int
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		tokenRequests++
		if got := r.FormValue("grant_type"); got != "client_credentials" {
			t.Errorf("grant_type = %q", got)
		}
		w.Write([]byte(`{"access_token":"tok123","expires_in":1800}`))
	})
	mux.HandleFunc("/states/all", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok123" {
			t.Errorf("Authorization = %q", got)
		}
		w.Write([]byte(`{"time":1700000000,"states":[]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewClient(srv.URL, srv.URL+"/token", "id", "secret", testBBox, 5*time.Second, logger.NewNop())
	for i := 0; i < 3; i++ {
		if _, err := client.FetchStates(context.Background()); err != nil {
			t.Fatalf("FetchStates returned error: %v", err)
		}
	}
	if tokenRequests != 1 {
		t.Errorf("token requested %d times, want 1 (cached)", tokenRequests)
	}
}

func TestFromState(t *testing.T) {
	a := FromState(StateVector{ICAO24: "43ab12", Callsign: " RRR123 ", TypeCode: "19", Lon: 0.05, Lat: 51.55, HasPosition: true})
	if a.Callsign != "RRR123" {
		t.Errorf("callsign not trimmed: %q", a.Callsign)
	}
	if a.ID != "43ab12" || a.TypeCode != "19" {
		t.Errorf("unexpected aircraft: %+v", a)
	}
	if a.Coord.Lon != 0.05 || a.Coord.Lat != 51.55 {
		t.Errorf("unexpected coordinate: %+v", a.Coord)
	}
}
