package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorilla "github.com/gorilla/websocket"

	"github.com/yegors/skyalert/pkg/logger"
)

func TestBroadcastReachesClient(t *testing.T) {
	server := NewServer(logger.NewNop())
	go server.Run()

	ts := httptest.NewServer(http.HandlerFunc(server.HandleConnection))
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := gorilla.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	// Registration races the broadcast; retry until the client is in.
	var payload struct {
		Type string `json:"type"`
		Data struct {
			ICAO24 string `json:"icao24"`
		} `json:"data"`
	}
	deadline := time.Now().Add(2 * time.Second)
	for {
		server.Broadcast(MessageTypeAlert, map[string]string{"icao24": "43abcd"})
		conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
		if err := conn.ReadJSON(&payload); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for broadcast")
		}
	}

	if payload.Type != MessageTypeAlert {
		t.Errorf("expected message type %q, got %q", MessageTypeAlert, payload.Type)
	}
	if payload.Data.ICAO24 != "43abcd" {
		t.Errorf("unexpected payload: %+v", payload.Data)
	}
}

func TestBroadcastWithNoClients(t *testing.T) {
	server := NewServer(logger.NewNop())
	go server.Run()

	// Must not block or panic with nobody connected.
	for i := 0; i < 3; i++ {
		server.Broadcast(MessageTypeCycle, map[string]int{"states": i})
	}
}
