package server

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"neuro-arena/internal/config"

	"github.com/gorilla/websocket"
)

func newTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping test; listen unavailable: %v", err)
	}
	ts := &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: handler},
	}
	ts.Start()
	return ts
}

func newTestConfig() config.Config {
	return config.Default()
}

// newTestClient builds a connection stand-in with a buffered outbox and
// no socket, enough for room and hub level tests.
func newTestClient(id string) *client {
	return &client{
		id:   id,
		name: "player-" + id,
		send: make(chan []byte, sendBufferSize),
	}
}

// drainEvents empties a test client's outbox and returns the event types
// in delivery order.
func drainEvents(t *testing.T, c *client) []string {
	t.Helper()
	types := make([]string, 0, len(c.send))
	for {
		select {
		case data := <-c.send:
			var msg ServerMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				t.Fatalf("unmarshal event: %v", err)
			}
			types = append(types, msg.Type)
		default:
			return types
		}
	}
}

// waitingRoom builds a directory-backed room with the given players. The
// first name is the host; everyone else is marked ready.
func waitingRoom(t *testing.T, names ...string) (*Directory, *Room, []*client) {
	t.Helper()
	if len(names) == 0 {
		t.Fatal("waitingRoom needs at least a host")
	}
	directory := newDirectory(newWSHub(), 0, 50)
	clients := make([]*client, 0, len(names))

	host := newTestClient("c0")
	host.name = names[0]
	room, err := directory.Create(ModeReaction, defaultSettings(), &Participant{ID: host.id, Name: host.name}, host)
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	clients = append(clients, host)

	for i, name := range names[1:] {
		c := newTestClient("c" + string(rune('1'+i)))
		c.name = name
		if err := room.Join(&Participant{ID: c.id, Name: name}, c); err != nil {
			t.Fatalf("join %s: %v", name, err)
		}
		if err := room.ToggleReady(c.id); err != nil {
			t.Fatalf("ready %s: %v", name, err)
		}
		clients = append(clients, c)
	}
	return directory, room, clients
}

type wsEvent struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// waitForEvent reads frames until one of the wanted type arrives.
// Unrelated pushes, such as leaderboard updates, are skipped.
func waitForEvent(t *testing.T, conn *websocket.Conn, wantType string, timeout time.Duration) wsEvent {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for {
		_ = conn.SetReadDeadline(deadline)
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %s: %v", wantType, err)
		}
		var evt wsEvent
		if err := json.Unmarshal(data, &evt); err != nil {
			t.Fatalf("unmarshal frame: %v", err)
		}
		if evt.Type == wantType {
			return evt
		}
		if evt.Type == msgError {
			t.Fatalf("waiting for %s, got error event: %s", wantType, evt.Payload)
		}
	}
}

func sendCommand(t *testing.T, conn *websocket.Conn, msgType string, payload any) {
	t.Helper()
	msg := map[string]any{"type": msgType}
	if payload != nil {
		msg["payload"] = payload
	}
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("send %s: %v", msgType, err)
	}
}
