package server

import (
	"encoding/json"
	"log"
	"sync"
)

// ServerMessage is the envelope for every server→client push.
type ServerMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// wsHub fans room events out to every connection subscribed to a room.
// Delivery is at-most-once: a subscriber whose send buffer is full is
// dropped rather than replayed to later.
//
// Per-room ordering holds because every Broadcast for a room is made
// while that room's command lock is held, and each connection's send
// channel preserves enqueue order.
type wsHub struct {
	mu    sync.Mutex
	rooms map[string]map[*client]struct{}
}

func newWSHub() *wsHub {
	return &wsHub{
		rooms: make(map[string]map[*client]struct{}),
	}
}

func (h *wsHub) Subscribe(roomID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.rooms[roomID]
	if group == nil {
		group = make(map[*client]struct{})
		h.rooms[roomID] = group
	}
	group[c] = struct{}{}
}

func (h *wsHub) Unsubscribe(roomID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.rooms[roomID]
	if group == nil {
		return
	}
	delete(group, c)
	if len(group) == 0 {
		delete(h.rooms, roomID)
	}
}

func (h *wsHub) Broadcast(roomID string, msg ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("broadcast marshal failed room_id=%s type=%s error=%v", roomID, msg.Type, err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.rooms[roomID]
	for c := range group {
		if !c.enqueue(data) {
			// Slow consumer; drop the connection rather than block the room.
			delete(group, c)
			c.closeSend()
		}
	}
}

func (h *wsHub) Send(c *client, msg ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if !c.enqueue(data) {
		c.closeSend()
	}
}

func (h *wsHub) SendError(c *client, command string, reason string) {
	h.Send(c, ServerMessage{
		Type: msgError,
		Payload: map[string]string{
			"command": command,
			"reason":  reason,
		},
	})
}
