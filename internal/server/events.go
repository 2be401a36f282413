package server

import (
	"encoding/json"
	"log"

	"gorm.io/datatypes"

	"neuro-arena/internal/db"
)

type EventPayload struct {
	RoomID     string `json:"room_id,omitempty"`
	Mode       string `json:"mode,omitempty"`
	PlayerID   string `json:"player_id,omitempty"`
	PlayerName string `json:"player,omitempty"`
	Reason     string `json:"reason,omitempty"`
	Players    int    `json:"players,omitempty"`
}

// persistRoomEvent appends an audit row for a room transition. Runs off
// the command path; a missing database makes it a no-op.
func (s *Server) persistRoomEvent(roomCode, eventType string, payload EventPayload) {
	if s.db == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	record := db.RoomEvent{
		RoomCode: roomCode,
		Type:     eventType,
		Payload:  datatypes.JSON(data),
	}
	if err := s.db.Create(&record).Error; err != nil {
		log.Printf("room event persist failed code=%s type=%s error=%v", roomCode, eventType, err)
	}
}
