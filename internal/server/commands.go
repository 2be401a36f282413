package server

import (
	"encoding/json"
	"errors"
	"log"
)

func (s *Server) handleCreateRoom(c *client, raw json.RawMessage) error {
	if c.room != nil {
		return ErrAlreadyInRoom
	}
	var payload createRoomPayload
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			return errors.New("invalid payload")
		}
	}
	mode := payload.Mode
	if mode == "" {
		mode = ModeReaction
	}
	if !validMode(mode) {
		return ErrUnknownMode
	}
	settings := payload.Settings.apply(defaultSettings())

	host := &Participant{ID: c.id, Name: c.name, Avatar: c.avatar}
	room, err := s.directory.Create(mode, settings, host, c)
	if err != nil {
		return err
	}
	c.room = room
	log.Printf("room created room_id=%s code=%s mode=%s host=%s", room.ID, room.Code, mode, c.name)
	go s.persistRoomEvent(room.Code, "room_created", EventPayload{
		RoomID:     room.ID,
		Mode:       mode,
		PlayerName: c.name,
	})
	return nil
}

func (s *Server) handleJoinRoom(c *client, raw json.RawMessage) error {
	if c.room != nil {
		return ErrAlreadyInRoom
	}
	var payload joinRoomPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return errors.New("invalid payload")
	}
	code := normalizeRoomCode(payload.RoomCode)
	if !isValidRoomCode(code) {
		return ErrRoomNotFound
	}
	room, ok := s.directory.FindByCode(code)
	if !ok {
		return ErrRoomNotFound
	}

	p := &Participant{ID: c.id, Name: c.name, Avatar: c.avatar}
	if err := room.Join(p, c); err != nil {
		return err
	}
	c.room = room
	log.Printf("player joined room_id=%s code=%s player=%s", room.ID, room.Code, c.name)
	go s.persistRoomEvent(room.Code, "player_joined", EventPayload{
		RoomID:     room.ID,
		PlayerID:   c.id,
		PlayerName: c.name,
	})
	return nil
}

func (s *Server) handleLeaveRoom(c *client) error {
	if c.room == nil {
		return ErrNotInRoom
	}
	s.leaveRoom(c)
	return nil
}

// leaveRoom runs the leave cascade shared by the explicit command and
// the disconnect path.
func (s *Server) leaveRoom(c *client) {
	room := c.room
	if room == nil {
		return
	}
	c.room = nil
	empty := room.Leave(c.id, c)
	log.Printf("player left room_id=%s player=%s empty=%t", room.ID, c.name, empty)
	go s.persistRoomEvent(room.Code, "player_left", EventPayload{
		RoomID:     room.ID,
		PlayerID:   c.id,
		PlayerName: c.name,
	})
	if empty {
		s.removeRoom(room)
	}
}

func (s *Server) removeRoom(room *Room) {
	s.cancelCountdown(room.ID)
	s.directory.Remove(room)
	log.Printf("room removed room_id=%s code=%s", room.ID, room.Code)
}

func (s *Server) handleSelectMode(c *client, raw json.RawMessage) error {
	if c.room == nil {
		return ErrNotInRoom
	}
	var payload selectModePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return errors.New("invalid payload")
	}
	return c.room.SelectMode(c.id, payload.Mode)
}

func (s *Server) handleToggleReady(c *client) error {
	if c.room == nil {
		return ErrNotInRoom
	}
	return c.room.ToggleReady(c.id)
}

func (s *Server) handleStartGame(c *client) error {
	if c.room == nil {
		return ErrNotInRoom
	}
	room := c.room
	if err := room.Start(c.id, s.cfg.CountdownTicks); err != nil {
		return err
	}
	s.startCountdown(room)
	log.Printf("session started room_id=%s mode=%s", room.ID, room.Mode())
	go s.persistRoomEvent(room.Code, "session_started", EventPayload{
		RoomID: room.ID,
		Mode:   room.Mode(),
	})
	return nil
}

func (s *Server) handleUpdateScore(c *client, raw json.RawMessage) error {
	if c.room == nil {
		return ErrNotInRoom
	}
	var payload scorePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return errors.New("invalid payload")
	}
	return c.room.UpdateScore(c.id, payload.Score)
}

func (s *Server) handlePlayerFinished(c *client, raw json.RawMessage) error {
	if c.room == nil {
		return ErrNotInRoom
	}
	var payload scorePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return errors.New("invalid payload")
	}
	room := c.room
	rankings, err := room.Finish(c.id, payload.Score)
	if err != nil {
		return err
	}

	// The scoring collaborator runs off the command path; its failures
	// must never hold up the game_over broadcast.
	go s.scores.RecordBattle(c.name, c.avatar, room.Mode(), payload.Score)

	if rankings != nil {
		log.Printf("session finished room_id=%s players=%d", room.ID, len(rankings))
		go s.persistRoomEvent(room.Code, "session_finished", EventPayload{
			RoomID:  room.ID,
			Mode:    room.Mode(),
			Players: len(rankings),
		})
	}
	return nil
}

func (s *Server) handleSendChat(c *client, raw json.RawMessage) error {
	if c.room == nil {
		return ErrNotInRoom
	}
	var payload chatPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return errors.New("invalid payload")
	}
	text, err := validateChatText(payload.Text)
	if err != nil {
		return err
	}
	_, err = c.room.PostChat(c.id, text)
	return err
}

func (s *Server) handleSubmitScore(c *client, raw json.RawMessage) error {
	var payload submitScorePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return errors.New("invalid payload")
	}
	mode := payload.Mode
	if mode == "" {
		mode = ModeReaction
	}
	if !validMode(mode) {
		return ErrUnknownMode
	}
	go func() {
		s.scores.RecordBattle(c.name, c.avatar, mode, payload.Score)
		s.pushLeaderboard()
	}()
	return nil
}
