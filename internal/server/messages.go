package server

import "encoding/json"

// Client→server commands. The catalog is closed: every command has a
// typed payload and a branch in dispatch; anything else is rejected.
const (
	msgCreateRoom     = "create_room"
	msgJoinRoom       = "join_room"
	msgLeaveRoom      = "leave_room"
	msgSelectGameMode = "select_game_mode"
	msgToggleReady    = "toggle_ready"
	msgStartGame      = "start_game"
	msgUpdateScore    = "update_room_score"
	msgPlayerFinished = "player_finished"
	msgSendChat       = "send_chat"
	msgSubmitScore    = "submit_score"
)

// Server→client events.
const (
	msgRoomUpdate        = "room_update"
	msgGameModeUpdate    = "game_mode_update"
	msgGameStarting      = "game_starting"
	msgCountdown         = "countdown"
	msgGameStarted       = "game_started"
	msgGameOver          = "game_over"
	msgChatMessage       = "chat_message"
	msgLeaderboardUpdate = "leaderboard_update"
	msgError             = "error"
)

type ClientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type createRoomPayload struct {
	Mode     string             `json:"mode"`
	Settings *settingsOverrides `json:"settings"`
}

// settingsOverrides merges onto the defaults; absent fields keep them.
type settingsOverrides struct {
	RoundCount      *int  `json:"roundCount"`
	TimeLimit       *int  `json:"timeLimit"`
	AllowSpectators *bool `json:"allowSpectators"`
	TeamMode        *bool `json:"teamMode"`
}

func (o *settingsOverrides) apply(settings RoomSettings) RoomSettings {
	if o == nil {
		return settings
	}
	if o.RoundCount != nil && *o.RoundCount > 0 {
		settings.RoundCount = *o.RoundCount
	}
	if o.TimeLimit != nil && *o.TimeLimit > 0 {
		settings.TimeLimit = *o.TimeLimit
	}
	if o.AllowSpectators != nil {
		settings.AllowSpectators = *o.AllowSpectators
	}
	if o.TeamMode != nil {
		settings.TeamMode = *o.TeamMode
	}
	return settings
}

type joinRoomPayload struct {
	RoomCode string `json:"roomCode"`
}

type selectModePayload struct {
	Mode string `json:"mode"`
}

type scorePayload struct {
	Score int `json:"score"`
}

type chatPayload struct {
	Text string `json:"text"`
}

type submitScorePayload struct {
	Score int    `json:"score"`
	Mode  string `json:"mode"`
}

// dispatch routes one inbound frame to its command handler. Guard
// failures become an error reply to the sender only; room state and the
// other members are untouched.
func (s *Server) dispatch(c *client, raw []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		s.hub.SendError(c, "", "invalid message")
		return
	}

	var err error
	switch msg.Type {
	case msgCreateRoom:
		err = s.handleCreateRoom(c, msg.Payload)
	case msgJoinRoom:
		err = s.handleJoinRoom(c, msg.Payload)
	case msgLeaveRoom:
		err = s.handleLeaveRoom(c)
	case msgSelectGameMode:
		err = s.handleSelectMode(c, msg.Payload)
	case msgToggleReady:
		err = s.handleToggleReady(c)
	case msgStartGame:
		err = s.handleStartGame(c)
	case msgUpdateScore:
		err = s.handleUpdateScore(c, msg.Payload)
	case msgPlayerFinished:
		err = s.handlePlayerFinished(c, msg.Payload)
	case msgSendChat:
		err = s.handleSendChat(c, msg.Payload)
	case msgSubmitScore:
		err = s.handleSubmitScore(c, msg.Payload)
	default:
		s.hub.SendError(c, msg.Type, "unknown command")
		return
	}
	if err != nil {
		s.hub.SendError(c, msg.Type, err.Error())
	}
}
