package server

import "time"

const (
	statusWaiting    = "waiting"
	statusInProgress = "in_progress"
	statusFinished   = "finished"
)

const (
	ModeReaction = "REACTION"
	ModeF1Lights = "F1_LIGHTS"
	ModeDecision = "DECISION"
	ModeSequence = "SEQUENCE"
)

const defaultAvatar = "🏎️"

func validMode(mode string) bool {
	switch mode {
	case ModeReaction, ModeF1Lights, ModeDecision, ModeSequence:
		return true
	default:
		return false
	}
}

// lowerIsBetter reports whether the mode ranks ascending. Reaction-style
// modes record elapsed milliseconds; accumulation modes record points.
func lowerIsBetter(mode string) bool {
	return mode == ModeReaction || mode == ModeF1Lights
}

type RoomSettings struct {
	RoundCount      int  `json:"roundCount"`
	TimeLimit       int  `json:"timeLimit"`
	AllowSpectators bool `json:"allowSpectators"`
	TeamMode        bool `json:"teamMode"`
}

func defaultSettings() RoomSettings {
	return RoomSettings{
		RoundCount:      5,
		TimeLimit:       60,
		AllowSpectators: true,
		TeamMode:        false,
	}
}

// Participant is the connection-scoped player record inside a room.
// Fields are owned by the room and mutated only under its lock.
type Participant struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Avatar   string    `json:"avatar"`
	Ready    bool      `json:"ready"`
	IsHost   bool      `json:"isHost"`
	Score    int       `json:"score"`
	Finished bool      `json:"finished"`
	JoinedAt time.Time `json:"joinedAt"`
}

type ChatMessage struct {
	ID         string `json:"id"`
	SenderID   string `json:"senderId"`
	SenderName string `json:"senderName"`
	Text       string `json:"text"`
	Timestamp  int64  `json:"timestamp"`
}

type Ranking struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
	Rank     int    `json:"rank"`
	XPEarned int    `json:"xpEarned"`
}

// RoomSummary is the lobby-discovery view of a waiting room.
type RoomSummary struct {
	ID         string    `json:"roomId"`
	Code       string    `json:"code"`
	Mode       string    `json:"mode"`
	Status     string    `json:"status"`
	Players    int       `json:"players"`
	MaxPlayers int       `json:"maxPlayers"`
	CreatedAt  time.Time `json:"createdAt"`
}

// RoomSnapshot is the full-roster view broadcast after every mutation.
type RoomSnapshot struct {
	ID         string        `json:"roomId"`
	Code       string        `json:"code"`
	Mode       string        `json:"mode"`
	Status     string        `json:"status"`
	MaxPlayers int           `json:"maxPlayers"`
	Settings   RoomSettings  `json:"settings"`
	Players    []Participant `json:"players"`
}

type LeaderboardEntry struct {
	Name   string `json:"name"`
	Score  int    `json:"score"`
	Level  int    `json:"level"`
	Avatar string `json:"avatar"`
}

func timeNowUTC() time.Time {
	return time.Now().UTC()
}
