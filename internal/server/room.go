package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Room is the aggregate all participants synchronize against. Every
// command is applied under the room lock, and the resulting broadcasts
// are enqueued before the lock is released, so all subscribers observe
// the same sequence of transitions.
//
// Status only moves forward: waiting → in_progress → finished. A room
// whose participant set becomes empty is deleted, never recycled.
type Room struct {
	mu sync.Mutex

	ID         string
	Code       string
	MaxPlayers int
	Settings   RoomSettings
	CreatedAt  time.Time

	mode         string
	status       string
	participants []*Participant
	chat         []ChatMessage
	chatLimit    int

	hub *wsHub
}

func newRoom(id, code, mode string, maxPlayers int, settings RoomSettings, chatLimit int, hub *wsHub) *Room {
	return &Room{
		ID:         id,
		Code:       code,
		MaxPlayers: maxPlayers,
		Settings:   settings,
		CreatedAt:  timeNowUTC(),
		mode:       mode,
		status:     statusWaiting,
		chatLimit:  chatLimit,
		hub:        hub,
	}
}

func (r *Room) find(participantID string) (*Participant, int) {
	for i, p := range r.participants {
		if p.ID == participantID {
			return p, i
		}
	}
	return nil, -1
}

// Join admits a participant while the room is still waiting. The first
// joiner becomes host.
func (r *Room) Join(p *Participant, c *client) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != statusWaiting {
		return ErrAlreadyStarted
	}
	if len(r.participants) >= r.MaxPlayers {
		return ErrRoomFull
	}

	p.JoinedAt = timeNowUTC()
	p.Ready = false
	p.IsHost = len(r.participants) == 0
	r.participants = append(r.participants, p)

	r.hub.Subscribe(r.ID, c)
	r.broadcastRoster()
	r.hub.Broadcast(r.ID, ServerMessage{Type: msgGameModeUpdate, Payload: map[string]string{"mode": r.mode}})
	return nil
}

// Leave removes a participant in any status. If the host leaves, host
// status transfers to the earliest remaining joiner; the promoted host's
// ready flag is cleared because host readiness is implicit. Returns true
// when the room is now empty and must be deleted.
func (r *Room) Leave(participantID string, c *client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, i := r.find(participantID)
	if p == nil {
		return len(r.participants) == 0
	}

	r.participants = append(r.participants[:i], r.participants[i+1:]...)
	if c != nil {
		r.hub.Unsubscribe(r.ID, c)
	}

	if len(r.participants) == 0 {
		return true
	}

	if p.IsHost {
		next := r.participants[0]
		next.IsHost = true
		next.Ready = false
	}
	r.broadcastRoster()
	return false
}

// ToggleReady flips the sender's ready flag. Hosts have no ready flag to
// flip; start authority is theirs already.
func (r *Room) ToggleReady(participantID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != statusWaiting {
		return ErrAlreadyStarted
	}
	p, _ := r.find(participantID)
	if p == nil {
		return ErrNotInRoom
	}
	if p.IsHost {
		return ErrHostReady
	}
	p.Ready = !p.Ready
	r.broadcastRoster()
	return nil
}

// SelectMode sets the room's game mode. Host only, pre-session only.
func (r *Room) SelectMode(participantID, mode string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, _ := r.find(participantID)
	if p == nil {
		return ErrNotInRoom
	}
	if !p.IsHost {
		return ErrNotHost
	}
	if r.status != statusWaiting {
		return ErrAlreadyStarted
	}
	if !validMode(mode) {
		return ErrUnknownMode
	}
	r.mode = mode
	r.hub.Broadcast(r.ID, ServerMessage{Type: msgGameModeUpdate, Payload: map[string]string{"mode": mode}})
	return nil
}

// Start begins the session. The status flips to in_progress the moment
// the command is accepted; the countdown broadcast that follows is a
// presentation layer on top of the transition, not a gate for it.
func (r *Room) Start(participantID string, countdown int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, _ := r.find(participantID)
	if p == nil {
		return ErrNotInRoom
	}
	if !p.IsHost {
		return ErrNotHost
	}
	if r.status != statusWaiting {
		return ErrAlreadyStarted
	}
	if len(r.participants) < 2 {
		return ErrNeedMorePlayers
	}
	for _, member := range r.participants {
		if !member.IsHost && !member.Ready {
			return ErrNotAllReady
		}
	}

	for _, member := range r.participants {
		member.Score = 0
		member.Finished = false
	}
	r.status = statusInProgress

	r.broadcastRoster()
	r.hub.Broadcast(r.ID, ServerMessage{Type: msgGameStarting, Payload: map[string]int{"countdown": countdown}})
	return nil
}

// countdownTick emits one scheduled countdown broadcast. A zero value is
// the terminal "go" marker. Returns false once the room has left
// in_progress, which stops the chain.
func (r *Room) countdownTick(value int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != statusInProgress {
		return false
	}
	if value > 0 {
		r.hub.Broadcast(r.ID, ServerMessage{Type: msgCountdown, Payload: map[string]int{"value": value}})
	} else {
		r.hub.Broadcast(r.ID, ServerMessage{Type: msgGameStarted})
	}
	return true
}

// UpdateScore records an intermediate live score without marking the
// sender finished.
func (r *Room) UpdateScore(participantID string, score int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != statusInProgress {
		return ErrNotInProgress
	}
	p, _ := r.find(participantID)
	if p == nil {
		return ErrNotInRoom
	}
	p.Score = score
	r.broadcastRoster()
	return nil
}

// Finish records a final score. When every currently-present participant
// has finished, rankings are computed, the room transitions to finished
// and the results are broadcast. Returns the rankings on finalization so
// the caller can hand them to the scoring collaborator.
func (r *Room) Finish(participantID string, score int) ([]Ranking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != statusInProgress {
		return nil, ErrNotInProgress
	}
	p, _ := r.find(participantID)
	if p == nil {
		return nil, ErrNotInRoom
	}
	if p.Finished {
		return nil, ErrAlreadyFinished
	}

	p.Score = score
	p.Finished = true

	for _, member := range r.participants {
		if !member.Finished {
			r.broadcastRoster()
			return nil, nil
		}
	}

	r.status = statusFinished
	rankings := computeRankings(r.mode, r.roster())
	r.broadcastRoster()
	r.hub.Broadcast(r.ID, ServerMessage{Type: msgGameOver, Payload: map[string]any{
		"mode":     r.mode,
		"rankings": rankings,
	}})
	return rankings, nil
}

// PostChat appends to the room's capped message log and broadcasts it.
func (r *Room) PostChat(participantID, text string) (ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, _ := r.find(participantID)
	if p == nil {
		return ChatMessage{}, ErrNotInRoom
	}

	msg := ChatMessage{
		ID:         uuid.NewString(),
		SenderID:   p.ID,
		SenderName: p.Name,
		Text:       text,
		Timestamp:  timeNowUTC().UnixMilli(),
	}
	r.chat = append(r.chat, msg)
	if r.chatLimit > 0 && len(r.chat) > r.chatLimit {
		r.chat = r.chat[len(r.chat)-r.chatLimit:]
	}
	r.hub.Broadcast(r.ID, ServerMessage{Type: msgChatMessage, Payload: msg})
	return msg, nil
}

// ChatHistory returns a copy of the retained message log.
func (r *Room) ChatHistory() []ChatMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	history := make([]ChatMessage, len(r.chat))
	copy(history, r.chat)
	return history
}

func (r *Room) Mode() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mode
}

func (r *Room) Status() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

func (r *Room) Snapshot() RoomSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

func (r *Room) Summary() RoomSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RoomSummary{
		ID:         r.ID,
		Code:       r.Code,
		Mode:       r.mode,
		Status:     r.status,
		Players:    len(r.participants),
		MaxPlayers: r.MaxPlayers,
		CreatedAt:  r.CreatedAt,
	}
}

// roster copies participant values in join order.
func (r *Room) roster() []Participant {
	players := make([]Participant, 0, len(r.participants))
	for _, p := range r.participants {
		players = append(players, *p)
	}
	return players
}

func (r *Room) snapshotLocked() RoomSnapshot {
	return RoomSnapshot{
		ID:         r.ID,
		Code:       r.Code,
		Mode:       r.mode,
		Status:     r.status,
		MaxPlayers: r.MaxPlayers,
		Settings:   r.Settings,
		Players:    r.roster(),
	}
}

func (r *Room) broadcastRoster() {
	r.hub.Broadcast(r.ID, ServerMessage{Type: msgRoomUpdate, Payload: r.snapshotLocked()})
}
