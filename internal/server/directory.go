package server

import (
	"sort"
	"sync"

	"github.com/google/uuid"
)

const codeRetryLimit = 20

// Directory owns the id→room and code→room maps. Rooms are created on
// demand and deleted the moment their last participant leaves; a dead
// room's code immediately becomes available again.
type Directory struct {
	mu        sync.Mutex
	hub       *wsHub
	maxRooms  int
	chatLimit int
	rooms     map[string]*Room
	byCode    map[string]*Room
}

func newDirectory(hub *wsHub, maxRooms, chatLimit int) *Directory {
	return &Directory{
		hub:       hub,
		maxRooms:  maxRooms,
		chatLimit: chatLimit,
		rooms:     make(map[string]*Room),
		byCode:    make(map[string]*Room),
	}
}

// Create allocates a room with a fresh collision-checked code and admits
// the host as its first participant before the room becomes discoverable.
func (d *Directory) Create(mode string, settings RoomSettings, host *Participant, c *client) (*Room, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.maxRooms > 0 && len(d.rooms) >= d.maxRooms {
		return nil, ErrTooManyRooms
	}

	code := ""
	for attempt := 0; attempt < codeRetryLimit; attempt++ {
		candidate := newRoomCode()
		if _, taken := d.byCode[candidate]; !taken {
			code = candidate
			break
		}
	}
	if code == "" {
		return nil, ErrTooManyRooms
	}

	maxPlayers := 4
	if settings.TeamMode {
		maxPlayers = 8
	}
	room := newRoom(uuid.NewString(), code, mode, maxPlayers, settings, d.chatLimit, d.hub)

	// The room is not yet published, so this join cannot race.
	if err := room.Join(host, c); err != nil {
		return nil, err
	}

	d.rooms[room.ID] = room
	d.byCode[code] = room
	return room, nil
}

// FindByCode looks a live room up by its share code, case-insensitively.
func (d *Directory) FindByCode(code string) (*Room, bool) {
	normalized := normalizeRoomCode(code)
	d.mu.Lock()
	defer d.mu.Unlock()
	room, ok := d.byCode[normalized]
	return room, ok
}

func (d *Directory) Get(id string) (*Room, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	room, ok := d.rooms[id]
	return room, ok
}

// ListOpen returns waiting rooms for lobby discovery, newest first.
func (d *Directory) ListOpen() []RoomSummary {
	d.mu.Lock()
	rooms := make([]*Room, 0, len(d.rooms))
	for _, room := range d.rooms {
		rooms = append(rooms, room)
	}
	d.mu.Unlock()

	list := make([]RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		summary := room.Summary()
		if summary.Status == statusWaiting {
			list = append(list, summary)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list
}

// Remove drops a room from both indexes. Called after the last
// participant leaves, in any status.
func (d *Directory) Remove(room *Room) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.rooms, room.ID)
	delete(d.byCode, room.Code)
}

func (d *Directory) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.rooms)
}
