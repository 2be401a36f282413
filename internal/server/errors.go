package server

import "errors"

// Guard failures surfaced to the issuing connection as rejection replies.
// They never affect other room members.
var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrRoomFull        = errors.New("room is full")
	ErrAlreadyInRoom   = errors.New("already in a room")
	ErrNotInRoom       = errors.New("not in a room")
	ErrNotHost         = errors.New("only the host can do that")
	ErrHostReady       = errors.New("host does not toggle ready")
	ErrNotAllReady     = errors.New("all players must be ready")
	ErrNeedMorePlayers = errors.New("need at least 2 players")
	ErrAlreadyStarted  = errors.New("game already started")
	ErrNotInProgress   = errors.New("game not in progress")
	ErrAlreadyFinished = errors.New("already finished")
	ErrUnknownMode     = errors.New("unknown game mode")
	ErrTooManyRooms    = errors.New("room limit reached")
)
