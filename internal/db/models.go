package db

import (
	"time"

	"gorm.io/datatypes"
)

type User struct {
	ID          uint      `gorm:"primaryKey"`
	Username    string    `gorm:"size:64;uniqueIndex;not null"`
	Avatar      string    `gorm:"size:16;not null;default:''"`
	TotalScore  int       `gorm:"not null;default:0"`
	Level       int       `gorm:"not null;default:1"`
	GamesPlayed int       `gorm:"not null;default:0"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
	Scores      []Score
}

type Score struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"index;not null"`
	GameMode  string    `gorm:"size:32;not null"`
	Score     int       `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// RoomEvent is an append-only audit row for room lifecycle transitions.
// Rooms themselves are never persisted; they live and die in memory.
type RoomEvent struct {
	ID        uint           `gorm:"primaryKey"`
	RoomCode  string         `gorm:"size:12;index;not null"`
	Type      string         `gorm:"size:64;not null"`
	Payload   datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"not null"`
}
