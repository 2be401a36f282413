package server

import (
	"net/http"
	"sync"
	"time"

	"neuro-arena/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	cfg       config.Config
	db        *gorm.DB
	hub       *wsHub
	directory *Directory
	registry  *Registry
	scores    *ScoreKeeper
	timersMu  sync.Mutex
	timers    map[string]*time.Timer
}

func New(conn *gorm.DB, rdb *redis.Client, cfg config.Config) *Server {
	registerValidators()
	hub := newWSHub()
	return &Server{
		cfg:       cfg,
		db:        conn,
		hub:       hub,
		directory: newDirectory(hub, cfg.MaxRooms, cfg.ChatHistoryLimit),
		registry:  newRegistry(),
		scores:    newScoreKeeper(conn, rdb, cfg.LeaderboardSize),
		timers:    make(map[string]*time.Timer),
	}
}

func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/healthz", s.handleHealth)
	router.GET("/api/rooms", s.handleListRooms)
	router.GET("/api/leaderboard", s.handleLeaderboard)
	router.GET("/ws", s.handleSocket)
	return router
}
