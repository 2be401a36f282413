package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"rooms":       s.directory.Count(),
		"connections": s.registry.Count(),
	})
}

// handleListRooms serves lobby discovery: waiting rooms, newest first.
func (s *Server) handleListRooms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rooms": s.directory.ListOpen()})
}

func (s *Server) handleLeaderboard(c *gin.Context) {
	entries, err := s.scores.Leaderboard(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "leaderboard unavailable"})
		return
	}
	if entries == nil {
		entries = []LeaderboardEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}
