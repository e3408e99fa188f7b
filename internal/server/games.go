package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/parleychat/parley/internal/game"
)

// CreateGameHandler serves POST /api/games.
func (s *Server) CreateGameHandler(c *gin.Context) {
	c.JSON(http.StatusCreated, s.games.Start())
}

// GetGameHandler serves GET /api/games/:id.
func (s *Server) GetGameHandler(c *gin.Context) {
	sess, err := s.games.Get(c.Param("id"))
	if errors.Is(err, game.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sess)
}

// GuessHandler serves POST /api/games/:id/guess.
func (s *Server) GuessHandler(c *gin.Context) {
	var req struct {
		Word string `json:"word"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, err := s.games.Guess(c.Param("id"), req.Word)
	switch {
	case errors.Is(err, game.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
	case errors.Is(err, game.ErrBadGuess), errors.Is(err, game.ErrFinished):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, sess)
	}
}
