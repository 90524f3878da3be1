package api

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"parkkean-backend/internal/store"
)

const (
	leaderboardPath  = "/api/leaderboard"
	leaderboardLimit = 20
)

type createUserRequest struct {
	Username string `json:"username"`
}

// CreateUser handles POST /api/users: find the user case-insensitively or create it.
func (h *Handler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Username) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username is required"})
		return
	}

	user, err := h.store.FindOrCreateUser(c.Request.Context(), req.Username)
	if err != nil {
		log.Printf("Error creating user %q: %v", req.Username, err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// GetUser handles GET /api/users/:username.
func (h *Handler) GetUser(c *gin.Context) {
	user, err := h.store.GetUser(c.Request.Context(), c.Param("username"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		log.Printf("Error loading user %q: %v", c.Param("username"), err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// GetLeaderboard handles GET /api/leaderboard.
func GetLeaderboard(s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := s.Leaderboard(c.Request.Context(), leaderboardLimit)
		if err != nil {
			log.Printf("Error loading leaderboard: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve leaderboard"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
	}
}
