package api

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"parkkean-backend/internal/model"
	"parkkean-backend/internal/store"
)

type submitReportRequest struct {
	Username string `json:"username" binding:"required"`
	LotID    int64  `json:"lotId" binding:"required"`
	Status   string `json:"status" binding:"required"`
	Note     string `json:"note"`
}

// SubmitReport handles POST /api/reports. The reported status is applied to
// the lot and the reporter earns points.
func (h *Handler) SubmitReport(c *gin.Context) {
	var req submitReportRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Username) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username, lotId, and status are required"})
		return
	}

	status := model.LotStatus(req.Status)
	if !model.ValidStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status value"})
		return
	}

	result, err := h.store.SubmitReport(c.Request.Context(), store.NewReport{
		Username: req.Username,
		LotID:    req.LotID,
		Status:   status,
		Note:     req.Note,
		At:       h.clock.Now().UnixMilli(),
	})
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lot not found"})
		return
	}
	if err != nil {
		log.Printf("Error submitting report for lot %d: %v", req.LotID, err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if h.metrics != nil {
		h.metrics.ReportsSubmitted.Inc()
	}
	if h.lots != nil {
		h.lots.NotifyIfReopened(result.Lot.ID, result.PreviousStatus, result.Lot.Status)
	}
	h.invalidateLots()
	if h.cache != nil {
		h.cache.Delete(leaderboardPath)
	}

	c.JSON(http.StatusCreated, gin.H{"user": result.User, "lot": result.Lot})
}
