package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"parkkean-backend/internal/store"
)

// reportsLimit is how many recent reports GET /api/lots/:id/reports returns.
const reportsLimit = 10

// GetLots handles GET /api/lots: stored lots overlaid with the live feed when available.
func (h *Handler) GetLots(c *gin.Context) {
	view, err := h.lots.Current(c.Request.Context())
	if err != nil {
		log.Printf("Error loading lots: %v", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve lots"})
		return
	}
	c.JSON(http.StatusOK, view)
}

// RefreshLots handles POST /api/lots/refresh.
func (h *Handler) RefreshLots(c *gin.Context) {
	view, err := h.lots.Refresh(c.Request.Context())
	if err != nil {
		log.Printf("Error refreshing lots: %v", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to refresh lots"})
		return
	}
	h.invalidateLots()
	c.JSON(http.StatusOK, view)
}

// GetLot handles GET /api/lots/:id.
func (h *Handler) GetLot(c *gin.Context) {
	id, ok := lotIDParam(c)
	if !ok {
		return
	}

	lot, err := h.store.GetLot(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lot not found"})
		return
	}
	if err != nil {
		log.Printf("Error loading lot %d: %v", id, err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve lot"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"lot": lot})
}

// GetLotReports handles GET /api/lots/:id/reports.
func (h *Handler) GetLotReports(c *gin.Context) {
	id, ok := lotIDParam(c)
	if !ok {
		return
	}

	reports, err := h.store.ListReports(c.Request.Context(), id, reportsLimit)
	if err != nil {
		log.Printf("Error loading reports for lot %d: %v", id, err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve reports"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports})
}
