package api

import (
	"net/http"
	"strconv"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/patrickmn/go-cache"

	"parkkean-backend/internal/lots"
	"parkkean-backend/internal/mw"
	"parkkean-backend/internal/observability"
	"parkkean-backend/internal/store"
)

// Cache keys written by the lot endpoints share this prefix.
const lotsCachePrefix = "/api/lots"

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store   store.Store
	lots    *lots.Service
	webpush *webpush.Options
	cache   *cache.Cache
	metrics *observability.Metrics
	clock   clockwork.Clock
}

// NewHandler creates a new API handler. webpushOptions may be nil when push is disabled.
func NewHandler(s store.Store, svc *lots.Service, webpushOptions *webpush.Options, responseCache *cache.Cache, metrics *observability.Metrics, clock clockwork.Clock) *Handler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Handler{
		store:   s,
		lots:    svc,
		webpush: webpushOptions,
		cache:   responseCache,
		metrics: metrics,
		clock:   clock,
	}
}

// invalidateLots drops cached lot responses after a write.
func (h *Handler) invalidateLots() {
	if h.cache != nil {
		mw.Invalidate(h.cache, lotsCachePrefix)
	}
}

func lotIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lot id"})
		return 0, false
	}
	return id, true
}
