package api

import (
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"parkkean-backend/config"
	"parkkean-backend/internal/lots"
	"parkkean-backend/internal/mw"
	"parkkean-backend/internal/observability"
	"parkkean-backend/internal/store"
)

// Dependencies are the collaborators the router wires into its handlers.
type Dependencies struct {
	Store   store.Store
	Lots    *lots.Service
	Webpush *webpush.Options // nil when push is disabled
	Metrics *observability.Metrics
	Clock   clockwork.Clock
}

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg config.ServerConfig, deps Dependencies) *gin.Engine {
	r := gin.Default()

	// A non-positive TTL turns response caching off.
	var (
		cacheStore *cache.Cache
		caching    gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	)
	if ttl := cfg.CacheTTL(); ttl > 0 {
		cacheStore = cache.New(ttl, 2*ttl)
		caching = mw.Cache(cacheStore, ttl)
	}

	handler := NewHandler(deps.Store, deps.Lots, deps.Webpush, cacheStore, deps.Metrics, deps.Clock)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst, cfg.RequestIPHeader)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API group
	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		// Every lots read runs a full reconciliation cycle, so it is never cached.
		api.GET("/lots", handler.GetLots)
		api.POST("/lots/refresh", handler.RefreshLots)
		api.GET("/lots/:id", handler.GetLot)
		api.GET("/lots/:id/reports", caching, handler.GetLotReports)

		api.POST("/users", handler.CreateUser)
		api.GET("/users/:username", handler.GetUser)
		api.GET("/leaderboard", caching, GetLeaderboard(deps.Store))
		api.POST("/reports", handler.SubmitReport)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
