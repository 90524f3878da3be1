package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/jonboulle/clockwork"

	"parkkean-backend/config"
	"parkkean-backend/internal/api"
	"parkkean-backend/internal/db"
	"parkkean-backend/internal/feed"
	"parkkean-backend/internal/lots"
	"parkkean-backend/internal/notification"
	"parkkean-backend/internal/observability"
	"parkkean-backend/internal/simulate"
	"parkkean-backend/internal/store"
)

func main() {
	logger := log.New(os.Stdout, "parkkean ", log.LstdFlags)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded (live feed enabled: %t)", cfg.Feed.URL != "")

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clock := clockwork.NewRealClock()
	if cfg.Database.SeedEnabled() {
		if err := db.Seed(ctx, gormDB, clock.Now()); err != nil {
			logger.Fatalf("failed to seed database: %v", err)
		}
	}

	appStore := store.NewGormStore(gormDB)
	metrics := observability.NewMetrics()

	var (
		webpushOptions *webpush.Options
		notifier       lots.Notifier
	)
	if cfg.Push.Enabled() {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		pool := notification.NewWorkerPool(cfg.WorkerPool.Size, cfg.WorkerPool.QueueSize, gormDB, webpushOptions, metrics)
		pool.Start(ctx)
		notifier = pool
	} else {
		logger.Println("VAPID keys not configured; push notifications disabled")
	}

	var walker *simulate.Walker
	if cfg.Simulator.On() {
		walker = simulate.NewWalker(rand.New(rand.NewSource(clock.Now().UnixNano())), cfg.Simulator.Fluctuation)
	}

	feedClient := feed.NewClient(cfg.Feed, metrics, clock)
	lotService := lots.NewService(appStore, feedClient, walker, notifier, metrics, clock)

	router := api.NewRouter(cfg.Server, api.Dependencies{
		Store:   appStore,
		Lots:    lotService,
		Webpush: webpushOptions,
		Metrics: metrics,
		Clock:   clock,
	})
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
