package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"crash-game/config"
	"crash-game/controllers"
	"crash-game/db"
	"crash-game/game"
	"crash-game/logger"
	"crash-game/models"
	"crash-game/routes"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.Must(zap.NewProduction()).Fatal("invalid configuration", zap.Error(err))
	}
	if err := logger.Init(cfg.IsDevelopment(), cfg.LogLevel); err != nil {
		zap.Must(zap.NewProduction()).Fatal("logger setup failed", zap.Error(err))
	}
	log := logger.Log
	defer func() { _ = log.Sync() }()

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The archive is optional; without MONGODB_URI rounds are only kept in memory.
	var (
		client  *mongo.Client
		archive game.Archive
		rounds  controllers.RoundLister
	)
	if cfg.MongoURI != "" {
		client, err = db.ConnectDB(ctx, cfg.MongoURI)
		if err != nil {
			log.Fatal("mongo connection failed", zap.Error(err))
		}
		ra := db.NewRoundArchive(client.Database(cfg.MongoDatabase))
		if err := ra.EnsureIndexes(ctx); err != nil {
			log.Fatal("creating round indexes failed", zap.Error(err))
		}
		archive, rounds = ra, ra
		log.Info("round archive enabled", zap.String("database", cfg.MongoDatabase))
	} else {
		log.Warn("MONGODB_URI not set, round archive disabled")
	}

	// Initialize the WebSocket hub
	hub := models.NewHub(log)
	go hub.Run()

	eng := game.NewEngine(game.Options{
		Broadcaster: hub,
		Archive:     archive,
		Logger:      log,
	})
	go eng.Run(ctx)

	r := routes.NewRouter(cfg, log)
	routes.RoundRoutes(r, controllers.NewRoundController(eng, rounds, log))
	routes.WebSocketRoutes(r, hub, eng, log)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("server running", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", zap.Error(err))
	}
	eng.Stop()
	<-eng.Done()
	hub.Stop()

	if client != nil {
		if err := client.Disconnect(shutdownCtx); err != nil {
			log.Error("mongo disconnect failed", zap.Error(err))
		}
	}
}
