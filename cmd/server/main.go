package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"transcendent/backend/internal/config"
	"transcendent/backend/internal/database"
	"transcendent/backend/internal/handler"
	"transcendent/backend/internal/hub"
	"transcendent/backend/internal/lobby"
	"transcendent/backend/internal/logger"
	"transcendent/backend/internal/matchmaking"
	"transcendent/backend/internal/reaper"
	"transcendent/backend/internal/router"
	"transcendent/backend/internal/session"
	"transcendent/backend/internal/user"
)

const shutdownTimeout = 10 * time.Second

// @title           Transcendent Matchmaking API
// @version         1.0
// @description     Session and lobby registry for game clients.
// @host            localhost:8080
// @BasePath        /
func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := logger.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseURL, logger.WithComponent(zapLogger, "database"))
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() { _ = database.Close(db) }()

	users := user.NewStore(db, cfg.BcryptCost)
	sessions := session.NewStore(db, cfg.JWTSecret, cfg.SessionIdleTimeout)
	lobbies := lobby.NewRegistry(db, cfg.LobbyExpiry, cfg.LobbyMaxPlayersDefault)
	events := hub.New(logger.WithComponent(zapLogger, "hub"))

	h := handler.New(users, sessions, lobbies, matchmaking.NewFinder(lobbies), events,
		logger.WithComponent(zapLogger, "handler"),
		handler.Options{
			LegacyErrorBodies: cfg.LegacyErrorBodies,
			StrictMigration:   cfg.StrictMigration,
		})

	engine := router.New(router.Config{
		Handler:        h,
		Sessions:       sessions,
		Log:            zapLogger,
		RequestTimeout: cfg.RequestTimeout,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go reaper.New(lobbies, sessions, cfg.ReapInterval, logger.WithComponent(zapLogger, "reaper")).Run(ctx)

	srv := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	// Lobby streams never finish on their own.
	srv.RegisterOnShutdown(events.Close)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Server failed", zap.Error(err))
		}
	}()
	zapLogger.Info("Server is running", zap.String("address", cfg.ServerAddress))
	zapLogger.Info("Swagger UI is available at /swagger/index.html")

	<-ctx.Done()
	zapLogger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Graceful shutdown failed", zap.Error(err))
	}
}
