package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/luminagames/ludo-backend/internal/bot"
	"github.com/luminagames/ludo-backend/internal/config"
	"github.com/luminagames/ludo-backend/internal/repository"
	"github.com/luminagames/ludo-backend/internal/repository/storage"
	"github.com/luminagames/ludo-backend/internal/room"
	"github.com/luminagames/ludo-backend/transport/rest"
	"github.com/luminagames/ludo-backend/transport/websocket"
)

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	// The Redis mirror is optional: with no address configured the engine
	// keeps all room state in memory only.
	var mirror room.Mirror
	if addr := conf.Redis.GetRedisAddr(); addr != "" {
		redisStorage, err := storage.New(ctx, addr)
		if err != nil {
			return fmt.Errorf("could not connect to redis storage: %w", err)
		}

		defer func() {
			if err = redisStorage.Close(); err != nil {
				log.Error("could not close redis storage", "error", err)
			}
		}()

		mirror = repository.NewRoomRepository(redisStorage)
		log.Info("room state mirroring enabled", "addr", addr)
	}

	selector := bot.NewSelector()

	wsServer := websocket.New(logger, nil)
	registry := room.NewRegistry(logger, wsServer, mirror, selector, conf.Room.IdleTTL)
	wsServer.SetRegistry(registry)

	go registry.RunSweeper(ctx, conf.Room.SweepInterval)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		restServer := rest.New(logger, registry)
		if httpErr := restServer.Start(ctx, conf.HTTPPort); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err := <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err := <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}
