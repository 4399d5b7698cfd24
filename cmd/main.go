package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danfishgold/pizza-party/config"
	"github.com/danfishgold/pizza-party/internal/memory"
	"github.com/danfishgold/pizza-party/internal/postgres"
	redisstore "github.com/danfishgold/pizza-party/internal/redis"
	"github.com/danfishgold/pizza-party/internal/service"
	httpx "github.com/danfishgold/pizza-party/internal/transport/http"
	"github.com/danfishgold/pizza-party/internal/transport/ws"
	"github.com/danfishgold/pizza-party/pkg/logger"

	goredis "github.com/redis/go-redis/v9"
)

func main() {
	// --- config ---
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger.Init(logger.Config{
		Env:       logger.Env(cfg.Logging.Env),
		Service:   cfg.Logging.Service,
		Version:   cfg.Logging.Version,
		Backend:   logger.Backend(cfg.Logging.Backend),
		AddSource: cfg.Logging.AddSource,
		Debug:     cfg.Logging.Debug,
	})
	slog.Info("starting pizza-party",
		"env", cfg.Logging.Env, "version", cfg.Logging.Version, "store", cfg.Store.Backend)

	// --- session store ---
	ctx := context.Background()
	var store service.RoomStore
	switch cfg.Store.Backend {
	case "postgres":
		db, err := postgres.New(ctx, cfg.Store.Postgres.DSN)
		if err != nil {
			log.Fatalf("postgres: %v", err)
		}
		defer db.Close()
		if err := db.EnsureSchema(ctx); err != nil {
			log.Fatalf("postgres schema: %v", err)
		}
		store = postgres.NewRoomRepository(db.Pool)
	case "redis":
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Store.Redis.Addr,
			Password: cfg.Store.Redis.Password,
			DB:       cfg.Store.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer client.Close()
		store = redisstore.NewRoomRepository(client, "")
	default:
		store = memory.NewRoomRepository()
	}

	// --- services ---
	directory := service.NewDirectory(store, cfg.Room.IDDigits)
	registry := service.NewRegistry()

	// --- WS hub & server ---
	hub := ws.NewHub()
	wsServer := ws.NewServer(hub, directory, registry, cfg.WS.PingEvery())

	// --- HTTP ---
	handler := httpx.NewHandler(directory)
	router := httpx.NewRouter(handler, wsServer, cfg.HTTP.StaticDir)
	httpSrv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listen", "addr", cfg.HTTP.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// --- graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal", "sig", sig)
	case err := <-errCh:
		slog.Error("server error", "err", err)
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = httpSrv.Shutdown(ctxShutdown)
	slog.Info("stopped")
}
