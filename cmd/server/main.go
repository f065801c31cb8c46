package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/oggyb/vibeu-engine/internal/app"
	"github.com/oggyb/vibeu-engine/internal/cache"
	"github.com/oggyb/vibeu-engine/internal/config"
	"github.com/oggyb/vibeu-engine/internal/db"
	"github.com/oggyb/vibeu-engine/internal/logger"
	"github.com/oggyb/vibeu-engine/internal/notify"
	"github.com/oggyb/vibeu-engine/internal/repository"
	"github.com/oggyb/vibeu-engine/internal/server"
	"github.com/oggyb/vibeu-engine/internal/service/discovery"
	"github.com/oggyb/vibeu-engine/internal/service/social"
	"github.com/oggyb/vibeu-engine/internal/transport/httpapi"
)

func main() {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	if err := run(cfg); err != nil {
		log.Error("server stopped with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		return err
	}

	// Init Redis; the db rate backend runs without it.
	var redisCache *cache.RedisCache
	if cfg.Engine.RateBackend != "db" {
		redisCache = cache.NewRedisCache(cfg)
		if err := redisCache.Ping(ctx); err != nil {
			return err
		}
		defer redisCache.Close()
	}

	dispatcher := notify.NewDispatcher(
		notify.NewDBSink(repository.NewNotificationRepository(database), uuid.NewString),
		cfg.Engine.NotifyQueueSize,
		log,
	)
	defer dispatcher.Close()

	appCtx, err := app.New(cfg, database, redisCache, log, app.WithNotifier(dispatcher))
	if err != nil {
		return err
	}

	if cfg.App.ENV == "development" {
		if err := db.SeedTestData(database, db.SeedOptions{Reset: true}); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	httpServer := &http.Server{
		Addr:              net.JoinHostPort(cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           httpapi.NewRouter(appCtx, discovery.NewService(appCtx), social.NewService(appCtx)),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting HTTP server", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return server.StartGRPCServer(gctx, cfg, log, server.NewRegistrar(appCtx))
	})

	err = g.Wait()
	log.Info("shutdown complete")
	return err
}
