package main

import (
	"context"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"studyhub/client/internal/apiclient"
	"studyhub/client/internal/bridge"
	"studyhub/client/internal/chat"
	"studyhub/client/internal/config"
	"studyhub/client/internal/handlers"
	"studyhub/client/internal/jobs"
	"studyhub/client/internal/localstore"
	"studyhub/client/internal/log"
	"studyhub/client/internal/provider"
	"studyhub/client/internal/server"
	"studyhub/client/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment)

	ctx := context.Background()

	store, err := newLocalStore(cfg.Session)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.Session.Backend).Msg("failed to open session store")
	}

	prov := provider.NewHTTPProvider(cfg.Provider, logger)

	// The API client reads the token from the session manager, which in
	// turn resolves sessions through the same client. The closure breaks
	// the construction cycle.
	var sessions *session.Manager
	api := apiclient.New(cfg.Backend, func() string {
		if sessions == nil {
			return ""
		}
		return sessions.Token()
	}, logger)

	resolver := bridge.NewResolver(prov, api, logger)
	sessions = session.NewManager(prov, resolver, store, logger)
	sessions.Start(ctx)

	widget := chat.NewWidget(sessions, api, logger)

	handlerSet := handlers.NewHandlerSet(logger, cfg, sessions, prov, resolver, api, widget)
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	scheduler := jobs.NewScheduler(sessions, cfg.Session.RevalidateInterval, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("scheduler start failed")
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, scheduler, store)
}

func newLocalStore(cfg config.SessionConfig) (localstore.Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case "redis":
		return localstore.NewRedis(cfg.RedisURL)
	case "memory":
		return localstore.NewMemory(), nil
	default:
		return localstore.NewSQLite(cfg.SQLitePath)
	}
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, scheduler *jobs.Scheduler, store localstore.Store) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
		if err := srv.Shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("forced shutdown failed")
		}
	}

	if scheduler != nil {
		scheduler.Stop()
	}

	if err := store.Close(); err != nil {
		logger.Error().Err(err).Msg("session store close error")
	}

	logger.Info().Msg("client exited cleanly")
}
