package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/pingloop/messenger/internal/api"
	"github.com/pingloop/messenger/internal/infrastructure/config"
	mongodb "github.com/pingloop/messenger/internal/infrastructure/db/mongo"
	redisdb "github.com/pingloop/messenger/internal/infrastructure/db/redis"
	"github.com/pingloop/messenger/internal/infrastructure/queue"
	"github.com/pingloop/messenger/internal/infrastructure/realtime"
	"github.com/pingloop/messenger/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		panic(err)
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("mongodb disconnect failed")
		}
	}()

	if err := mongodb.NewUserRepository(db).EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("user index creation failed")
	}
	if err := mongodb.NewMessageRepository(db).EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("message index creation failed")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Warn().Err(err).Msg("redis close failed")
		}
	}()

	presence := redisdb.NewPresence(rdb)
	hub := realtime.NewHub(presence, log)

	dispatcher := queue.NewPushDispatcher(cfg.PushWorkers, hub, log)
	dispatcher.Start(ctx)

	e, err := api.NewRouter(api.Deps{
		Mongo:     db,
		Redis:     rdb,
		Hub:       hub,
		Pusher:    dispatcher,
		JWTSecret: cfg.JWTSecret,
		Logger:    log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("router construction failed")
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting api server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
