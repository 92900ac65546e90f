// cmd/worker/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/unclebandit/charity-backend/internal/config"
	"github.com/unclebandit/charity-backend/internal/db"
	"github.com/unclebandit/charity-backend/internal/logging"
	"github.com/unclebandit/charity-backend/internal/queue"
	"github.com/unclebandit/charity-backend/internal/repository"
	"github.com/unclebandit/charity-backend/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if err := logging.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
		log.Fatal().Err(err).Msg("invalid log level")
	}
	if cfg.AMQPURL == "" {
		log.Fatal().Msg("AMQP_URL is required for the worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := db.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer closeStore()

	q, err := queue.DialAMQP(cfg.AMQPURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
	}
	defer q.Close()

	if err := consume(q, store); err != nil {
		log.Fatal().Err(err).Msg("failed to register consumers")
	}

	log.Info().Msg("Worker running, waiting for messages...")
	<-ctx.Done()
	log.Info().Msg("worker stopping")
}

// consume registers every trigger handler on q.
func consume(q queue.Queue, store repository.Store) error {
	return (&service.TriggerService{Store: store}).Subscribe(q)
}
