// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/unclebandit/charity-backend/internal/auth"
	"github.com/unclebandit/charity-backend/internal/config"
	"github.com/unclebandit/charity-backend/internal/db"
	"github.com/unclebandit/charity-backend/internal/logging"
	"github.com/unclebandit/charity-backend/internal/queue"
	"github.com/unclebandit/charity-backend/internal/router"
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := db.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer closeStore()

	// Without a broker, triggers run in this process.
	var q queue.Queue
	if cfg.AMQPURL != "" {
		amqpQueue, err := queue.DialAMQP(cfg.AMQPURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
		}
		defer amqpQueue.Close()
		q = amqpQueue
		log.Info().Msg("publishing triggers to RabbitMQ, run cmd/worker to consume them")
	} else {
		memQueue := queue.NewInMemoryQueue()
		if err := (&service.TriggerService{Store: store}).Subscribe(memQueue); err != nil {
			log.Fatal().Err(err).Msg("failed to subscribe triggers")
		}
		defer memQueue.Wait()
		q = memQueue
	}

	handler := router.New(router.Services{
		Charities: &service.CharityService{Store: store},
		Campaigns: &service.CampaignService{Store: store, Dedup: cfg.PaymentDedup},
		Analytics: &service.AnalyticsService{Store: store},
		Posts:     &service.PostService{Store: store, Queue: q},
		Auth:      auth.NewJWTVerifier(cfg.AuthSecret, cfg.AuthIssuer, cfg.AuthAudience),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("store", cfg.StoreDriver).Bool("payment_dedup", cfg.PaymentDedup).Msg("🚀 Server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
