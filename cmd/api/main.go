package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/zagel-app/zagel-backend/api/routes"
	"github.com/zagel-app/zagel-backend/internal/config"
	"github.com/zagel-app/zagel-backend/internal/events"
	"github.com/zagel-app/zagel-backend/internal/handlers"
	mongorepo "github.com/zagel-app/zagel-backend/internal/repositories/mongodb"
	"github.com/zagel-app/zagel-backend/internal/services"
	"github.com/zagel-app/zagel-backend/pkg/channel"
	"github.com/zagel-app/zagel-backend/pkg/mongodb"
)

func main() {
	// .env is optional; real deployments use the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log := newLogger(cfg.LogLevel)

	mongoClient, err := mongodb.NewClient(cfg.MongoDB.URI)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("error disconnecting from MongoDB")
		}
	}()
	db := mongoClient.Database(cfg.MongoDB.Database)

	// Repositories
	userRepo := mongorepo.NewUserRepository(db)
	sessionRepo := mongorepo.NewSessionRepository(db)
	campaignRepo := mongorepo.NewCampaignRepository(db)
	autoReplyRepo := mongorepo.NewAutoReplyRepository(db)

	// Shared infrastructure
	channelManager := channel.NewManager()
	hub := events.NewHub()

	// Services
	authService := services.NewAuthService(userRepo, cfg)
	sessionService := services.NewSessionService(sessionRepo, channelManager, cfg.Channel.Mock, log)
	deliveryService := services.NewDeliveryService(cfg)
	campaignService := services.NewCampaignService(campaignRepo, log)
	dispatchService := services.NewDispatchService(channelManager, deliveryService, hub, log)
	autoReplyService := services.NewAutoReplyService(autoReplyRepo, sessionRepo, channelManager, deliveryService, log)

	schedulerInterval := time.Duration(cfg.Dispatch.SchedulerIntervalSeconds) * time.Second
	schedulerService := services.NewSchedulerService(campaignRepo, channelManager, deliveryService, hub, schedulerInterval, log)

	// Handlers
	deps := routes.HandlerDependencies{
		AuthHandler:      handlers.NewAuthHandler(authService),
		SessionHandler:   handlers.NewSessionHandler(sessionService),
		CampaignHandler:  handlers.NewCampaignHandler(campaignService),
		DispatchHandler:  handlers.NewDispatchHandler(dispatchService, hub),
		AutoReplyHandler: handlers.NewAutoReplyHandler(autoReplyService),
	}
	router := routes.SetupRouter(cfg, log, deps)

	schedulerCtx, cancelScheduler := context.WithCancel(context.Background())
	defer cancelScheduler()
	if err := schedulerService.Start(schedulerCtx); err != nil {
		log.Fatal().Err(err).Msg("failed to start campaign scheduler")
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	schedulerService.Stop()
	cancelScheduler()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	var log zerolog.Logger
	if os.Getenv("APP_ENV") == "development" {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		log = zerolog.New(os.Stderr)
	}
	return log.Level(lvl).With().Timestamp().Logger()
}
