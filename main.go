package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"sportz-service/allsports"
	"sportz-service/config"
	"sportz-service/database"
	"sportz-service/logger"
	"sportz-service/services"
	"sportz-service/web"
)

type store interface {
	services.MatchStore
	services.CommentaryStore
}

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	logger.Printf("Starting Sportz live service (environment: %s)", cfg.Environment)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clock := clockwork.NewRealClock()

	var st store
	if cfg.DatabaseURL != "" {
		db, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := database.Migrate(db); err != nil {
			logger.Fatalf("Failed to migrate database: %v", err)
		}
		logger.Println("Database connected and migrated")
		st = services.NewPostgresStore(db)
	} else {
		logger.Println("DATABASE_URL not set, using in-memory storage")
		st = services.NewMemoryStore(clock)
	}

	wsHub := web.NewHub(clock)
	go wsHub.Run(ctx)

	publishers := []services.EventPublisher{wsHub}
	if cfg.AMQPURL != "" {
		relay := services.NewAMQPRelay(cfg.AMQPURL, cfg.AMQPExchange, services.DefaultRelayBufferSize)
		go relay.Run(ctx)
		publishers = append(publishers, relay)
		logger.Printf("AMQP relay enabled (exchange: %s)", cfg.AMQPExchange)
	}
	broadcaster := services.NewBroadcaster(clock, publishers...)

	processor := services.NewFeedProcessor(cfg.FeedSport,
		services.NewCorrelator(st, broadcaster, clock),
		services.NewStateApplier(st, broadcaster))

	server := web.NewServer(cfg, st, st, broadcaster, wsHub)

	if cfg.FeedEnabled() {
		feed := allsports.NewFeedClient(cfg.FeedURL, cfg.AllSportsAPIKey, processor,
			allsports.WithClock(clock),
			allsports.WithReconnectDelay(cfg.FeedReconnectDelay))
		go feed.Run(ctx)
		server.SetFeedStatus(feed)
		logger.Printf("Live feed enabled (sport: %s)", cfg.FeedSport)
	} else {
		logger.Println("ALLSPORTS_API_KEY not set, live feed disabled")
	}

	statusSync := services.NewStatusSync(st, clock, cfg.StatusSyncInterval)
	go statusSync.Run(ctx)

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Server error: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Println("Shutting down...")
	server.Stop()
	cancel()
	logger.Println("Shutdown complete")
}
