package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sheikh-saqib/card-payments-api/internal/api/handlers"
	"github.com/sheikh-saqib/card-payments-api/internal/api/middleware"
	"github.com/sheikh-saqib/card-payments-api/internal/config"
	"github.com/sheikh-saqib/card-payments-api/internal/events/kafka"
	interfaces "github.com/sheikh-saqib/card-payments-api/internal/interfaces"
	"github.com/sheikh-saqib/card-payments-api/internal/logger"
	"github.com/sheikh-saqib/card-payments-api/internal/payment"
	"github.com/sheikh-saqib/card-payments-api/internal/storage/memory"
	"github.com/sheikh-saqib/card-payments-api/internal/storage/postgres"
	"github.com/sheikh-saqib/card-payments-api/internal/storage/rediscache"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open transaction store")
	}
	defer closeStore()

	var publisher interfaces.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kp := kafka.NewPublisher(cfg.KafkaBrokers)
		defer kp.Close()
		publisher = kp
		log.Info().Strs("brokers", cfg.KafkaBrokers).Msg("Publishing transaction events to Kafka")
	}

	paymentService := payment.NewService(store, payment.LocalAuthorizer{}, publisher)

	mux := http.NewServeMux()
	handlers.NewTransactionsHandler(paymentService).Register(mux)
	mux.HandleFunc("GET /health", handlers.Health)

	server := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: middleware.Chain(mux,
			middleware.RequestID,
			middleware.Logger(log),
			middleware.Recovery(log),
		),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// openStore picks postgres when DATABASE_URL is set and memory otherwise, then puts the
// Redis cache in front when REDIS_ADDR is set. The returned func releases connections.
func openStore(ctx context.Context, cfg config.Config, log zerolog.Logger) (interfaces.TransactionStore, func(), error) {
	var (
		store   interfaces.TransactionStore
		closers []func()
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.DatabaseURL == "" {
		log.Warn().Msg("No DATABASE_URL configured - transactions are kept in memory")
		store = memory.NewMemoryTransactionStore()
	} else {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("open database: %w", err)
		}
		closers = append(closers, func() { db.Close() })

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("ping database: %w", err)
		}

		if cfg.AutoMigrate {
			if err := postgres.Migrate(db); err != nil {
				closeAll()
				return nil, nil, err
			}
			log.Info().Msg("Database schema is up to date")
		}

		store = postgres.NewPostgresTransactionStore(db)
	}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		closers = append(closers, func() { rdb.Close() })

		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("Redis unreachable - cache will retry per request")
		}
		store = rediscache.NewCachedTransactionStore(store, rdb, cfg.CacheTTL)
	}

	return store, closeAll, nil
}
