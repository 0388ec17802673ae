package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/Talha-100/hft-matching-engine/config"
	"github.com/Talha-100/hft-matching-engine/internal/engine"
	"github.com/Talha-100/hft-matching-engine/internal/feed"
	"github.com/Talha-100/hft-matching-engine/internal/journal"
	"github.com/Talha-100/hft-matching-engine/internal/logger"
	"github.com/Talha-100/hft-matching-engine/internal/market"
	"github.com/Talha-100/hft-matching-engine/internal/server"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logger.Level, cfg.Logger.Mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Build trade journal sinks based on configuration
	tradeJournal := buildJournal(cfg, log)
	defer func() {
		if tradeJournal != nil {
			if err := tradeJournal.Close(); err != nil {
				log.Errorw("Failed to close trade journal", "error", err)
			}
		}
	}()

	// Matching engine: one goroutine owns the book
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eng := engine.New(tradeJournal, log)
	go eng.Run(ctx)

	// Market-data fan-out
	publisher := market.NewPublisher(log)

	var marketFeed *feed.KafkaFeed
	if cfg.Feed.Enabled {
		marketFeed = feed.NewKafkaFeed(feed.KafkaConfig{
			Brokers: cfg.Feed.Brokers,
			Topic:   cfg.Feed.Topic,
			Buffer:  cfg.Feed.Buffer,
		}, log)
		publisher.AddConsumer(marketFeed)
		log.Infow("Kafka market feed enabled",
			"brokers", cfg.Feed.Brokers, "topic", cfg.Feed.Topic)
	}

	srv, err := server.New(cfg.Server.Port, eng, publisher, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start server: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("=== HFT Matching Engine Server ===")
	fmt.Printf("Server started on port %d\n", cfg.Server.Port)
	fmt.Println("Press Ctrl+C or type 'shutdown' to gracefully stop the server")
	fmt.Println("====================================")

	go srv.Serve()

	// Wait for a signal or the operator typing 'shutdown'
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	console := make(chan struct{}, 1)
	go watchConsole(console, log)

	select {
	case sig := <-quit:
		log.Infow("Signal received, shutting down", "signal", sig.String())
	case <-console:
		log.Info("Shutdown command received")
	}

	srv.Shutdown()
	cancel()

	if marketFeed != nil {
		if err := marketFeed.Close(); err != nil {
			log.Warnw("Failed to close market feed", "error", err)
		}
	}

	log.Info("Server exited successfully")
}

// watchConsole reads operator commands from standard input. The literal
// 'shutdown' triggers graceful shutdown; anything else non-empty logs as
// unknown.
func watchConsole(shutdown chan<- struct{}, log *zap.SugaredLogger) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "shutdown" {
			shutdown <- struct{}{}
			return
		}
		log.Warnw("Unknown console command", "input", line)
	}
}

// buildJournal constructs the configured trade journal sinks, layering
// memory, file, Redis, and Postgres into a composite. Optional sinks fail
// soft: a connection error logs a warning and the engine runs without
// that sink.
func buildJournal(cfg *config.Config, log *zap.SugaredLogger) journal.TradeStore {
	var stores []journal.TradeStore

	if cfg.Journal.Memory.Enabled {
		stores = append(stores, journal.NewMemoryStore(cfg.Journal.Memory.MaxTrades))
		log.Infow("In-memory trade journal enabled",
			"max_trades", cfg.Journal.Memory.MaxTrades)
	}

	if cfg.Journal.File.Enabled {
		fileStore, err := journal.NewFileStore(cfg.Journal.File.Path)
		if err != nil {
			log.Warnw("Failed to open trade log, continuing without file journal",
				"error", err)
		} else {
			stores = append(stores, fileStore)
			log.Infow("Trade file log enabled", "path", cfg.Journal.File.Path)
		}
	}

	if cfg.Journal.Redis.Enabled {
		redisStore, err := journal.NewRedisStore(journal.RedisConfig{
			Addr:      fmt.Sprintf("%s:%d", cfg.Journal.Redis.Host, cfg.Journal.Redis.Port),
			Password:  cfg.Journal.Redis.Password,
			DB:        cfg.Journal.Redis.DB,
			PoolSize:  cfg.Journal.Redis.PoolSize,
			MaxTrades: cfg.Journal.Redis.MaxTrades,
		})
		if err != nil {
			log.Warnw("Failed to connect to Redis, continuing without Redis journal",
				"error", err)
		} else {
			stores = append(stores, redisStore)
			log.Infow("Redis trade journal enabled",
				"host", cfg.Journal.Redis.Host, "port", cfg.Journal.Redis.Port)
		}
	}

	if cfg.Journal.Database.Enabled {
		pgStore, err := journal.NewPostgresStore(journal.PostgresConfig{
			Host:     cfg.Journal.Database.Host,
			Port:     cfg.Journal.Database.Port,
			Database: cfg.Journal.Database.Name,
			User:     cfg.Journal.Database.User,
			Password: cfg.Journal.Database.Password,
			MaxConns: cfg.Journal.Database.MaxConns,
			SSLMode:  cfg.Journal.Database.SSLMode,
		})
		if err != nil {
			log.Warnw("Failed to connect to PostgreSQL, continuing without database journal",
				"error", err)
		} else {
			stores = append(stores, pgStore)
			log.Infow("PostgreSQL trade journal enabled",
				"host", cfg.Journal.Database.Host, "database", cfg.Journal.Database.Name)
		}
	}

	switch len(stores) {
	case 0:
		return nil
	case 1:
		return stores[0]
	default:
		return journal.NewCompositeStore(stores...)
	}
}
