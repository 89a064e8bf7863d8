package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ariefcatur/storefront-orders/internal/config"
	"github.com/ariefcatur/storefront-orders/internal/events"
	"github.com/ariefcatur/storefront-orders/internal/inventory"
	kafkax "github.com/ariefcatur/storefront-orders/internal/kafka"
	"github.com/ariefcatur/storefront-orders/internal/logger"
	"github.com/ariefcatur/storefront-orders/internal/postgres"
	"github.com/ariefcatur/storefront-orders/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logger.New(cfg.ServiceName+"-stockwatch", cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	brokers := cfg.Brokers()
	if len(brokers) == 0 {
		log.Fatal("KAFKA_BROKERS is empty")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// DB, read-only use
	db, err := postgres.Connect(ctx, cfg.PostgresDSN, cfg.PostgresMaxConns)
	if err != nil {
		log.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	var dedup inventory.Deduper
	if cfg.RedisAddr != "" {
		rdb, err := redisx.Connect(ctx, cfg.RedisAddr)
		if err != nil {
			log.Warn("redis unavailable, dedup disabled", zap.Error(err))
		} else {
			defer rdb.Close()
			dedup = redisx.NewDedup(rdb, "stockwatch")
		}
	}

	watcher := inventory.NewWatcher(&inventory.Ledger{DB: db}, dedup, cfg.LowStockThreshold, log)
	cons := kafkax.NewConsumer(brokers, cfg.StockwatchGroup, events.TopicOrderPlaced, cfg.StockwatchWorkers, log)

	log.Info("stockwatch consumer started",
		zap.String("group", cfg.StockwatchGroup),
		zap.String("topic", events.TopicOrderPlaced),
		zap.Int("workers", cfg.StockwatchWorkers))
	if err := cons.Start(ctx, watcher.HandleOrderPlaced); err != nil {
		log.Error("consumer exit", zap.Error(err))
	}
	log.Info("stockwatch stopped")
}
