package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ariefcatur/storefront-orders/internal/config"
	"github.com/ariefcatur/storefront-orders/internal/events"
	"github.com/ariefcatur/storefront-orders/internal/httpx"
	kafkax "github.com/ariefcatur/storefront-orders/internal/kafka"
	"github.com/ariefcatur/storefront-orders/internal/logger"
	"github.com/ariefcatur/storefront-orders/internal/orders"
	"github.com/ariefcatur/storefront-orders/internal/payment"
	"github.com/ariefcatur/storefront-orders/internal/postgres"
	"github.com/ariefcatur/storefront-orders/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logger.New(cfg.ServiceName, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN, cfg.PostgresMaxConns)
	if err != nil {
		log.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()
	if cfg.PostgresAutoMigrate {
		if err := postgres.Migrate(ctx, db); err != nil {
			log.Fatal("migrate", zap.Error(err))
		}
	}

	// Redis detail cache, optional
	var cache orders.DetailCache
	if cfg.RedisAddr != "" {
		rdb, err := redisx.Connect(ctx, cfg.RedisAddr)
		if err != nil {
			log.Warn("redis unavailable, order cache disabled", zap.Error(err))
		} else {
			defer rdb.Close()
			cache = redisx.NewOrderCache(rdb, cfg.OrderCacheTTL)
		}
	}

	// Kafka producer, optional
	var publisher orders.Publisher
	var prod *kafkax.Producer
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		prod = kafkax.NewProducer(brokers, events.TopicOrderPlaced, 1024, log)
		prod.Start(ctx)
		publisher = kafkax.NewOrderEvents(prod, cfg.ServiceName)
	}

	pricing := orders.Pricing{TrustClientTotal: cfg.TrustClientTotal}
	placement := orders.NewPlacementService(orders.NewPgTransactor(db), pricing, publisher, log)
	query := orders.NewQueryService(&orders.Repo{DB: db}, cache, log)

	router := httpx.NewRouter(log, 2*cfg.RequestTimeout+cfg.PaymentDelay)
	oh := &httpx.OrdersHandler{
		Placer:      placement,
		Query:       query,
		Payments:    payment.NewSimulator(cfg.PaymentDelay),
		Pricing:     pricing,
		TokenSecret: []byte(cfg.JWTSecret),
		Timeout:     cfg.RequestTimeout + cfg.PaymentDelay,
		Log:         log,
	}
	oh.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Info("http listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	if prod != nil {
		prod.Close()
		prod.WaitClosed()
	}
}
