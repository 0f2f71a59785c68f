package main

import (
	"context"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmehra2102/artisan-marketplace/internal/config"
	notifapp "github.com/dmehra2102/artisan-marketplace/internal/notification/application"
	notifkafka "github.com/dmehra2102/artisan-marketplace/internal/notification/infrastructure/kafka"
	notifpg "github.com/dmehra2102/artisan-marketplace/internal/notification/infrastructure/postgres"
	"github.com/dmehra2102/artisan-marketplace/pkg/database"
	"github.com/dmehra2102/artisan-marketplace/pkg/health"
	"github.com/dmehra2102/artisan-marketplace/pkg/idempotency"
	"github.com/dmehra2102/artisan-marketplace/pkg/logging"
	"github.com/dmehra2102/artisan-marketplace/pkg/shutdown"
	"github.com/dmehra2102/artisan-marketplace/pkg/tracing"
)

const serviceName = "notification-service"

func main() {
	cfg, err := config.Load(serviceName, ".")
	if err != nil {
		logging.New("info").Error("config load failed", "err", err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel).With("service", serviceName)

	// "probe" checks a running instance over grpc health and exits.
	if len(os.Args) > 1 && os.Args[1] == "probe" {
		probeCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := health.Probe(probeCtx, cfg.GRPCAddr); err != nil {
			log.Error("probe failed", "addr", cfg.GRPCAddr, "err", err)
			os.Exit(1)
		}
		return
	}

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	tp, err := tracing.Init(ctx, serviceName, cfg.OTLPEndpoint, log)
	if err != nil {
		log.Error("otel init failed", "err", err)
		os.Exit(1)
	}
	defer func() { _ = tp.Shutdown(context.WithoutCancel(ctx)) }()

	pool, err := database.Connect(ctx, cfg.PGURL)
	if err != nil {
		log.Error("pg connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()
	idem := idempotency.NewStore(rdb, cfg.IdempotencyTTL)

	gs, err := health.Run(ctx, log, cfg.GRPCAddr, pool, 5*time.Second)
	if err != nil {
		log.Error("grpc server failed", "err", err)
		os.Exit(1)
	}
	defer gs.GracefulStop()

	svc := notifapp.NewService(log, notifpg.NewRepository(log, pool))
	reader := notifkafka.NewReader([]string{cfg.KafkaAddr}, cfg.OrderEventsTopic, cfg.ConsumerGroup)
	consumer := notifkafka.NewConsumer(log, reader, svc, idem)

	log.Info("consuming", "topic", cfg.OrderEventsTopic, "group", cfg.ConsumerGroup)
	if err := consumer.Run(ctx); err != nil {
		log.Error("consumer stopped with error", "err", err)
	}
	log.Info("notification-service shutdown complete")
}
