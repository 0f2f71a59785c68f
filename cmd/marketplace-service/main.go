package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dmehra2102/artisan-marketplace/internal/auth"
	"github.com/dmehra2102/artisan-marketplace/internal/config"
	notifapp "github.com/dmehra2102/artisan-marketplace/internal/notification/application"
	notifhttp "github.com/dmehra2102/artisan-marketplace/internal/notification/infrastructure/http"
	notifpg "github.com/dmehra2102/artisan-marketplace/internal/notification/infrastructure/postgres"
	orderapp "github.com/dmehra2102/artisan-marketplace/internal/order/application"
	orderhttp "github.com/dmehra2102/artisan-marketplace/internal/order/infrastructure/http"
	orderkafka "github.com/dmehra2102/artisan-marketplace/internal/order/infrastructure/kafka"
	orderpg "github.com/dmehra2102/artisan-marketplace/internal/order/infrastructure/postgres"
	"github.com/dmehra2102/artisan-marketplace/internal/platform/httpx"
	promoapp "github.com/dmehra2102/artisan-marketplace/internal/promotion/application"
	promohttp "github.com/dmehra2102/artisan-marketplace/internal/promotion/infrastructure/http"
	promopg "github.com/dmehra2102/artisan-marketplace/internal/promotion/infrastructure/postgres"
	"github.com/dmehra2102/artisan-marketplace/migrations"
	"github.com/dmehra2102/artisan-marketplace/pkg/database"
	"github.com/dmehra2102/artisan-marketplace/pkg/health"
	"github.com/dmehra2102/artisan-marketplace/pkg/idempotency"
	"github.com/dmehra2102/artisan-marketplace/pkg/logging"
	"github.com/dmehra2102/artisan-marketplace/pkg/outbox"
	"github.com/dmehra2102/artisan-marketplace/pkg/shutdown"
	"github.com/dmehra2102/artisan-marketplace/pkg/tracing"
)

const serviceName = "marketplace-service"

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

	if cfg.MigrateOnStart {
		if err := database.Migrate(log, migrations.FS, cfg.PGURL); err != nil {
			log.Error("migration failed", "err", err)
			os.Exit(1)
		}
	}

	pool, err := database.Connect(ctx, cfg.PGURL)
	if err != nil {
		log.Error("pg connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()
	idem := idempotency.NewStore(rdb, cfg.IdempotencyTTL)

	// Outbox relay
	writer := orderkafka.NewWriter([]string{cfg.KafkaAddr})
	defer writer.Close()
	dispatch := outbox.NewDispatcher(log, writer, cfg.OrderEventsTopic)
	relay := outbox.NewRelay(log, outbox.NewPGStore(log, pool), dispatch, serviceName+"-"+uuid.NewString()[:8])
	go func() {
		if err := relay.Run(ctx); err != nil {
			log.Error("relay stopped with error", "err", err)
		}
	}()

	// Workflows
	orders := orderapp.NewService(log,
		orderpg.NewBuyerRepository(log, pool),
		orderpg.NewCartRepository(log, pool),
		orderpg.NewProductRepository(log, pool),
		orderpg.NewOrderRepository(log, pool),
	)
	promoRepo := promopg.NewRepository(log, pool)
	promotions := promoapp.NewService(log, promoRepo, promoRepo, promoRepo, promoRepo)
	notifications := notifapp.NewService(log, notifpg.NewRepository(log, pool))

	// gRPC health
	gs, err := health.Run(ctx, log, cfg.GRPCAddr, pool, 5*time.Second)
	if err != nil {
		log.Error("grpc server failed", "err", err)
		os.Exit(1)
	}
	defer gs.GracefulStop()

	// HTTP server
	authn := auth.NewJWTProvider(cfg.JWTSecret, "artisan-marketplace")
	idemMiddleware := idempotency.Middleware(log, idem, func(r *http.Request) string {
		return auth.ActorFrom(r.Context()).String()
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httpx.RequestLogger(log))
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := pool.Ping(r.Context()); err != nil {
			httpx.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(authn))
		orderhttp.NewHandler(log, orders).Register(r, idemMiddleware)
		promohttp.NewHandler(log, promotions).Register(r)
		notifhttp.NewHandler(log, notifications).Register(r)
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := shutdown.Grace(ctx, 10*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)
	log.Info("marketplace-service shutdown complete")
}
