package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/foodlink-backend/api/routes"
	"github.com/angelmondragon/foodlink-backend/internal/announcements"
	"github.com/angelmondragon/foodlink-backend/internal/catalog"
	"github.com/angelmondragon/foodlink-backend/internal/chat"
	"github.com/angelmondragon/foodlink-backend/internal/checkout"
	"github.com/angelmondragon/foodlink-backend/internal/identity"
	"github.com/angelmondragon/foodlink-backend/internal/inquiries"
	"github.com/angelmondragon/foodlink-backend/internal/orders"
	"github.com/angelmondragon/foodlink-backend/internal/payments"
	"github.com/angelmondragon/foodlink-backend/internal/wholesalers"
	"github.com/angelmondragon/foodlink-backend/pkg/config"
	"github.com/angelmondragon/foodlink-backend/pkg/db"
	"github.com/angelmondragon/foodlink-backend/pkg/events"
	"github.com/angelmondragon/foodlink-backend/pkg/gemini"
	"github.com/angelmondragon/foodlink-backend/pkg/logger"
	"github.com/angelmondragon/foodlink-backend/pkg/metrics"
	"github.com/angelmondragon/foodlink-backend/pkg/migrate"
	"github.com/angelmondragon/foodlink-backend/pkg/paygate"
	"github.com/angelmondragon/foodlink-backend/pkg/pubsub"
	"github.com/angelmondragon/foodlink-backend/pkg/redis"
	"github.com/angelmondragon/foodlink-backend/pkg/storage"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var closers []io.Closer
	closeAll := func() {
		var errs error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = multierr.Append(errs, closers[i].Close())
		}
		if errs != nil {
			logg.Error(context.Background(), "error releasing resources", errs)
		}
	}
	fail := func(msg string, err error) {
		logg.Error(ctx, msg, err)
		closeAll()
		os.Exit(1)
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		fail("failed to bootstrap database", err)
	}
	closers = append(closers, dbClient)

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		fail("failed to run dev migrations", err)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		fail("failed to bootstrap redis", err)
	}
	closers = append(closers, redisClient)

	bucket, err := storage.Open(ctx, cfg.Storage, logg)
	if err != nil {
		fail("failed to open object storage", err)
	}
	closers = append(closers, bucket)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	upstreamMetrics := metrics.NewUpstreamMetrics(registry)
	paymentMetrics := metrics.NewPaymentMetrics(registry)

	var publisher events.Publisher = events.Noop{}
	if cfg.PubSub.Enabled() {
		psClient, err := pubsub.NewClient(ctx, cfg.PubSub, logg)
		if err != nil {
			fail("failed to bootstrap pubsub", err)
		}
		closers = append(closers, psClient)
		topicPublisher, err := events.NewTopicPublisher(psClient, cfg.PubSub.DomainTopic, logg)
		if err != nil {
			fail("failed to create event publisher", err)
		}
		publisher = topicPublisher
	} else {
		logg.Warn(ctx, "pubsub not configured, domain events are discarded")
	}

	var generator gemini.Generator
	aiClient, err := gemini.NewClient(ctx, cfg.AI, nil, logg, upstreamMetrics)
	switch {
	case errors.Is(err, gemini.ErrNotConfigured):
		logg.Warn(ctx, "AI provider not configured, chat and drafts are disabled")
	case err != nil:
		fail("failed to create AI client", err)
	default:
		generator = aiClient
	}

	gateway, err := paygate.NewClient(cfg.Payments, nil, logg, upstreamMetrics)
	if err != nil {
		fail("failed to create payment gateway client", err)
	}
	feeRate, err := cfg.Payments.FeeRate()
	if err != nil {
		fail("invalid platform fee rate", err)
	}
	payoutLocation, err := cfg.Payments.Location()
	if err != nil {
		fail("invalid payments timezone", err)
	}

	conn := dbClient.DB()
	ordersRepo := orders.NewRepository(conn)
	catalogRepo := catalog.NewRepository(conn)

	resolver, err := identity.NewService(identity.NewRepository(conn))
	if err != nil {
		fail("failed to create identity resolver", err)
	}
	catalogService, err := catalog.NewService(catalogRepo, generator, logg)
	if err != nil {
		fail("failed to create catalog service", err)
	}
	checkoutService, err := checkout.NewService(dbClient, catalogRepo, ordersRepo, logg)
	if err != nil {
		fail("failed to create checkout service", err)
	}
	paymentsService, err := payments.NewService(dbClient, payments.NewRepository(conn), ordersRepo, gateway, publisher, paymentMetrics, logg,
		payments.Settings{FeeRate: feeRate, PayoutBusinessDays: cfg.Payments.PayoutBusinessDays, Location: payoutLocation})
	if err != nil {
		fail("failed to create payments service", err)
	}
	ordersService, err := orders.NewService(ordersRepo, dbClient, publisher, logg)
	if err != nil {
		fail("failed to create orders service", err)
	}
	inquiriesService, err := inquiries.NewService(inquiries.NewRepository(conn), bucket, generator, publisher, logg)
	if err != nil {
		fail("failed to create inquiries service", err)
	}
	chatService, err := chat.NewService(generator, logg)
	if err != nil {
		fail("failed to create chat service", err)
	}
	announcementsService, err := announcements.NewService(announcements.NewRepository(conn))
	if err != nil {
		fail("failed to create announcements service", err)
	}
	wholesalersService, err := wholesalers.NewService(wholesalers.NewRepository(conn), logg)
	if err != nil {
		fail("failed to create wholesalers service", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, bucket, registry, resolver,
			catalogService, checkoutService, paymentsService, ordersService,
			inquiriesService, chatService, announcementsService, wholesalersService),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			fail("api server stopped unexpectedly", err)
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(shutdownCtx, "graceful shutdown failed", err)
	}
	closeAll()
	logg.Info(shutdownCtx, "api server stopped")
}
