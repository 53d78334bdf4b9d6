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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/adriancampa/storeloom-backend/api/routes"
	"github.com/adriancampa/storeloom-backend/internal/auth"
	"github.com/adriancampa/storeloom-backend/internal/cart"
	"github.com/adriancampa/storeloom-backend/internal/checkout"
	"github.com/adriancampa/storeloom-backend/internal/exports"
	"github.com/adriancampa/storeloom-backend/internal/notifications"
	"github.com/adriancampa/storeloom-backend/internal/orders"
	"github.com/adriancampa/storeloom-backend/internal/products"
	"github.com/adriancampa/storeloom-backend/internal/tenants"
	stripewebhook "github.com/adriancampa/storeloom-backend/internal/webhooks/stripe"
	"github.com/adriancampa/storeloom-backend/pkg/config"
	"github.com/adriancampa/storeloom-backend/pkg/db"
	"github.com/adriancampa/storeloom-backend/pkg/logger"
	"github.com/adriancampa/storeloom-backend/pkg/metrics"
	"github.com/adriancampa/storeloom-backend/pkg/migrate"
	"github.com/adriancampa/storeloom-backend/pkg/redis"
	"github.com/adriancampa/storeloom-backend/pkg/stripe"
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
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	var stripeClient *stripe.Client
	if cfg.Stripe.APIKey != "" {
		stripeClient, err = stripe.NewClient(context.Background(), cfg.Stripe, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap stripe", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "stripe api key not configured, payment webhooks disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	gormDB := dbClient.DB()
	usersRepo := auth.NewRepository(gormDB)
	tenantsRepo := tenants.NewRepository(gormDB)
	productsRepo := products.NewRepository(gormDB)
	cartRepo := cart.NewRepository(gormDB)
	ordersRepo := orders.NewRepository(gormDB)
	notificationsRepo := notifications.NewRepository(gormDB)
	paymentEventsRepo := stripewebhook.NewEventRepository(gormDB)

	tenantsSvc, err := tenants.NewService(tenantsRepo, dbClient, logg)
	exitOn(logg, "tenants service", err)

	authSvc, err := auth.NewService(usersRepo, tenantsSvc, cfg.JWT, cfg.Password, logg)
	exitOn(logg, "auth service", err)

	productsSvc, err := products.NewService(productsRepo, logg)
	exitOn(logg, "products service", err)

	cartSvc, err := cart.NewService(cartRepo, productsRepo, logg)
	exitOn(logg, "cart service", err)

	ordersSvc, err := orders.NewService(ordersRepo, dbClient, logg)
	exitOn(logg, "orders service", err)

	checkoutSvc, err := checkout.NewService(cartRepo, productsRepo, ordersRepo, dbClient, cfg.Checkout, logg)
	exitOn(logg, "checkout service", err)

	notificationsSvc, err := notifications.NewService(notificationsRepo, logg)
	exitOn(logg, "notifications service", err)

	exportsSvc, err := exports.NewService(ordersRepo)
	exitOn(logg, "exports service", err)

	webhookGuard, err := stripewebhook.NewIdempotencyGuard(redisClient)
	exitOn(logg, "webhook guard", err)

	webhookSvc, err := stripewebhook.NewService(paymentEventsRepo, ordersSvc, webhookGuard, logg)
	exitOn(logg, "webhook service", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		ReadHeaderTimeout: 10 * time.Second,
		Handler: routes.NewRouter(routes.Deps{
			Config:        cfg,
			Logger:        logg,
			DB:            dbClient,
			Redis:         redisClient,
			StripeClient:  stripeClient,
			HTTPMetrics:   httpMetrics,
			Registry:      registry,
			Auth:          authSvc,
			Tenants:       tenantsSvc,
			Products:      productsSvc,
			Cart:          cartSvc,
			Checkout:      checkoutSvc,
			Orders:        ordersSvc,
			Notifications: notificationsSvc,
			Exports:       exportsSvc,
			StripeEvents:  webhookSvc,
		}),
	}

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stopCtx.Done():
		logg.Info(ctx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var closeErr error
	closeErr = multierr.Append(closeErr, server.Shutdown(shutdownCtx))
	closeErr = multierr.Append(closeErr, redisClient.Close())
	closeErr = multierr.Append(closeErr, dbClient.Close())
	if closeErr != nil {
		logg.Error(ctx, "shutdown finished with errors", closeErr)
		os.Exit(1)
	}
	logg.Info(ctx, "api server stopped")
}

func exitOn(logg *logger.Logger, what string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+what, err)
	os.Exit(1)
}
