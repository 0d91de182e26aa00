package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/tienda-backend/api/controllers"
	"github.com/angelmondragon/tienda-backend/api/routes"
	"github.com/angelmondragon/tienda-backend/internal/badges"
	"github.com/angelmondragon/tienda-backend/internal/cart"
	"github.com/angelmondragon/tienda-backend/internal/checkout"
	"github.com/angelmondragon/tienda-backend/internal/orders"
	"github.com/angelmondragon/tienda-backend/internal/payments"
	"github.com/angelmondragon/tienda-backend/internal/shares"
	"github.com/angelmondragon/tienda-backend/internal/shipments"
	"github.com/angelmondragon/tienda-backend/internal/users"
	"github.com/angelmondragon/tienda-backend/pkg/config"
	"github.com/angelmondragon/tienda-backend/pkg/db"
	"github.com/angelmondragon/tienda-backend/pkg/fcm"
	"github.com/angelmondragon/tienda-backend/pkg/instance"
	"github.com/angelmondragon/tienda-backend/pkg/logger"
	"github.com/angelmondragon/tienda-backend/pkg/mercadopago"
	"github.com/angelmondragon/tienda-backend/pkg/metrics"
	"github.com/angelmondragon/tienda-backend/pkg/migrate"
	"github.com/angelmondragon/tienda-backend/pkg/redis"
	"github.com/angelmondragon/tienda-backend/pkg/storage/gcs"
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	var closers []func() error
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			err = multierr.Append(err, closers[i]())
		}
	}()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	closers = append(closers, dbClient.Close)

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	ready := map[string]controllers.Pinger{"database": dbClient}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	orderMetrics := metrics.NewOrderMetrics(reg)
	httpMetrics := metrics.NewHTTPMetrics(reg)

	conn := dbClient.DB()
	ordersRepo := orders.NewRepository(conn)
	cartRepo := cart.NewRepository(conn)
	catalog := cart.NewCatalog(conn)
	methods := checkout.NewPaymentMethodRepository(conn)

	usersSvc, err := users.NewService(users.NewRepository(conn))
	if err != nil {
		return err
	}
	engine, err := badges.NewEngine(badges.NewRepository(conn), dbClient, cfg.Badges, orderMetrics, logg)
	if err != nil {
		return err
	}
	ordersSvc, err := orders.NewService(ordersRepo, dbClient, engine, logg)
	if err != nil {
		return err
	}

	gateway, err := mercadopago.NewClient(cfg.Gateway.AccessToken, cfg.Gateway.Currency)
	if err != nil {
		return err
	}
	paymentDeps := payments.Deps{
		Repo:       ordersRepo,
		Tx:         dbClient,
		Gateway:    gateway,
		Catalog:    catalog,
		Methods:    methods,
		Reconciler: engine,
		Metrics:    orderMetrics,
		Logger:     logg,
	}
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return err
		}
		closers = append(closers, redisClient.Close)
		ready["redis"] = redisClient

		guard, err := payments.NewCallbackGuard(redisClient, cfg.Gateway.GuardTTL)
		if err != nil {
			return err
		}
		paymentDeps.Guard = guard
	} else {
		logg.Warn(ctx, "redis not configured, gateway callbacks rely on database state only")
	}
	paymentsSvc, err := payments.NewService(paymentDeps, payments.Options{
		GatewayName: cfg.Gateway.Name,
		Timeout:     cfg.Gateway.Timeout,
		CallbackURL: strings.TrimRight(cfg.App.PublicBaseURL, "/") + "/verificar-pago",
		SuccessPage: cfg.Gateway.SuccessPage,
		PendingPage: cfg.Gateway.PendingPage,
		FailurePage: cfg.Gateway.FailurePage,
	})
	if err != nil {
		return err
	}

	checkoutSvc, err := checkout.NewService(dbClient, ordersRepo, cartRepo, catalog, methods, paymentsSvc, engine, orderMetrics, logg, checkout.Options{
		PendingRedirect: cfg.Gateway.PendingPage,
	})
	if err != nil {
		return err
	}

	notifier, err := newNotifier(ctx, cfg, usersSvc, orderMetrics, logg)
	if err != nil {
		return err
	}
	shipmentsSvc, err := newShipments(ctx, cfg, ordersRepo, dbClient, notifier, orderMetrics, logg, ready)
	if err != nil {
		return err
	}

	cartSvc, err := cart.NewService(cartRepo, catalog, dbClient)
	if err != nil {
		return err
	}
	sharesSvc, err := shares.NewService(conn, engine, logg)
	if err != nil {
		return err
	}

	handler := routes.NewRouter(cfg, logg, routes.Services{
		Checkout:  checkoutSvc,
		Payments:  paymentsSvc,
		Orders:    ordersSvc,
		Shipments: shipmentsSvc,
		Cart:      cartSvc,
		Shares:    sharesSvc,
		Badges:    engine,
		Users:     usersSvc,
	}, routes.Observability{
		Ready:       ready,
		HTTPMetrics: httpMetrics,
		Gatherer:    reg,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// newNotifier wires FCM only when push is enabled; otherwise notifications
// are counted as disabled.
func newNotifier(ctx context.Context, cfg *config.Config, usersSvc users.Service, m *metrics.OrderMetrics, logg *logger.Logger) (shipments.Notifier, error) {
	if !cfg.Push.Enabled {
		return shipments.NewPushNotifier(usersSvc, nil, m, logg)
	}
	client, err := fcm.NewClient(ctx, cfg.GCP, logg)
	if err != nil {
		return nil, err
	}
	return shipments.NewPushNotifier(usersSvc, client, m, logg)
}

// newShipments attaches the photo bucket when one is configured.
func newShipments(
	ctx context.Context,
	cfg *config.Config,
	repo orders.Repository,
	dbClient *db.Client,
	notifier shipments.Notifier,
	m *metrics.OrderMetrics,
	logg *logger.Logger,
	ready map[string]controllers.Pinger,
) (shipments.Service, error) {
	if cfg.GCS.BucketName == "" {
		logg.Warn(ctx, "gcs bucket not configured, shipment photos are discarded")
		return shipments.NewService(repo, dbClient, nil, notifier, m, logg)
	}
	bucket, err := gcs.NewClient(ctx, cfg.GCS, cfg.GCP, logg)
	if err != nil {
		return nil, err
	}
	ready["gcs"] = bucket
	return shipments.NewService(repo, dbClient, bucket, notifier, m, logg)
}
