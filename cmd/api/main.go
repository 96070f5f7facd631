package main

import (
	"context"
	"errors"
	"fmt"
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

	"github.com/mknind/backoffice/api/controllers"
	"github.com/mknind/backoffice/api/routes"
	"github.com/mknind/backoffice/internal/cart"
	"github.com/mknind/backoffice/internal/catalog"
	"github.com/mknind/backoffice/internal/invoices"
	"github.com/mknind/backoffice/internal/orders"
	"github.com/mknind/backoffice/internal/resolver"
	"github.com/mknind/backoffice/internal/support"
	"github.com/mknind/backoffice/pkg/config"
	"github.com/mknind/backoffice/pkg/db"
	"github.com/mknind/backoffice/pkg/logger"
	"github.com/mknind/backoffice/pkg/metrics"
	"github.com/mknind/backoffice/pkg/migrate"
	pkgmongo "github.com/mknind/backoffice/pkg/mongo"
	"github.com/mknind/backoffice/pkg/redis"
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
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var closers []io.Closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			err = multierr.Append(err, closers[i].Close())
		}
	}()

	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = db.DriverSQLite
	}
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("bootstrap database: %w", err)
	}
	closers = append(closers, dbClient)
	deps := controllers.Dependencies{"db": dbClient}

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return fmt.Errorf("run dev migrations: %w", err)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return fmt.Errorf("bootstrap redis: %w", err)
		}
		closers = append(closers, redisClient)
		deps["redis"] = redisClient
	}

	catalogRepo := catalog.NewRepository(dbClient.DB())
	if cfg.Catalog.Store == config.CatalogStoreMongo {
		mongoClient, err := pkgmongo.New(ctx, cfg.Mongo, logg)
		if err != nil {
			return fmt.Errorf("bootstrap mongo: %w", err)
		}
		closers = append(closers, mongoClient)
		deps["mongo"] = mongoClient
		if err := catalog.EnsureIndexes(ctx, mongoClient); err != nil {
			return err
		}
		catalogRepo = catalog.NewMongoRepository(mongoClient)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	orderMetrics := metrics.NewOrderMetrics(registry)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	counter, err := buildCounter(cfg.Invoice, dbClient, redisClient)
	if err != nil {
		return err
	}

	ordersRepo := orders.NewRepository(dbClient.DB())
	sequencer, err := invoices.NewSequencer(invoices.SequencerParams{
		Prefix:  cfg.Invoice.Prefix,
		Counter: counter,
		Source:  ordersRepo,
		Logger:  logg,
		Metrics: orderMetrics,
	})
	if err != nil {
		return fmt.Errorf("create invoice sequencer: %w", err)
	}

	res := resolver.New(orderMetrics)

	ordersSvc, err := orders.NewService(orders.ServiceParams{
		Repo:        ordersRepo,
		Tx:          dbClient,
		Catalog:     catalogRepo,
		Sequencer:   sequencer,
		Resolver:    res,
		Logger:      logg,
		Metrics:     orderMetrics,
		MaxAttempts: cfg.Invoice.MaxAttempts,
	})
	if err != nil {
		return fmt.Errorf("create orders service: %w", err)
	}

	cartSvc, err := cart.NewService(cart.ServiceParams{
		Repo:     cart.NewRepository(dbClient.DB()),
		Catalog:  catalogRepo,
		Resolver: res,
		Logger:   logg,
		Metrics:  orderMetrics,
	})
	if err != nil {
		return fmt.Errorf("create cart service: %w", err)
	}

	catalogSvc, err := catalog.NewService(catalog.ServiceParams{Repo: catalogRepo})
	if err != nil {
		return fmt.Errorf("create catalog service: %w", err)
	}

	supportSvc, err := support.NewService(support.ServiceParams{
		Repo:      support.NewRepository(dbClient.DB()),
		Customers: catalogRepo,
		Logger:    logg,
	})
	if err != nil {
		return fmt.Errorf("create support service: %w", err)
	}

	// keep the interface nil when redis is off so idempotency is skipped
	var idempotencyStore redis.IdempotencyStore
	if redisClient != nil {
		idempotencyStore = redisClient
	}

	addr := ":" + cfg.App.Port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":             cfg.App.Env,
		"addr":            addr,
		"invoice_counter": counter.Kind(),
		"catalog_store":   cfg.Catalog.Store,
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, deps, idempotencyStore, registry, httpMetrics, ordersSvc, cartSvc, catalogSvc, supportSvc),
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

func buildCounter(cfg config.InvoiceConfig, dbClient *db.Client, redisClient *redis.Client) (invoices.Counter, error) {
	switch cfg.Counter {
	case config.InvoiceCounterRedis:
		if redisClient == nil {
			return nil, fmt.Errorf("%s=redis requires redis to be configured", config.EnvInvoiceCounter)
		}
		return invoices.NewRedisCounter(redisClient), nil
	case config.InvoiceCounterDB:
		return invoices.NewDBCounter(dbClient.DB()), nil
	default:
		return invoices.LatestCounter{}, nil
	}
}
