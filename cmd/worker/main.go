package main

import (
	"context"
	"errors"
	"flag"
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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/mknind/backoffice/internal/catalog"
	"github.com/mknind/backoffice/internal/cron"
	"github.com/mknind/backoffice/internal/orders"
	"github.com/mknind/backoffice/internal/resolver"
	"github.com/mknind/backoffice/pkg/config"
	"github.com/mknind/backoffice/pkg/db"
	"github.com/mknind/backoffice/pkg/logger"
	"github.com/mknind/backoffice/pkg/metrics"
	"github.com/mknind/backoffice/pkg/migrate"
	pkgmongo "github.com/mknind/backoffice/pkg/mongo"
	"github.com/mknind/backoffice/pkg/redis"
)

const serviceName = "worker"

func main() {
	runOnce := flag.String("run", "", "run the named job once and exit")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: serviceName})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg, *runOnce); err != nil {
		logg.Error(context.Background(), "worker stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(context.Background(), "worker shutting down gracefully")
}

func run(cfg *config.Config, logg *logger.Logger, runOnce string) (err error) {
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

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return fmt.Errorf("run dev migrations: %w", err)
	}

	var lock cron.Lock = &cron.LocalLock{}
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return fmt.Errorf("bootstrap redis: %w", err)
		}
		closers = append(closers, redisClient)
		lock, err = cron.NewRedisLock(redisClient, redisClient.LockKey(serviceName+":"+cfg.App.Env), cfg.Worker.LockTTL)
		if err != nil {
			return fmt.Errorf("create worker lock: %w", err)
		}
	}

	catalogRepo := catalog.NewRepository(dbClient.DB())
	if cfg.Catalog.Store == config.CatalogStoreMongo {
		mongoClient, err := pkgmongo.New(ctx, cfg.Mongo, logg)
		if err != nil {
			return fmt.Errorf("bootstrap mongo: %w", err)
		}
		closers = append(closers, mongoClient)
		catalogRepo = catalog.NewMongoRepository(mongoClient)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	auditJob, err := cron.NewReferenceAuditJob(cron.ReferenceAuditJobParams{
		Logger:   logg,
		Orders:   orders.NewRepository(dbClient.DB()),
		Catalog:  catalogRepo,
		Resolver: resolver.New(metrics.NewOrderMetrics(registry)),
	})
	if err != nil {
		return fmt.Errorf("create reference audit job: %w", err)
	}

	jobs, err := cron.NewRegistry(auditJob)
	if err != nil {
		return err
	}
	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: jobs,
		Lock:     lock,
		Metrics:  metrics.NewJobMetrics(registry),
		Interval: cfg.Worker.AuditInterval,
	})
	if err != nil {
		return fmt.Errorf("create cron service: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{
		"env":            cfg.App.Env,
		"audit_interval": cfg.Worker.AuditInterval.String(),
		"catalog_store":  cfg.Catalog.Store,
	})
	if runOnce != "" {
		return service.RunJob(ctx, runOnce)
	}
	logg.Info(ctx, "starting worker")

	server := &http.Server{
		Addr:              ":" + cfg.Worker.MetricsPort,
		Handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := service.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
