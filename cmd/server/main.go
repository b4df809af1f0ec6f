// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal services packages.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"auditadmin/internal/audit"
	httpapi "auditadmin/internal/http"
	"auditadmin/internal/masterdata"
	"auditadmin/internal/masterdata/handler"
	mdmetrics "auditadmin/internal/masterdata/metrics"
	"auditadmin/internal/masterdata/service"
	"auditadmin/internal/masterdata/store"
	"auditadmin/internal/platform/config"
	"auditadmin/internal/platform/httpserver"
	"auditadmin/internal/platform/logger"
	platformmetrics "auditadmin/internal/platform/metrics"
	platformredis "auditadmin/internal/platform/redis"
	"auditadmin/internal/token"
)

const listCacheTTL = 5 * time.Minute

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage: PostgreSQL when configured, in-memory otherwise.
	var db *sql.DB
	if cfg.Database.URL != "" {
		var err error
		db, err = sql.Open("postgres", cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("ping database: %w", err)
		}
		defer db.Close()
		if err := store.EnsureSchema(ctx, db); err != nil {
			return err
		}
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Audit events flow through a bounded worker into Kafka when brokers are
	// configured, or into the local store otherwise.
	var sink audit.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher, err := audit.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic, log)
		if err != nil {
			return fmt.Errorf("connect kafka: %w", err)
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := kafkaPublisher.Close(flushCtx); err != nil {
				log.Warn("audit flush on shutdown failed", "error", err)
			}
		}()
		sink = kafkaPublisher
	} else {
		log.Warn("KAFKA_BROKERS not set, audit events stay in the local store")
		sink = audit.NewStorePublisher(audit.NewMemoryStore())
	}
	auditWorker := audit.NewWorker(sink, 256, log)

	httpMetrics := platformmetrics.New()
	recordMetrics := mdmetrics.New()
	jwtService := token.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience)

	handlers, err := buildHandlers(db, redisClient, auditWorker, recordMetrics, log)
	if err != nil {
		return err
	}

	healthChecks := map[string]func(context.Context) error{}
	if db != nil {
		healthChecks["database"] = db.PingContext
	}
	if redisClient != nil {
		healthChecks["redis"] = redisClient.Health
	}

	router := httpapi.NewRouter(httpapi.Deps{
		Logger:       log,
		Validator:    jwtService,
		HTTPMetrics:  httpMetrics,
		Handlers:     handlers,
		HealthChecks: healthChecks,
	})

	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting auditadmin", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := auditWorker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("auditadmin stopped")
	return nil
}

// buildHandlers constructs the store, service and handler for every entity in
// the registry. Parents are declared before children, so the store of a parent
// is always available by the time a child service needs it.
func buildHandlers(
	db *sql.DB,
	redisClient *platformredis.Client,
	publisher audit.Publisher,
	recordMetrics *mdmetrics.Metrics,
	log *slog.Logger,
) ([]httpapi.Registrar, error) {
	var hub *store.InMemoryHub
	if db == nil {
		hub = store.NewInMemoryHub()
	}

	storesByResource := make(map[string]store.Store)
	var handlers []httpapi.Registrar

	for _, desc := range masterdata.Registry() {
		var st store.Store
		if db != nil {
			st = store.NewPostgres(db, desc)
		} else {
			st = hub.For(desc)
		}
		if desc.CacheList && redisClient != nil {
			st = store.NewCached(st, redisClient.Client, desc, listCacheTTL, log)
		}
		storesByResource[desc.Resource] = st

		opts := []service.Option{
			service.WithAudit(publisher),
			service.WithMetrics(recordMetrics),
		}
		if desc.Parent != nil {
			parentStore, ok := storesByResource[desc.Parent.Resource]
			if !ok {
				return nil, fmt.Errorf("registry: %s declared before its parent %s", desc.Resource, desc.Parent.Resource)
			}
			opts = append(opts, service.WithParentStore(parentStore))
		}

		svc := service.New(desc, st, log, opts...)
		handlers = append(handlers, handler.New(svc, log))
	}
	return handlers, nil
}
