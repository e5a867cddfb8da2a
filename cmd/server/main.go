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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"
	"golang.org/x/sync/errgroup"

	"valueconverting/internal/authz"
	httpapi "valueconverting/internal/http"
	jwttoken "valueconverting/internal/jwt_token"
	"valueconverting/internal/platform/config"
	"valueconverting/internal/platform/httpserver"
	"valueconverting/internal/platform/kafka"
	"valueconverting/internal/platform/kafka/consumer"
	"valueconverting/internal/platform/kafka/requestreply"
	"valueconverting/internal/platform/logger"
	platformmetrics "valueconverting/internal/platform/metrics"
	"valueconverting/internal/platform/postgres"
	redisclient "valueconverting/internal/platform/redis"
	"valueconverting/internal/valueconverting/handler"
	"valueconverting/internal/valueconverting/lookup"
	vcmetrics "valueconverting/internal/valueconverting/metrics"
	"valueconverting/internal/valueconverting/service"
	"valueconverting/internal/valueconverting/store"
)

// main wires high-level dependencies and owns the process lifecycle. Business
// logic lives in the internal/valueconverting packages.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("value converting service stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("value converting service stopped")
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := platformmetrics.New(reg)
	vcMetrics := vcmetrics.New(reg)
	health := map[string]httpapi.HealthCheck{}

	backend, db, err := openStore(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
		health["database"] = db.PingContext
	}

	var recordStore service.Store = backend
	rdb, err := redisclient.New(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if rdb != nil {
		defer rdb.Close()
		health["redis"] = rdb.Health
		recordStore = store.NewCached(backend, rdb.Client, cfg.Redis.CacheTTL,
			store.WithCacheLogger(log),
			store.WithCacheMetrics(vcMetrics),
		)
		log.Info("lookup cache enabled", "ttl", cfg.Redis.CacheTTL.String())
	}

	svc := service.New(recordStore,
		service.WithLogger(log),
		service.WithMetrics(vcMetrics),
	)
	gate := authz.NewGate(cfg.Server.UserPermissionsEnabled)
	log.Info("access control", "user_permissions_enabled", gate.Enabled())

	jwtService := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer, cfg.Auth.JWTAudience)
	router := httpapi.NewRouter(httpapi.Deps{
		Logger:    log,
		Validator: jwttoken.NewJWTServiceAdapter(jwtService),
		Metrics:   httpMetrics,
		Gatherer:  reg,
		Health:    health,
		Resources: []httpapi.Routes{handler.New(svc, gate, log, vcMetrics)},
	})
	srv := httpserver.New(cfg.Server.Addr, router)

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Kafka.Enabled() {
		requests, producer, err := startBridge(gctx, cfg.Kafka, svc, vcMetrics, log)
		if err != nil {
			return err
		}
		defer producer.Close()
		g.Go(func() error {
			return requests.Run(gctx)
		})
	} else {
		log.Warn("KAFKA_BROKERS not set, broker lookups disabled")
	}

	g.Go(func() error {
		log.Info("starting value converting service", "addr", cfg.Server.Addr, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// openStore selects Postgres when a URL is configured, else the in-memory
// store. db is nil for the in-memory store.
func openStore(ctx context.Context, cfg config.Database, log *slog.Logger) (store.Backend, *sql.DB, error) {
	if cfg.URL == "" {
		log.Warn("DATABASE_URL not set, using in-memory store")
		return store.NewInMemory(), nil, nil
	}
	db, err := postgres.Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return store.NewPostgres(db), db, nil
}

// startBridge provisions the request topic and builds the consumer. The
// topic is provisioned before any worker starts.
func startBridge(ctx context.Context, cfg config.Kafka, finder lookup.Finder, m *vcmetrics.Metrics, log *slog.Logger) (*consumer.Consumer, *kgo.Client, error) {
	base := kafka.ClientOptions(cfg)

	adminClient, err := kgo.NewClient(base...)
	if err != nil {
		return nil, nil, fmt.Errorf("create kafka admin client: %w", err)
	}
	admin := kadm.NewClient(adminClient)
	topic, err := lookup.Provision(ctx, admin, cfg, log)
	admin.Close()
	if err != nil {
		return nil, nil, fmt.Errorf("provision request topic: %w", err)
	}

	producer, err := kgo.NewClient(append(base, kgo.RecordPartitioner(requestreply.ReplyPartitioner()))...)
	if err != nil {
		return nil, nil, fmt.Errorf("create reply producer: %w", err)
	}

	requests, err := consumer.New(consumer.Config{
		Group:         cfg.ApplicationID,
		Topics:        []string{topic},
		ClientOptions: base,
	}, lookup.NewBridge(finder, producer, log, m), log)
	if err != nil {
		producer.Close()
		return nil, nil, err
	}
	log.Info("broker lookups enabled", "topic", topic, "group", cfg.ApplicationID)
	return requests, producer, nil
}
