package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cabs-service/internal/app"
	"cabs-service/internal/config"
	"cabs-service/internal/events"
	"cabs-service/internal/logging"
	"cabs-service/internal/observability"
	"cabs-service/internal/storage"
	"cabs-service/internal/tracking"
	"cabs-service/migrations"
	"cabs-service/pkg/db"
	"cabs-service/pkg/jwt"
	"cabs-service/pkg/kafka"
	rredis "cabs-service/pkg/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	logger := logging.NewLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("cabs-service stopped", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	// ── 1. JWT secret ──
	if err := jwt.Init(cfg.JWTSecret); err != nil {
		return err
	}

	// ── 2. Device storage ──
	stores, closeStores, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStores()

	// ── 3. Kafka ──
	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaClient := kafka.NewClient(cfg.KafkaBrokers)
		defer kafkaClient.Close()
		if err := kafkaClient.EnsureTopics(ctx, cfg.ConnAttempts, events.Topics...); err != nil {
			return err
		}
		publisher = kafkaClient
	} else {
		logger.Info("KAFKA_BROKERS not set, events disabled")
	}

	// ── 4. Devices and live views ──
	var reg *app.Registry
	wsHub := tracking.NewHub(func(id string) (any, bool) {
		a, ok := reg.Lookup(id)
		if !ok {
			return nil, false
		}
		return a.View(), true
	}, logger)

	reg = app.NewRegistry(stores, app.Options{
		ShowDelay: cfg.ViewShowDelay,
		HideDelay: cfg.ViewHideDelay,
		Events:    events.NewEmitter(publisher, logger),
		OnChange:  func(v app.View) { wsHub.Broadcast(v.DeviceID, v) },
		Logger:    logger,
	})
	defer reg.Close()
	handler := app.NewHandler(reg, logger)

	// ── 5. HTTP router ──
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(observability.Middleware(logger))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","service":"cabs-service"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Mount("/devices", handler.DeviceRoutes())
	r.Mount("/app", handler.Routes())
	r.Mount("/ws", wsHub.Routes())

	// ── 6. Start server ──
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("cabs-service listening", "addr", cfg.HTTPAddr, "store", cfg.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// ── 7. Graceful shutdown ──
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	shutCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutCtx)
}

// openStores connects the configured backend and returns its per-device
// factory plus a cleanup func.
func openStores(ctx context.Context, cfg config.Config) (storage.Factory, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendRedis:
		client, err := rredis.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.ConnAttempts)
		if err != nil {
			return nil, nil, err
		}
		return storage.RedisFactory(client), func() { client.Close() }, nil

	case config.BackendPostgres:
		database, err := db.Connect(ctx, cfg.DatabaseURL, cfg.ConnAttempts)
		if err != nil {
			return nil, nil, err
		}
		if err := database.RunMigrations(ctx, migrations.FS); err != nil {
			database.Close()
			return nil, nil, err
		}
		return storage.PostgresFactory(database.Pool), database.Close, nil

	default:
		return storage.MemoryFactory(), func() {}, nil
	}
}
