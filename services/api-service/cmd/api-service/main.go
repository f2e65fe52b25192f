package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/Abhishek-Jatav/bookMyCare/libs/auth"
	"github.com/Abhishek-Jatav/bookMyCare/libs/db"
	"github.com/Abhishek-Jatav/bookMyCare/libs/grpcx"
	"github.com/Abhishek-Jatav/bookMyCare/libs/httpx"
	"github.com/Abhishek-Jatav/bookMyCare/libs/kafkax"
	otelx "github.com/Abhishek-Jatav/bookMyCare/libs/otel"
	"github.com/Abhishek-Jatav/bookMyCare/libs/runtime"
	"github.com/Abhishek-Jatav/bookMyCare/services/api-service/internal/config"
	"github.com/Abhishek-Jatav/bookMyCare/services/api-service/internal/handlers"
	"github.com/Abhishek-Jatav/bookMyCare/services/api-service/internal/outbox"
	"github.com/Abhishek-Jatav/bookMyCare/services/api-service/internal/service"
	"github.com/Abhishek-Jatav/bookMyCare/services/api-service/internal/storage"
	"github.com/Abhishek-Jatav/bookMyCare/services/api-service/migrations"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	logger := runtime.NewLogger(cfg.ServiceName, cfg.LogLevel)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Init(ctx, cfg.ServiceName)
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	pool, err := db.Open(ctx, cfg.DatabaseURL, db.PoolOptions{MaxConns: cfg.DBMaxConns})
	if err != nil {
		logger.Error("db connection failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.AutoMigrate {
		applied, err := db.Migrate(ctx, pool, "api-service", migrations.FS)
		if err != nil {
			logger.Error("migration failed", "err", err)
			os.Exit(1)
		}
		if len(applied) > 0 {
			logger.Info("migrations applied", "files", applied)
		}
	}

	outboxRepo := outbox.NewRepository()
	store := storage.New(pool, outboxRepo)

	publisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   cfg.KafkaBrokers,
		PollEvery: cfg.OutboxPollEvery,
		BatchSize: cfg.OutboxBatchSize,
	})
	go publisher.Run(ctx)

	signer := auth.NewHS256Signer(cfg.JWTSecret, cfg.JWTTTL, cfg.JWTIssuer)
	if cfg.JWTSecret == config.DevJWTSecret {
		logger.Warn("using the development JWT secret; set JWT_SECRET")
	}

	readyChecks := []runtime.ReadyCheck{{Name: "db", Check: db.ReadyCheck(pool)}}
	if cfg.KafkaBrokers != "" {
		readyChecks = append(readyChecks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(cfg.KafkaBrokers)})
	}

	router := handlers.NewRouter(handlers.Deps{
		Logger:       logger,
		Verifier:     signer,
		Auth:         service.NewAuthService(store, signer, cfg.BcryptCost, logger),
		Availability: service.NewAvailabilityService(store, logger),
		Bookings:     service.NewBookingService(store, logger),
		Providers:    service.NewProviderService(store),
		ReadyChecks:  readyChecks,
	})

	rateLimit, closeLimiter := rateLimiter(cfg, logger)
	defer closeLimiter()

	httpHandler := httpx.Chain(router,
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
			AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-Id"},
			MaxAge:         10 * time.Minute,
		}),
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		rateLimit,
		httpx.WithBodyLimit(cfg.BodyLimitBytes),
		httpx.WithTimeout(cfg.RequestTimeout),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "api")

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcSrv := grpcx.NewServer(logger)
	go grpcSrv.WatchReadiness(ctx, 10*time.Second, readyChecks...)
	go func() {
		if err := grpcSrv.ListenAndServe(ctx, net.JoinHostPort("", cfg.GRPCPort)); err != nil {
			logger.Error("grpc server error", "err", err)
		}
	}()

	if err := runtime.ServeHTTP(ctx, logger, srv, 10*time.Second); err != nil {
		logger.Error("http server error", "err", err)
	}
}

// rateLimiter prefers a shared Redis window when REDIS_ADDR is set.
func rateLimiter(cfg config.Config, logger *slog.Logger) (httpx.Middleware, func()) {
	if cfg.RedisAddr == "" {
		logger.Info("rate limiting enabled (in-memory)", "per_minute", cfg.RateLimitPerMinute)
		return httpx.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute).Middleware(), func() {}
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	rl := httpx.NewRedisRateLimiter(rdb, cfg.RateLimitPerMinute, time.Minute, "bookmycare:rl")
	logger.Info("rate limiting enabled (redis)", "per_minute", cfg.RateLimitPerMinute, "redis_addr", cfg.RedisAddr)
	return rl.Middleware(logger, true), func() { _ = rdb.Close() }
}
