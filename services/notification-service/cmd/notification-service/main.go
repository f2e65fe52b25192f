package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/Abhishek-Jatav/bookMyCare/libs/db"
	"github.com/Abhishek-Jatav/bookMyCare/libs/events"
	"github.com/Abhishek-Jatav/bookMyCare/libs/httpx"
	"github.com/Abhishek-Jatav/bookMyCare/libs/kafkax"
	otelx "github.com/Abhishek-Jatav/bookMyCare/libs/otel"
	"github.com/Abhishek-Jatav/bookMyCare/libs/runtime"
	"github.com/Abhishek-Jatav/bookMyCare/services/notification-service/internal/config"
	"github.com/Abhishek-Jatav/bookMyCare/services/notification-service/internal/consumer"
	"github.com/Abhishek-Jatav/bookMyCare/services/notification-service/internal/email"
	"github.com/Abhishek-Jatav/bookMyCare/services/notification-service/internal/inbox"
	"github.com/Abhishek-Jatav/bookMyCare/services/notification-service/internal/notify"
	"github.com/Abhishek-Jatav/bookMyCare/services/notification-service/internal/reminders"
	"github.com/Abhishek-Jatav/bookMyCare/services/notification-service/internal/storage"
	"github.com/Abhishek-Jatav/bookMyCare/services/notification-service/migrations"
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

	pool, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("db connection failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.AutoMigrate {
		if _, err := db.Migrate(ctx, pool, "notification-service", migrations.FS); err != nil {
			logger.Error("migration failed", "err", err)
			os.Exit(1)
		}
	}

	notificationsRepo := storage.NewRepository(pool)
	sender := email.NewSMTPSender(email.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})

	readyChecks := []runtime.ReadyCheck{{Name: "db", Check: db.ReadyCheck(pool)}}
	if cfg.KafkaBrokers != "" {
		dispatcher := notify.NewDispatcher(sender, notificationsRepo, logger)
		eventConsumer := consumer.New(logger, inbox.NewRepository(pool), consumer.Config{
			Brokers: cfg.KafkaBrokers,
			GroupID: cfg.KafkaGroupID,
			Topics:  events.Topics(),
		}, dispatcher.Handle)
		go eventConsumer.Run(ctx)
		readyChecks = append(readyChecks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(cfg.KafkaBrokers)})
	} else {
		logger.Warn("event consumer disabled (no kafka brokers configured)")
	}

	if cfg.RemindersEnabled {
		loc, _ := cfg.Location()
		sweeper := reminders.NewSweeper(notificationsRepo, sender, logger, loc)
		go func() {
			if err := sweeper.Run(ctx, cfg.ReminderSchedule); err != nil {
				logger.Error("reminder sweeper stopped", "err", err)
			}
		}()
	}

	mux := runtime.NewBaseMuxWithReady(readyChecks...)
	handler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
	)
	handler = otelhttp.NewHandler(handler, "notification")
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	if err := runtime.ServeHTTP(ctx, logger, srv, 10*time.Second); err != nil {
		logger.Error("http server error", "err", err)
	}
}
