package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/horizon-travel/horizon/internal/app"
	"github.com/horizon-travel/horizon/internal/catalog"
	"github.com/horizon-travel/horizon/internal/invoices"
	"github.com/horizon-travel/horizon/internal/mail"
	"github.com/horizon-travel/horizon/internal/observability"
	"github.com/horizon-travel/horizon/internal/platform/cache"
	"github.com/horizon-travel/horizon/internal/platform/db"
	"github.com/horizon-travel/horizon/internal/quotations"
	"github.com/horizon-travel/horizon/internal/sequence"
	"github.com/horizon-travel/horizon/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, catalog cache disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	catalogService := catalog.NewService(catalog.NewRepository(pool), redisClient, cfg.CatalogCacheTTL, logger)
	numbers := sequence.NewPostgresGenerator(pool)
	smtp := mail.NewSMTPDispatcher(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, cfg.MailTimeout)

	jobsClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()
	// Customer-facing sends stay synchronous so a relay failure blocks the
	// transition; best-effort notifications go through the queue.
	notifier := jobs.NewQueueDispatcher(jobsClient)

	quotationService := quotations.NewService(quotations.ServiceParams{
		Repo:          quotations.NewRepository(pool),
		Catalog:       catalogService,
		Numbers:       numbers,
		Sender:        smtp,
		Notifier:      notifier,
		Metrics:       metrics,
		Logger:        logger,
		OperatorEmail: cfg.OperatorEmail,
		SendTimeout:   cfg.MailTimeout,
	})
	quotationHandler := quotations.NewHandler(logger, quotationService)

	invoiceService := invoices.NewService(invoices.ServiceParams{
		Repo:        invoices.NewRepository(pool),
		Quotations:  quotationService,
		Catalog:     catalogService,
		Numbers:     numbers,
		Sender:      smtp,
		Metrics:     metrics,
		Logger:      logger,
		SendTimeout: cfg.MailTimeout,
	})
	invoiceHandler := invoices.NewHandler(logger, invoiceService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		QuotationsHandler: quotationHandler,
		InvoicesHandler:   invoiceHandler,
		JobHandler:        jobHandler,
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
