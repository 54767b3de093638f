package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/horizon-travel/horizon/internal/app"
	jobmetrics "github.com/horizon-travel/horizon/internal/jobs"
	"github.com/horizon-travel/horizon/internal/mail"
	"github.com/horizon-travel/horizon/internal/platform/db"
	"github.com/horizon-travel/horizon/internal/quotations"
	"github.com/horizon-travel/horizon/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	metrics := jobmetrics.NewMetrics(nil)
	smtp := mail.NewSMTPDispatcher(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, cfg.MailTimeout)

	sendEmailJob := &jobs.SendEmailJob{
		Dispatcher: smtp,
		Logger:     logger,
		Metrics:    metrics,
	}
	digestJob := jobs.NewExpiryDigestJob(
		quotations.NewRepository(pool),
		smtp,
		cfg.OperatorEmail,
		logger,
		metrics,
	)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeSendEmail, Handler: sendEmailJob.Handle},
			{Type: jobs.TaskTypeExpiryDigest, Handler: digestJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{
				Spec:    cfg.ExpiryDigestCron,
				Task:    asynq.NewTask(jobs.TaskTypeExpiryDigest, nil),
				Options: []asynq.Option{asynq.MaxRetry(3)},
			},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
