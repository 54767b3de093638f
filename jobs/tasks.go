package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/horizon-travel/horizon/internal/jobs"
	"github.com/horizon-travel/horizon/internal/mail"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
	// TaskTypeExpiryDigest is the scheduled digest of quotations expiring soon.
	TaskTypeExpiryDigest = "quotations:expiry_digest"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// SendEmailJob delivers queued emails through the configured dispatcher.
type SendEmailJob struct {
	Dispatcher mail.Dispatcher
	Logger     *slog.Logger
	Metrics    *jobmetrics.Metrics
}

// Handle processes TaskTypeSendEmail tasks. Delivery failures are returned so
// Asynq retries with backoff; a malformed payload is dropped instead.
func (j *SendEmailJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Dispatcher == nil {
		return errors.New("send email: handler not configured")
	}
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.Metrics.Track(TaskTypeSendEmail)
	res, err := j.Dispatcher.Send(ctx, mail.Message{
		To:       payload.To,
		Subject:  payload.Subject,
		HTMLBody: payload.Body,
	})
	if err == nil && !res.Success {
		err = errors.New(res.Err)
	}
	if err != nil {
		j.Logger.Warn("email delivery failed",
			slog.String("to", payload.To),
			slog.String("subject", payload.Subject),
			slog.Any("error", err),
		)
		return tracker.End(err)
	}

	j.Logger.Info("email delivered",
		slog.String("to", payload.To),
		slog.String("message_id", res.MessageID),
	)
	return tracker.End(nil)
}
