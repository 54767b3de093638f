package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/horizon-travel/horizon/internal/jobs"
	"github.com/horizon-travel/horizon/internal/mail"
	"github.com/horizon-travel/horizon/internal/quotations"
)

// expiryWindowDays is how far ahead the digest looks for open quotations
// approaching their validity date.
const expiryWindowDays = 3

// ExpiringSource lists open quotations whose validity ends inside a window.
type ExpiringSource interface {
	ListExpiring(ctx context.Context, from, until time.Time) ([]quotations.Quotation, error)
}

// ExpiryDigestJob mails the operator a daily summary of quotations that are
// about to expire, so sent offers are chased before they lapse.
type ExpiryDigestJob struct {
	Source        ExpiringSource
	Dispatcher    mail.Dispatcher
	OperatorEmail string
	Logger        *slog.Logger
	Metrics       *jobmetrics.Metrics
	clock         func() time.Time
}

// NewExpiryDigestJob initialises the digest handler.
func NewExpiryDigestJob(source ExpiringSource, dispatcher mail.Dispatcher, operatorEmail string, logger *slog.Logger, metrics *jobmetrics.Metrics) *ExpiryDigestJob {
	return &ExpiryDigestJob{
		Source:        source,
		Dispatcher:    dispatcher,
		OperatorEmail: operatorEmail,
		Logger:        logger,
		Metrics:       metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes one digest run.
func (j *ExpiryDigestJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Source == nil || j.Dispatcher == nil {
		return errors.New("expiry digest: handler not configured")
	}

	tracker := j.Metrics.Track(TaskTypeExpiryDigest)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	now := j.clock()
	until := now.AddDate(0, 0, expiryWindowDays)

	expiring, err := j.Source.ListExpiring(ctx, now, until)
	if err != nil {
		resultErr = err
		j.Logger.Error("expiry digest query failed", slog.Any("error", err))
		return resultErr
	}
	if len(expiring) == 0 {
		j.Logger.Info("expiry digest: nothing expiring", slog.Time("until", until))
		return nil
	}

	items := make([]mail.DigestItem, 0, len(expiring))
	for _, q := range expiring {
		items = append(items, mail.DigestItem{
			Number:       q.Number,
			CustomerName: q.CustomerName,
			TotalAmount:  q.TotalAmount,
			ValidUntil:   q.ValidUntil,
		})
	}

	subject, body, err := mail.ExpiryDigest(mail.DigestData{WindowDays: expiryWindowDays, Items: items})
	if err != nil {
		resultErr = err
		return resultErr
	}

	res, err := j.Dispatcher.Send(ctx, mail.Message{To: j.OperatorEmail, Subject: subject, HTMLBody: body})
	if err == nil && !res.Success {
		err = errors.New(res.Err)
	}
	if err != nil {
		resultErr = err
		j.Logger.Error("expiry digest delivery failed", slog.Any("error", err))
		return resultErr
	}

	j.Logger.Info("expiry digest sent",
		slog.Int("quotations", len(items)),
		slog.String("to", j.OperatorEmail),
	)
	return nil
}
