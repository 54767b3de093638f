package jobs

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/horizon-travel/horizon/internal/mail"
	"github.com/horizon-travel/horizon/internal/quotations"
)

type fakeDispatcher struct {
	messages []mail.Message
	fail     bool
	err      error
}

func (f *fakeDispatcher) Send(ctx context.Context, msg mail.Message) (mail.Result, error) {
	f.messages = append(f.messages, msg)
	if f.err != nil {
		return mail.Result{Success: false, Err: f.err.Error()}, f.err
	}
	if f.fail {
		return mail.Result{Success: false, Err: "relay refused"}, nil
	}
	return mail.Result{Success: true, MessageID: "msg-1"}, nil
}

type fakeSource struct {
	quotations []quotations.Quotation
	err        error
}

func (f *fakeSource) ListExpiring(ctx context.Context, from, until time.Time) ([]quotations.Quotation, error) {
	return f.quotations, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestSendEmailJobDelivers(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	job := &SendEmailJob{Dispatcher: dispatcher, Logger: testLogger()}

	task, err := NewSendEmailTask(SendEmailPayload{
		To:      "nuwan@example.com",
		Subject: "Your quotation",
		Body:    "<p>hello</p>",
	})
	require.NoError(t, err)

	require.NoError(t, job.Handle(t.Context(), task))
	require.Len(t, dispatcher.messages, 1)
	assert.Equal(t, "nuwan@example.com", dispatcher.messages[0].To)
	assert.Equal(t, "<p>hello</p>", dispatcher.messages[0].HTMLBody)
}

func TestSendEmailJobRetriesOnFailure(t *testing.T) {
	dispatcher := mail.DispatcherFunc(func(ctx context.Context, msg mail.Message) (mail.Result, error) {
		return mail.Result{Success: false, Err: "relay refused"}, nil
	})
	job := &SendEmailJob{Dispatcher: dispatcher, Logger: testLogger()}

	task, err := NewSendEmailTask(SendEmailPayload{To: "nuwan@example.com"})
	require.NoError(t, err)

	err = job.Handle(t.Context(), task)
	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry, "delivery failures are retried")
}

func TestSendEmailJobDropsBadPayload(t *testing.T) {
	job := &SendEmailJob{Dispatcher: &fakeDispatcher{}, Logger: testLogger()}

	err := job.Handle(t.Context(), asynq.NewTask(TaskTypeSendEmail, []byte("{broken")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestExpiryDigestSendsSummary(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	source := &fakeSource{quotations: []quotations.Quotation{
		{Number: "QT-202601-0001", CustomerName: "Nuwan Silva", TotalAmount: 1368, ValidUntil: time.Date(2026, time.January, 19, 0, 0, 0, 0, time.UTC)},
		{Number: "QT-202601-0002", CustomerName: "Amara Perera", TotalAmount: 540, ValidUntil: time.Date(2026, time.January, 20, 0, 0, 0, 0, time.UTC)},
	}}

	job := NewExpiryDigestJob(source, dispatcher, "bookings@horizon.example", testLogger(), nil)
	job.clock = func() time.Time { return time.Date(2026, time.January, 17, 8, 0, 0, 0, time.UTC) }

	require.NoError(t, job.Handle(t.Context(), asynq.NewTask(TaskTypeExpiryDigest, nil)))

	require.Len(t, dispatcher.messages, 1)
	msg := dispatcher.messages[0]
	assert.Equal(t, "bookings@horizon.example", msg.To)
	assert.Equal(t, "2 quotation(s) expiring soon", msg.Subject)
	assert.Contains(t, msg.HTMLBody, "QT-202601-0001")
	assert.Contains(t, msg.HTMLBody, "$1,368.00")
}

func TestExpiryDigestSkipsWhenEmpty(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	job := NewExpiryDigestJob(&fakeSource{}, dispatcher, "bookings@horizon.example", testLogger(), nil)

	require.NoError(t, job.Handle(t.Context(), asynq.NewTask(TaskTypeExpiryDigest, nil)))
	assert.Empty(t, dispatcher.messages, "no digest when nothing expires")
}

func TestExpiryDigestPropagatesQueryError(t *testing.T) {
	dispatcher := mail.DispatcherFunc(func(ctx context.Context, msg mail.Message) (mail.Result, error) {
		t.Fatal("no digest should be dispatched when the query fails")
		return mail.Result{}, nil
	})
	job := NewExpiryDigestJob(&fakeSource{err: errors.New("db down")}, dispatcher, "bookings@horizon.example", testLogger(), nil)

	err := job.Handle(t.Context(), asynq.NewTask(TaskTypeExpiryDigest, nil))
	assert.Error(t, err)
}
