package jobs

import (
	"context"

	"github.com/hibiken/asynq"

	"github.com/horizon-travel/horizon/internal/mail"
)

// QueueDispatcher is a mail.Dispatcher that enqueues delivery instead of
// sending inline. Enqueueing counts as success; the worker handles retries.
// Callers that must confirm delivery before proceeding use the SMTP
// dispatcher directly.
type QueueDispatcher struct {
	client *Client
}

// NewQueueDispatcher wraps a jobs client as a dispatcher.
func NewQueueDispatcher(client *Client) *QueueDispatcher {
	return &QueueDispatcher{client: client}
}

// Send enqueues the message on the default queue.
func (d *QueueDispatcher) Send(ctx context.Context, msg mail.Message) (mail.Result, error) {
	info, err := d.client.EnqueueSendEmail(ctx, SendEmailPayload{
		To:      msg.To,
		Subject: msg.Subject,
		Body:    msg.HTMLBody,
	})
	if err != nil {
		return mail.Result{Success: false, Err: err.Error()}, err
	}
	return mail.Result{Success: true, MessageID: info.ID}, nil
}

// Client submits jobs to the queue.
type Client struct {
	client *asynq.Client
}

// NewClient constructs an Asynq client.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// EnqueueSendEmail enqueues a send-email task.
func (c *Client) EnqueueSendEmail(ctx context.Context, payload SendEmailPayload) (*asynq.TaskInfo, error) {
	task, err := NewSendEmailTask(payload)
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}
