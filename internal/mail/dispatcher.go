// Package mail defines the outbound notification contract and its SMTP
// implementation. The booking core depends only on the Dispatcher interface,
// never on a specific delivery mechanism.
package mail

import "context"

// Message is one outbound HTML email.
type Message struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	HTMLBody string `json:"html_body"`
}

// Result reports the outcome of a dispatch attempt.
type Result struct {
	Success   bool   `json:"success"`
	MessageID string `json:"message_id,omitempty"`
	Err       string `json:"error,omitempty"`
}

// Dispatcher sends one message. Implementations must honour the context
// deadline; a slow mail relay must not block a booking request indefinitely.
type Dispatcher interface {
	Send(ctx context.Context, msg Message) (Result, error)
}

// DispatcherFunc adapts a function to the Dispatcher interface.
type DispatcherFunc func(ctx context.Context, msg Message) (Result, error)

// Send implements Dispatcher.
func (f DispatcherFunc) Send(ctx context.Context, msg Message) (Result, error) {
	return f(ctx, msg)
}
