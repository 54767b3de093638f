package mail

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SMTPDispatcher delivers messages over a plain SMTP relay.
type SMTPDispatcher struct {
	addr    string
	from    string
	timeout time.Duration
}

// NewSMTPDispatcher constructs a dispatcher for the given relay.
func NewSMTPDispatcher(host string, port int, from string, timeout time.Duration) *SMTPDispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SMTPDispatcher{
		addr:    fmt.Sprintf("%s:%d", host, port),
		from:    from,
		timeout: timeout,
	}
}

// Send delivers one message. The connection honours both the dispatcher
// timeout and the caller's context deadline.
func (d *SMTPDispatcher) Send(ctx context.Context, msg Message) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	messageID := uuid.NewString()

	dialer := net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", d.addr)
	if err != nil {
		return failure(err), fmt.Errorf("mail: dial %s: %w", d.addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	host := d.addr
	if h, _, splitErr := net.SplitHostPort(d.addr); splitErr == nil {
		host = h
	}

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		_ = conn.Close()
		return failure(err), fmt.Errorf("mail: handshake: %w", err)
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Mail(d.from); err != nil {
		return failure(err), fmt.Errorf("mail: MAIL FROM: %w", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return failure(err), fmt.Errorf("mail: RCPT TO: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return failure(err), fmt.Errorf("mail: DATA: %w", err)
	}
	if _, err := w.Write(d.encode(messageID, msg)); err != nil {
		return failure(err), fmt.Errorf("mail: write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return failure(err), fmt.Errorf("mail: close body: %w", err)
	}
	if err := client.Quit(); err != nil {
		return failure(err), fmt.Errorf("mail: quit: %w", err)
	}

	return Result{Success: true, MessageID: messageID}, nil
}

func (d *SMTPDispatcher) encode(messageID string, msg Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", d.from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	fmt.Fprintf(&b, "Message-ID: <%s>\r\n", messageID)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTMLBody)
	b.WriteString("\r\n")
	return []byte(b.String())
}

func failure(err error) Result {
	return Result{Success: false, Err: err.Error()}
}
