// Package mailx sends transactional email. Services depend on the Sender
// interface; main picks Resend when an API key is configured and the log
// sender otherwise.
package mailx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"sync"

	"github.com/resend/resend-go/v3"
)

// Message is one outgoing email. HTML is the full body.
type Message struct {
	To      string
	Subject string
	HTML    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

var ErrRecipient = errors.New("mailx: invalid recipient")

func validate(msg Message) error {
	if _, err := mail.ParseAddress(msg.To); err != nil {
		return fmt.Errorf("%w: %q", ErrRecipient, msg.To)
	}
	return nil
}

// ResendSender delivers through the Resend HTTP API.
type ResendSender struct {
	client *resend.Client
	from   string
}

// NewResendSender wants from in RFC 5322 form, e.g. "Bloggers <noreply@example.com>".
func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	if err := validate(msg); err != nil {
		return err
	}

	_, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
	})
	if err != nil {
		return fmt.Errorf("mailx: resend: %w", err)
	}
	return nil
}

// LogSender writes messages to the log instead of sending them. It is the
// development default and keeps the last message per recipient so tests
// can fish codes out of it. Bodies carry codes and are logged at debug only.
type LogSender struct {
	Logger *slog.Logger

	mu   sync.Mutex
	last map[string]Message
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	if err := validate(msg); err != nil {
		return err
	}

	s.mu.Lock()
	if s.last == nil {
		s.last = make(map[string]Message)
	}
	s.last[msg.To] = msg
	s.mu.Unlock()

	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "email not sent (log sender)",
		"to", msg.To,
		"subject", msg.Subject,
	)
	logger.DebugContext(ctx, "email body (log sender)",
		"to", msg.To,
		"html", msg.HTML,
	)
	return nil
}

// Last returns the most recent message sent to addr.
func (s *LogSender) Last(addr string) (Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.last[addr]
	return m, ok
}
