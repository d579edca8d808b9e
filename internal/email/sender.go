package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

// Notifier sends a single email. The batch sender treats it as a black box:
// one call per recipient, no internal retry.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SendError is returned when the provider rejects a message.
type SendError struct {
	To     string
	Reason error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("send to %s: %v", e.To, e.Reason)
}

func (e *SendError) Unwrap() error {
	return e.Reason
}

// SMTPSender delivers mail over SMTP.
type SMTPSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)

	if err := d.DialAndSend(m); err != nil {
		return &SendError{To: to, Reason: err}
	}

	return nil
}
