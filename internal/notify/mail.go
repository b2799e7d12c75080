package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	_ "embed"
	"fmt"
	"html/template"
	"time"

	gomail "gopkg.in/gomail.v2"

	"github.com/Shivanand-hulikatti/hotel-reservation/internal/calendar"
	"github.com/Shivanand-hulikatti/hotel-reservation/internal/model"
)

//go:embed templates/booking_confirmed.html
var confirmationHTML string

var confirmationTemplate = template.Must(template.New("booking_confirmed").Funcs(template.FuncMap{
	"date": func(t time.Time) string { return t.Format(calendar.DateLayout) },
}).Parse(confirmationHTML))

// Sender delivers composed messages. *gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPConfig holds the outgoing mail server settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer emails the confirmation to the guest.
type Mailer struct {
	sender Sender
	from   string
}

// NewSMTPMailer dials the configured SMTP server over TLS.
func NewSMTPMailer(cfg SMTPConfig) *Mailer {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	dialer.TLSConfig = &tls.Config{ServerName: cfg.Host}
	return NewMailer(dialer, cfg.From)
}

// NewMailer builds a Mailer over any Sender.
func NewMailer(sender Sender, from string) *Mailer {
	return &Mailer{sender: sender, from: from}
}

// Notify implements Notifier.
func (m *Mailer) Notify(_ context.Context, c *model.BookingConfirmation) error {
	msg, err := m.compose(c)
	if err != nil {
		return err
	}
	if err := m.sender.DialAndSend(msg); err != nil {
		return fmt.Errorf("send confirmation email to %s: %w", c.Guest.Email, err)
	}
	return nil
}

func (m *Mailer) compose(c *model.BookingConfirmation) (*gomail.Message, error) {
	var body bytes.Buffer
	if err := confirmationTemplate.Execute(&body, c); err != nil {
		return nil, fmt.Errorf("render confirmation email: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", c.Guest.Email)
	msg.SetHeader("Subject", "Your booking "+c.ConfirmationCode+" is confirmed")
	msg.SetBody("text/html", body.String())
	return msg, nil
}
