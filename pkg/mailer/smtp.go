package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"
)

// Settings are the SMTP credentials used for a single send.
type Settings struct {
	Host     string
	Port     int
	Username string
	Password string
	Secure   bool
	FromName string
}

// Message is a rendered HTML mail.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// SMTPSender delivers mail through gomail, dialing a fresh connection per send
// so credential changes take effect immediately.
type SMTPSender struct {
	dial func(Settings) dialer
}

type dialer interface {
	DialAndSend(...*gomail.Message) error
}

// NewSMTPSender constructs a sender using gomail's dialer.
func NewSMTPSender() *SMTPSender {
	return &SMTPSender{dial: newGomailDialer}
}

func newGomailDialer(s Settings) dialer {
	d := gomail.NewDialer(s.Host, s.Port, s.Username, s.Password)
	d.SSL = s.Secure
	d.TLSConfig = &tls.Config{ServerName: s.Host, MinVersion: tls.VersionTLS12}
	return d
}

// Send delivers msg. ctx is checked before dialing; gomail itself does not
// accept a context.
func (s *SMTPSender) Send(ctx context.Context, settings Settings, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m, err := Build(settings, msg)
	if err != nil {
		return err
	}
	if err := s.dial(settings).DialAndSend(m); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return nil
}

// Build assembles the gomail message for msg.
func Build(settings Settings, msg Message) (*gomail.Message, error) {
	if strings.TrimSpace(settings.Host) == "" || settings.Port <= 0 {
		return nil, fmt.Errorf("smtp host and port required")
	}
	if strings.TrimSpace(settings.Username) == "" {
		return nil, fmt.Errorf("smtp sender address required")
	}
	if strings.TrimSpace(msg.To) == "" {
		return nil, fmt.Errorf("recipient required")
	}

	m := gomail.NewMessage()
	if settings.FromName != "" {
		m.SetAddressHeader("From", settings.Username, settings.FromName)
	} else {
		m.SetHeader("From", settings.Username)
	}
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)
	return m, nil
}
