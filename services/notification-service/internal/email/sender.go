package email

import (
	"strings"

	"gopkg.in/gomail.v2"
)

type Sender interface {
	Send(to string, subject string, body string) error
}

// SMTPSender sends plain-text mail through an SMTP relay (Mailpit in development).
type SMTPSender struct {
	from string
	send func(m *gomail.Message) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	from := strings.TrimSpace(cfg.From)
	if from == "" {
		from = "no-reply@bookmycare.local"
	}
	dialer := gomail.NewDialer(strings.TrimSpace(cfg.Host), cfg.Port, cfg.Username, cfg.Password)
	return &SMTPSender{from: from, send: dialer.DialAndSend}
}

func (s *SMTPSender) Send(to string, subject string, body string) error {
	return s.send(buildMessage(s.from, to, subject, body))
}

func buildMessage(from, to, subject, body string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	return m
}
