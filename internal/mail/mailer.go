// Package mail — коллаборатор доставки писем.
// Сервису нужен ровно один контракт: Send(to, subject, html, text).
package mail

import (
	"fmt"
	"net/smtp"
	"strings"

	"identity/internal/logs"
)

type Sender interface {
	Send(to, subject, htmlBody, textBody string) error
}

// SMTPSender шлёт через обычный SMTP с PLAIN-аутентификацией.
type SMTPSender struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func NewSMTPSender(host string, port int, username, password, from string) *SMTPSender {
	return &SMTPSender{Host: host, Port: port, Username: username, Password: password, From: from}
}

func (s *SMTPSender) Send(to, subject, htmlBody, textBody string) error {
	addr := fmt.Sprintf("%s:%d", s.Host, s.Port)

	var b strings.Builder
	boundary := "identity-alt-boundary"
	fmt.Fprintf(&b, "From: %s\r\n", s.From)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)
	fmt.Fprintf(&b, "--%s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n", boundary, textBody)
	fmt.Fprintf(&b, "--%s\r\nContent-Type: text/html; charset=utf-8\r\n\r\n%s\r\n", boundary, htmlBody)
	fmt.Fprintf(&b, "--%s--\r\n", boundary)

	var auth smtp.Auth
	if s.Username != "" {
		auth = smtp.PlainAuth("", s.Username, s.Password, s.Host)
	}
	return smtp.SendMail(addr, auth, s.From, []string{to}, []byte(b.String()))
}

// Disabled — почта выключена конфигом; наружу поведение не раскрываем,
// вызывающий просто логирует и продолжает.
type Disabled struct{}

func (Disabled) Send(to, _ string, _, _ string) error {
	logs.Logger.Warnf("mail disabled, dropping message to %s", to)
	return fmt.Errorf("mail service disabled")
}
