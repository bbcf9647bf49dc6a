package utils

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/vnkhanh/educenter-backend/config"
	"github.com/vnkhanh/educenter-backend/logger"
)

// Mailer delivers transactional mail such as OTP codes.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type SMTPMailer struct {
	cfg config.MailConfig
}

func NewSMTPMailer(cfg config.MailConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	from := m.cfg.From
	if from == "" {
		from = m.cfg.Username
	}

	// Headers: UTF-8 & HTML
	msg := ""
	msg += "MIME-Version: 1.0\r\n"
	msg += "Content-Type: text/html; charset=\"UTF-8\"\r\n"
	msg += fmt.Sprintf("From: %s\r\n", from)
	msg += fmt.Sprintf("To: %s\r\n", to)
	msg += fmt.Sprintf("Subject: %s\r\n", subject)
	msg += "\r\n" + body

	addr := fmt.Sprintf("%s:%d", m.cfg.SMTPHost, m.cfg.SMTPPort)
	err := smtp.SendMail(
		addr,
		smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.SMTPHost),
		from,
		[]string{to},
		[]byte(msg),
	)
	if err != nil {
		return fmt.Errorf("send email failed: %w", err)
	}
	return nil
}

// LogMailer only logs outgoing mail. Used when mail.enabled is false.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, to, subject, _ string) error {
	logger.Infof("mail delivery disabled, dropping %q to %s", subject, to)
	return nil
}
