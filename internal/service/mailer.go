package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"go_5_skill_sync/internal/config"
	"go_5_skill_sync/internal/middleware"
)

type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// --- LogMailer ---
type LogMailer struct{}

func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	logger := middleware.GetLogger(ctx)
	logger.Info("--- Sending Email (LogMailer) ---", "to", to, "subject", subject, "body", body)
	return nil
}

// --- SmtpMailer ---
// 認証なし・平文の SMTP (MailHog など開発用) を想定しています。
type SmtpMailer struct {
	addr string
	from string
}

func NewSmtpMailer(cfg config.SMTPConfig, fallbackFrom string) *SmtpMailer {
	from := cfg.From
	if from == "" {
		from = fallbackFrom
	}
	return &SmtpMailer{addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), from: from}
}

func (m *SmtpMailer) Send(ctx context.Context, to, subject, body string) error {
	logger := middleware.GetLogger(ctx).With("smtp_addr", m.addr, "to", to)
	logger.Debug("Attempting to send email via SMTP", "from", m.from)

	c, err := smtp.Dial(m.addr)
	if err != nil {
		logger.Error("Failed to connect to SMTP server", "error", err)
		return fmt.Errorf("smtp dial: %w", err)
	}
	defer c.Close()

	if err = c.Mail(m.from); err != nil {
		logger.Error("Failed to set MAIL FROM", "error", err, "from", m.from)
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err = c.Rcpt(to); err != nil {
		logger.Error("Failed to set RCPT TO", "error", err)
		return fmt.Errorf("smtp rcpt: %w", err)
	}

	wc, err := c.Data()
	if err != nil {
		logger.Error("Failed to open data writer", "error", err)
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err = wc.Write([]byte(buildMessage(m.from, to, subject, body))); err != nil {
		_ = wc.Close()
		logger.Error("Failed to write email data", "error", err)
		return fmt.Errorf("smtp write: %w", err)
	}
	// Close で DATA が確定する
	if err = wc.Close(); err != nil {
		logger.Error("Failed to finish email data", "error", err)
		return fmt.Errorf("smtp close data: %w", err)
	}
	if err = c.Quit(); err != nil {
		logger.Warn("SMTP QUIT failed", "error", err)
	}

	logger.Info("Email sent successfully via SMTP", "subject", subject)
	return nil
}

func buildMessage(from, to, subject, body string) string {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body + "\r\n")
	return b.String()
}

// NewMailer は mailer.type に応じた実装を返します。SES の初期化に失敗した場合はエラーを返します。
func NewMailer(ctx context.Context, cfg *config.Config) (Mailer, error) {
	logger := slog.Default()
	switch cfg.Mailer.Type {
	case "smtp":
		logger.Info("Initializing SMTP mailer...")
		return NewSmtpMailer(cfg.SMTP, cfg.Mailer.From), nil
	case "ses":
		logger.Info("Initializing SES mailer...")
		m, err := NewSESMailer(ctx, cfg.SES, cfg.Mailer.From)
		if err != nil {
			return nil, err
		}
		return m, nil
	case "log", "":
		logger.Info("Initializing Log mailer...")
		return &LogMailer{}, nil
	default:
		logger.Warn("Unknown mailer type, defaulting to LogMailer", "type", cfg.Mailer.Type)
		return &LogMailer{}, nil
	}
}
