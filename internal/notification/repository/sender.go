package repository

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"chat_gateway_service/pkg/logger"

	"go.uber.org/zap"
)

// EmailSender definition deliver one mail
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// PushSender definition deliver one push notification
type PushSender interface {
	Push(ctx context.Context, userID int64, text string) error
}

// SMTPConfig mail relay address and login
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type smtpSender struct {
	cfg  SMTPConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPSender create EmailSender on a plain SMTP relay
func NewSMTPSender(cfg SMTPConfig) EmailSender {
	return &smtpSender{cfg: cfg, send: smtp.SendMail}
}

func (s *smtpSender) SendEmail(_ context.Context, to, subject, body string) error {
	if to == "" {
		return fmt.Errorf("send email: empty recipient")
	}
	var auth smtp.Auth
	if s.cfg.User != "" {
		auth = smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Host)
	}
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	if err := s.send(addr, auth, s.cfg.From, []string{to}, buildMail(s.cfg.From, to, subject, body)); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

func buildMail(from, to, subject, body string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

type logPushSender struct{}

// NewLogPushSender push delivery stub, no provider is integrated yet
func NewLogPushSender() PushSender {
	return logPushSender{}
}

func (logPushSender) Push(_ context.Context, userID int64, text string) error {
	logger.Log.Info("push notification", zap.Int64("user_id", userID), zap.String("text", text))
	return nil
}
