package mail

import (
	"context"
	"log/slog"

	"gitlab.com/souqly/auth-backend/internal/domain/valueobject/mail"
	"gitlab.com/souqly/auth-backend/pkg/errorx"
)

// LogSender writes mails to the logger instead of delivering them. Used in local mode,
// where reading the code from the log replaces an SMTP server.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(l *slog.Logger) *LogSender {
	if l == nil {
		l = logger
	}
	return &LogSender{logger: l}
}

func (s *LogSender) SendMail(ctx context.Context, payload mail.Payload) error {
	if payload.To == "" {
		return errorx.Wrap(ErrMissingRecipient, "mail.LogSender.SendMail")
	}
	s.logger.InfoContext(ctx, "mail",
		slog.String("to", payload.To),
		slog.String("subject", payload.Subject),
		slog.String("body", payload.Body))
	return nil
}
