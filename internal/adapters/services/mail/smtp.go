package mail

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/gomail.v2"

	"gitlab.com/souqly/auth-backend/internal/domain/valueobject/mail"
	"gitlab.com/souqly/auth-backend/pkg/errorx"
	"gitlab.com/souqly/auth-backend/pkg/logging"
	"gitlab.com/souqly/auth-backend/pkg/otelx"
)

var (
	tracer = otel.Tracer("souqly/internal/adapters/services/mail")
	logger = otelslog.NewLogger("souqly/internal/adapters/services/mail")
)

var ErrMissingRecipient = errors.New("mail recipient is empty")

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type SMTPSender struct {
	tracer trace.Tracer
	logger *slog.Logger
	dialer dialer
	from   string
}

type SMTPArgs struct {
	Tracer   trace.Tracer
	Logger   *slog.Logger
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func NewSMTPSender(args SMTPArgs) *SMTPSender {
	if args.Tracer == nil {
		args.Tracer = tracer
	}
	if args.Logger == nil {
		args.Logger = logger
	}
	from := args.From
	if from == "" {
		from = args.Username
	}

	return &SMTPSender{
		tracer: args.Tracer,
		logger: args.Logger,
		dialer: gomail.NewDialer(args.Host, args.Port, args.Username, args.Password),
		from:   from,
	}
}

// SendMail dials the server for every message. gomail has no context support, so the send runs
// in its own goroutine and ctx only bounds how long the caller waits for it.
func (s *SMTPSender) SendMail(ctx context.Context, payload mail.Payload) error {
	const op = "mail.SMTPSender.SendMail"
	ctx, span := s.tracer.Start(ctx, "SMTPSender.SendMail",
		trace.WithAttributes(attribute.String("mail.to", logging.RedactEmail(payload.To))))
	defer span.End()

	if payload.To == "" {
		otelx.RecordSpanError(span, ErrMissingRecipient, "invalid payload")
		return errorx.Wrap(ErrMissingRecipient, op)
	}

	msg := newMessage(s.from, payload)

	done := make(chan error, 1)
	go func() { done <- s.dialer.DialAndSend(msg) }()

	select {
	case err := <-done:
		if err != nil {
			otelx.RecordSpanError(span, err, "failed to send mail")
			return errorx.Wrap(err, op)
		}
	case <-ctx.Done():
		otelx.RecordSpanError(span, ctx.Err(), "mail send abandoned")
		return errorx.Wrap(ctx.Err(), op)
	}

	s.logger.InfoContext(ctx, "mail sent",
		slog.String("to", logging.RedactEmail(payload.To)),
		slog.String("subject", payload.Subject))
	return nil
}

func newMessage(from string, payload mail.Payload) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", payload.To)
	m.SetHeader("Subject", payload.Subject)
	m.SetBody("text/plain", payload.Body)
	return m
}
