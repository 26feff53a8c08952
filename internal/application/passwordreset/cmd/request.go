package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"gitlab.com/souqly/auth-backend/internal/domain/account"
	"gitlab.com/souqly/auth-backend/internal/domain/valueobject/mail"
	"gitlab.com/souqly/auth-backend/internal/domain/verification"
	"gitlab.com/souqly/auth-backend/pkg/errorx"
	"gitlab.com/souqly/auth-backend/pkg/i18nx"
	"gitlab.com/souqly/auth-backend/pkg/logging"
	"gitlab.com/souqly/auth-backend/pkg/otelx"
)

var (
	tracer = otel.Tracer("souqly/application/passwordreset/cmd")
	logger = otelslog.NewLogger("souqly/application/passwordreset/cmd")
)

const (
	ResetMailSubject   = "Password Reset Code"
	DefaultMailTimeout = 15 * time.Second
)

var ErrMailDispatch = errorx.NewDependencyFailure().WithKey(i18nx.KeyMailDispatchFailed)

type RequestPasswordReset struct {
	Email string
}

type RequestPasswordResetHandler struct {
	tracer        trace.Tracer
	logger        *slog.Logger
	verifications VerificationRepo
	accounts      AccountRepo
	mailsender    MailSender
	codes         CodeIssuer
	mailTimeout   time.Duration
	now           func() time.Time
}

type RequestPasswordResetHandlerArgs struct {
	Tracer           trace.Tracer
	Logger           *slog.Logger
	VerificationRepo VerificationRepo
	AccountRepo      AccountRepo
	MailSender       MailSender
	CodeIssuer       CodeIssuer
	MailTimeout      time.Duration
	Now              func() time.Time
}

func NewRequestPasswordResetHandler(args RequestPasswordResetHandlerArgs) *RequestPasswordResetHandler {
	if args.Tracer == nil {
		args.Tracer = tracer
	}
	if args.Logger == nil {
		args.Logger = logger
	}
	if args.CodeIssuer == nil {
		args.CodeIssuer = verification.DefaultCodeIssuer
	}
	if args.MailTimeout == 0 {
		args.MailTimeout = DefaultMailTimeout
	}
	if args.Now == nil {
		args.Now = time.Now
	}

	return &RequestPasswordResetHandler{
		tracer:        args.Tracer,
		logger:        args.Logger,
		verifications: args.VerificationRepo,
		accounts:      args.AccountRepo,
		mailsender:    args.MailSender,
		codes:         args.CodeIssuer,
		mailTimeout:   args.MailTimeout,
		now:           args.Now,
	}
}

// Handle replaces any pending reset for the email and mails a fresh code.
// An unknown email gets the same nil result; a code is still hashed but nothing is stored or sent.
func (h *RequestPasswordResetHandler) Handle(ctx context.Context, cmd RequestPasswordReset) error {
	const op = "cmd.RequestPasswordResetHandler.Handle"
	ctx, span := h.tracer.Start(ctx, "RequestPasswordResetHandler.Handle",
		trace.WithAttributes(attribute.String("reset.email", logging.RedactEmail(cmd.Email))))
	defer span.End()

	acc, err := h.accounts.GetAccountByEmail(ctx, cmd.Email)
	if err != nil && !errors.Is(err, account.ErrAccountNotFound) {
		otelx.RecordSpanError(span, err, "failed to get account by email")
		return errorx.Wrap(err, op)
	}

	now := h.now()
	code, err := h.codes.Issue(now)
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to issue code")
		return errorx.Wrap(err, op)
	}

	if acc == nil {
		span.AddEvent("no account for email, skipping reset")
		h.logger.DebugContext(ctx, "password reset requested for unknown email",
			slog.String("email", logging.RedactEmail(cmd.Email)))
		return nil
	}

	v, err := verification.NewPasswordReset(acc.Email(), code, now)
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to create password reset")
		return errorx.Wrap(err, op)
	}

	if err := h.verifications.SaveVerification(ctx, v); err != nil {
		otelx.RecordSpanError(span, err, "failed to save password reset")
		return errorx.Wrap(err, op)
	}

	mailCtx, cancel := context.WithTimeout(ctx, h.mailTimeout)
	defer cancel()

	err = h.mailsender.SendMail(mailCtx, mail.Payload{
		To:      acc.Email(),
		Subject: ResetMailSubject,
		Body:    resetMailBody(code.Plaintext),
	})
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to send reset mail")
		h.logger.ErrorContext(ctx, "failed to send reset mail",
			slog.String("email", logging.RedactEmail(acc.Email())),
			slog.Any("error", err))

		if delErr := h.verifications.DeleteVerification(ctx, v.ID()); delErr != nil {
			h.logger.ErrorContext(ctx, "failed to remove password reset after mail failure",
				slog.String("verification.id", v.ID().String()),
				slog.Any("error", delErr))
			err = errors.Join(err, delErr)
		}
		return errorx.Wrap(ErrMailDispatch.WithCause(err), op)
	}

	return nil
}

func resetMailBody(code string) string {
	return fmt.Sprintf("Your password reset code is:\n%s\n(valid for %d minutes)\n",
		code, int(verification.CodeTTL.Minutes()))
}
