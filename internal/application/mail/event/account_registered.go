package mailevent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ARUMANDESU/validation"
	"github.com/ARUMANDESU/validation/is"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"gitlab.com/souqly/auth-backend/internal/domain/account"
	"gitlab.com/souqly/auth-backend/internal/domain/valueobject/mail"
	"gitlab.com/souqly/auth-backend/pkg/errorx"
	"gitlab.com/souqly/auth-backend/pkg/logging"
	"gitlab.com/souqly/auth-backend/pkg/otelx"
)

const (
	PendingApprovalSubject = "Account Created - Pending Approval"
	WelcomeSubject         = "Welcome to Souqly"
)

func (h *MailEventHandler) HandleAccountRegistered(ctx context.Context, e *account.AccountRegistered) error {
	if e == nil {
		return nil
	}
	const op = "mailevent.MailEventHandler.HandleAccountRegistered"

	l := h.logger.With(slog.String("event", "AccountRegistered"), slog.String("account.id", e.AccountID.String()))
	ctx, span := h.tracer.Start(
		ctx,
		"MailEventHandler.HandleAccountRegistered",
		trace.WithNewRoot(),
		trace.WithLinks(trace.LinkFromContext(e.Extract())),
		trace.WithAttributes(
			attribute.String("event.account.id", e.AccountID.String()),
			attribute.String("event.account.email", logging.RedactEmail(e.Email)),
			attribute.Bool("event.account.pending_approval", e.PendingApproval),
		),
	)
	defer span.End()

	err := validation.ValidateStruct(e, validation.Field(&e.Email, validation.Required, is.EmailFormat))
	if err != nil {
		otelx.RecordSpanError(span, err, "validation failed")
		l.ErrorContext(ctx, "validation failed", slog.Any("error", err))
		return errorx.Wrap(err, op)
	}

	payload := mail.Payload{
		To:      e.Email,
		Subject: WelcomeSubject,
		Body:    fmt.Sprintf("Hi %s,\nYour account has been created. Welcome to Souqly!\n", e.FirstName),
	}
	if e.PendingApproval {
		payload.Subject = PendingApprovalSubject
		payload.Body = fmt.Sprintf(
			"Hi %s,\nYour account has been created and is pending approval. You will be notified once it is reviewed.\n",
			e.FirstName,
		)
	}

	if err := h.mailsender.SendMail(ctx, payload); err != nil {
		otelx.RecordSpanError(span, err, "failed to send account registered mail")
		l.ErrorContext(ctx, "failed to send account registered mail", slog.Any("error", err))
		return errorx.Wrap(err, op)
	}

	return nil
}
