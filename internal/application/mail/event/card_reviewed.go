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
	CardApprovedSubject = "Account Approved"
	CardRejectedSubject = "Account Verification Rejected"
)

func (h *MailEventHandler) HandleVerificationCardReviewed(ctx context.Context, e *account.VerificationCardReviewed) error {
	if e == nil {
		return nil
	}
	const op = "mailevent.MailEventHandler.HandleVerificationCardReviewed"

	l := h.logger.With(slog.String("event", "VerificationCardReviewed"), slog.String("account.id", e.AccountID.String()))
	ctx, span := h.tracer.Start(
		ctx,
		"MailEventHandler.HandleVerificationCardReviewed",
		trace.WithNewRoot(),
		trace.WithLinks(trace.LinkFromContext(e.Extract())),
		trace.WithAttributes(
			attribute.String("event.account.id", e.AccountID.String()),
			attribute.String("event.account.email", logging.RedactEmail(e.Email)),
			attribute.Bool("event.card.approved", e.Approved),
		),
	)
	defer span.End()

	err := validation.ValidateStruct(e, validation.Field(&e.Email, validation.Required, is.EmailFormat))
	if err != nil {
		otelx.RecordSpanError(span, err, "validation failed")
		l.ErrorContext(ctx, "validation failed", slog.Any("error", err))
		return errorx.Wrap(err, op)
	}

	var payload mail.Payload
	if e.Approved {
		payload = mail.Payload{
			To:      e.Email,
			Subject: CardApprovedSubject,
			Body:    fmt.Sprintf("Hi %s,\nYour identity document was approved. You can now sign in to your shop.\n", e.FirstName),
		}
	} else {
		reason := e.Reason
		if reason == "" {
			reason = "no reason given"
		}
		payload = mail.Payload{
			To:      e.Email,
			Subject: CardRejectedSubject,
			Body: fmt.Sprintf(
				"Hi %s,\nYour identity document was rejected: %s\nYou can upload a new document from your account.\n",
				e.FirstName, reason,
			),
		}
	}

	if err := h.mailsender.SendMail(ctx, payload); err != nil {
		otelx.RecordSpanError(span, err, "failed to send card review mail")
		l.ErrorContext(ctx, "failed to send card review mail", slog.Any("error", err))
		return errorx.Wrap(err, op)
	}

	return nil
}
