package cmd

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"gitlab.com/souqly/auth-backend/internal/domain/verification"
	"gitlab.com/souqly/auth-backend/pkg/errorx"
	"gitlab.com/souqly/auth-backend/pkg/logging"
	"gitlab.com/souqly/auth-backend/pkg/otelx"
)

type ConfirmPasswordResetCode struct {
	Email string
	Code  string
}

type ConfirmPasswordResetCodeHandler struct {
	tracer        trace.Tracer
	logger        *slog.Logger
	verifications VerificationRepo
	now           func() time.Time
}

type ConfirmPasswordResetCodeHandlerArgs struct {
	Tracer           trace.Tracer
	Logger           *slog.Logger
	VerificationRepo VerificationRepo
	Now              func() time.Time
}

func NewConfirmPasswordResetCodeHandler(args ConfirmPasswordResetCodeHandlerArgs) *ConfirmPasswordResetCodeHandler {
	if args.Tracer == nil {
		args.Tracer = tracer
	}
	if args.Logger == nil {
		args.Logger = logger
	}
	if args.Now == nil {
		args.Now = time.Now
	}

	return &ConfirmPasswordResetCodeHandler{
		tracer:        args.Tracer,
		logger:        args.Logger,
		verifications: args.VerificationRepo,
		now:           args.Now,
	}
}

func (h *ConfirmPasswordResetCodeHandler) Handle(ctx context.Context, cmd ConfirmPasswordResetCode) error {
	const op = "cmd.ConfirmPasswordResetCodeHandler.Handle"
	ctx, span := h.tracer.Start(ctx, "ConfirmPasswordResetCodeHandler.Handle",
		trace.WithAttributes(attribute.String("reset.email", logging.RedactEmail(cmd.Email))))
	defer span.End()

	err := h.verifications.UpdateVerification(ctx, cmd.Email, verification.PurposePasswordReset,
		func(ctx context.Context, v *verification.PendingVerification) error {
			return v.ConfirmResetCode(cmd.Code, h.now())
		})
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to confirm reset code")
		return errorx.Wrap(err, op)
	}

	return nil
}
