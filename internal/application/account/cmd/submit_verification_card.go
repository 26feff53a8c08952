package cmd

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"gitlab.com/souqly/auth-backend/internal/domain/account"
	"gitlab.com/souqly/auth-backend/pkg/errorx"
	"gitlab.com/souqly/auth-backend/pkg/otelx"
)

type SubmitVerificationCard struct {
	AccountID   account.ID
	IDType      string
	IDNumber    string
	DocumentURL string
}

type SubmitVerificationCardHandler struct {
	tracer   trace.Tracer
	logger   *slog.Logger
	accounts AccountRepo
	now      func() time.Time
}

type SubmitVerificationCardHandlerArgs struct {
	Tracer      trace.Tracer
	Logger      *slog.Logger
	AccountRepo AccountRepo
	Now         func() time.Time
}

func NewSubmitVerificationCardHandler(args SubmitVerificationCardHandlerArgs) *SubmitVerificationCardHandler {
	if args.Tracer == nil {
		args.Tracer = tracer
	}
	if args.Logger == nil {
		args.Logger = logger
	}
	if args.Now == nil {
		args.Now = time.Now
	}

	return &SubmitVerificationCardHandler{
		tracer:   args.Tracer,
		logger:   args.Logger,
		accounts: args.AccountRepo,
		now:      args.Now,
	}
}

func (h *SubmitVerificationCardHandler) Handle(ctx context.Context, cmd SubmitVerificationCard) error {
	const op = "cmd.SubmitVerificationCardHandler.Handle"
	ctx, span := h.tracer.Start(ctx, "SubmitVerificationCardHandler.Handle",
		trace.WithAttributes(attribute.String("account.id", cmd.AccountID.String())))
	defer span.End()

	err := h.accounts.UpdateAccount(ctx, cmd.AccountID, func(ctx context.Context, a *account.Account) error {
		now := h.now()
		return a.SubmitVerificationCard(account.CardSubmission{
			IDType:      cmd.IDType,
			IDNumber:    cmd.IDNumber,
			DocumentURL: cmd.DocumentURL,
			SubmittedAt: now,
		}, now)
	})
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to submit verification card")
		return errorx.Wrap(err, op)
	}

	h.logger.InfoContext(ctx, "verification card submitted", slog.String("account.id", cmd.AccountID.String()))
	return nil
}
