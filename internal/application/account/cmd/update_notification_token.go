package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ARUMANDESU/validation"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"gitlab.com/souqly/auth-backend/internal/domain/account"
	"gitlab.com/souqly/auth-backend/pkg/errorx"
	"gitlab.com/souqly/auth-backend/pkg/otelx"
	"gitlab.com/souqly/auth-backend/pkg/validationx"
)

var (
	tracer = otel.Tracer("souqly/application/account/cmd")
	logger = otelslog.NewLogger("souqly/application/account/cmd")
)

type UpdateNotificationToken struct {
	AccountID account.ID
	Token     string
}

type UpdateNotificationTokenHandler struct {
	tracer   trace.Tracer
	logger   *slog.Logger
	accounts AccountRepo
	sealer   TokenSealer
	now      func() time.Time
}

type UpdateNotificationTokenHandlerArgs struct {
	Tracer      trace.Tracer
	Logger      *slog.Logger
	AccountRepo AccountRepo
	TokenSealer TokenSealer
	Now         func() time.Time
}

func NewUpdateNotificationTokenHandler(args UpdateNotificationTokenHandlerArgs) *UpdateNotificationTokenHandler {
	if args.Tracer == nil {
		args.Tracer = tracer
	}
	if args.Logger == nil {
		args.Logger = logger
	}
	if args.Now == nil {
		args.Now = time.Now
	}

	return &UpdateNotificationTokenHandler{
		tracer:   args.Tracer,
		logger:   args.Logger,
		accounts: args.AccountRepo,
		sealer:   args.TokenSealer,
		now:      args.Now,
	}
}

// Handle stores the push notification token sealed; the plaintext never reaches the store.
func (h *UpdateNotificationTokenHandler) Handle(ctx context.Context, cmd UpdateNotificationToken) error {
	const op = "cmd.UpdateNotificationTokenHandler.Handle"
	ctx, span := h.tracer.Start(ctx, "UpdateNotificationTokenHandler.Handle",
		trace.WithAttributes(attribute.String("account.id", cmd.AccountID.String())))
	defer span.End()

	if err := validation.Validate(cmd.Token, validationx.NotificationTokenRules...); err != nil {
		otelx.RecordSpanError(span, err, "invalid notification token")
		return errorx.Wrap(err, op)
	}

	sealed, err := h.sealer.Seal(cmd.Token)
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to seal notification token")
		return errorx.Wrap(fmt.Errorf("failed to seal notification token: %w", err), op)
	}

	err = h.accounts.UpdateAccount(ctx, cmd.AccountID, func(ctx context.Context, a *account.Account) error {
		return a.SetNotificationToken(sealed, h.now())
	})
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to update account")
		return errorx.Wrap(err, op)
	}

	return nil
}
