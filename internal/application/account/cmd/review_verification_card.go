package cmd

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"gitlab.com/souqly/auth-backend/internal/domain/account"
	"gitlab.com/souqly/auth-backend/internal/domain/valueobject/role"
	"gitlab.com/souqly/auth-backend/pkg/errorx"
	"gitlab.com/souqly/auth-backend/pkg/otelx"
)

type ReviewVerificationCard struct {
	AdminID   account.ID
	AdminRole role.Role
	SellerID  account.ID
	Approve   bool
	Reason    string
}

type ReviewVerificationCardHandler struct {
	tracer   trace.Tracer
	logger   *slog.Logger
	accounts AccountRepo
	now      func() time.Time
}

type ReviewVerificationCardHandlerArgs struct {
	Tracer      trace.Tracer
	Logger      *slog.Logger
	AccountRepo AccountRepo
	Now         func() time.Time
}

func NewReviewVerificationCardHandler(args ReviewVerificationCardHandlerArgs) *ReviewVerificationCardHandler {
	if args.Tracer == nil {
		args.Tracer = tracer
	}
	if args.Logger == nil {
		args.Logger = logger
	}
	if args.Now == nil {
		args.Now = time.Now
	}

	return &ReviewVerificationCardHandler{
		tracer:   args.Tracer,
		logger:   args.Logger,
		accounts: args.AccountRepo,
		now:      args.Now,
	}
}

// Handle approves or rejects a seller's submitted card. Approval opens the login gate for the seller.
func (h *ReviewVerificationCardHandler) Handle(ctx context.Context, cmd ReviewVerificationCard) error {
	const op = "cmd.ReviewVerificationCardHandler.Handle"
	ctx, span := h.tracer.Start(ctx, "ReviewVerificationCardHandler.Handle",
		trace.WithAttributes(
			attribute.String("admin.id", cmd.AdminID.String()),
			attribute.String("seller.id", cmd.SellerID.String()),
			attribute.Bool("review.approve", cmd.Approve),
		))
	defer span.End()

	if cmd.AdminRole != role.Admin {
		err := errorx.NewForbidden()
		otelx.RecordSpanError(span, err, "reviewer is not an admin")
		return errorx.Wrap(err, op)
	}

	err := h.accounts.UpdateAccount(ctx, cmd.SellerID, func(ctx context.Context, a *account.Account) error {
		return a.ReviewVerificationCard(cmd.AdminID, cmd.Approve, cmd.Reason, h.now())
	})
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to review verification card")
		return errorx.Wrap(err, op)
	}

	h.logger.InfoContext(ctx, "verification card reviewed",
		slog.String("seller.id", cmd.SellerID.String()),
		slog.Bool("approved", cmd.Approve))
	return nil
}
