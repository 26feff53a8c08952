package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"gitlab.com/souqly/auth-backend/internal/domain/account"
	"gitlab.com/souqly/auth-backend/internal/domain/verification"
	"gitlab.com/souqly/auth-backend/pkg/errorx"
	"gitlab.com/souqly/auth-backend/pkg/logging"
	"gitlab.com/souqly/auth-backend/pkg/otelx"
)

type ConfirmEmailVerification struct {
	Email string
	Code  string
}

// ConfirmEmailVerificationResult carries the new account. Token is empty when PendingApproval is set.
type ConfirmEmailVerificationResult struct {
	Account         *account.Account
	Token           string
	PendingApproval bool
}

type ConfirmEmailVerificationHandler struct {
	tracer        trace.Tracer
	logger        *slog.Logger
	verifications VerificationRepo
	accounts      AccountRepo
	sessions      SessionIssuer
	now           func() time.Time
}

type ConfirmEmailVerificationHandlerArgs struct {
	Tracer           trace.Tracer
	Logger           *slog.Logger
	VerificationRepo VerificationRepo
	AccountRepo      AccountRepo
	SessionIssuer    SessionIssuer
	Now              func() time.Time
}

func NewConfirmEmailVerificationHandler(args ConfirmEmailVerificationHandlerArgs) *ConfirmEmailVerificationHandler {
	if args.Tracer == nil {
		args.Tracer = tracer
	}
	if args.Logger == nil {
		args.Logger = logger
	}
	if args.Now == nil {
		args.Now = time.Now
	}

	return &ConfirmEmailVerificationHandler{
		tracer:        args.Tracer,
		logger:        args.Logger,
		verifications: args.VerificationRepo,
		accounts:      args.AccountRepo,
		sessions:      args.SessionIssuer,
		now:           args.Now,
	}
}

// Handle checks the code and turns the held draft into an account. Record removal and account
// creation share one transaction, so a retried confirm finds no record and creates nothing.
func (h *ConfirmEmailVerificationHandler) Handle(ctx context.Context, cmd ConfirmEmailVerification) (ConfirmEmailVerificationResult, error) {
	const op = "cmd.ConfirmEmailVerificationHandler.Handle"
	ctx, span := h.tracer.Start(ctx, "ConfirmEmailVerificationHandler.Handle",
		trace.WithAttributes(attribute.String("signup.email", logging.RedactEmail(cmd.Email))))
	defer span.End()

	var acc *account.Account
	err := h.verifications.UpdateVerification(ctx, cmd.Email, verification.PurposeEmailVerification,
		func(ctx context.Context, v *verification.PendingVerification) error {
			now := h.now()
			draft, err := v.ConfirmEmail(cmd.Code, now)
			if err != nil {
				trace.SpanFromContext(ctx).AddEvent("code rejected")
				return err
			}

			acc, err = account.NewFromDraft(account.NewID(), draft, now)
			if err != nil {
				return fmt.Errorf("failed to create account from draft: %w", err)
			}
			return h.accounts.SaveAccount(ctx, acc)
		})
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to confirm email verification")
		return ConfirmEmailVerificationResult{}, errorx.Wrap(err, op)
	}

	otelx.SetSpanAttrs(span, map[string]any{
		"account.id":   acc.ID().String(),
		"account.role": acc.Role().String(),
	})

	if acc.RequiresApproval() {
		h.logger.InfoContext(ctx, "seller account created, pending approval",
			slog.String("account.id", acc.ID().String()))
		return ConfirmEmailVerificationResult{Account: acc, PendingApproval: true}, nil
	}

	token, err := h.sessions.Issue(acc)
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to issue session token")
		return ConfirmEmailVerificationResult{}, errorx.Wrap(errorx.NewInternalError().WithCause(err), op)
	}

	return ConfirmEmailVerificationResult{Account: acc, Token: token}, nil
}
