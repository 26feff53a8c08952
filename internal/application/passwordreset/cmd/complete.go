package cmd

import (
	"context"
	"errors"
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

type CompletePasswordReset struct {
	Email       string
	NewPassword string
}

type CompletePasswordResetResult struct {
	Account *account.Account
	Token   string
}

type CompletePasswordResetHandler struct {
	tracer         trace.Tracer
	logger         *slog.Logger
	verifications  VerificationRepo
	accounts       AccountRepo
	sessions       SessionIssuer
	passwordHasher func(string) ([]byte, error)
	now            func() time.Time
}

type CompletePasswordResetHandlerArgs struct {
	Tracer           trace.Tracer
	Logger           *slog.Logger
	VerificationRepo VerificationRepo
	AccountRepo      AccountRepo
	SessionIssuer    SessionIssuer
	PasswordHasher   func(string) ([]byte, error)
	Now              func() time.Time
}

func NewCompletePasswordResetHandler(args CompletePasswordResetHandlerArgs) *CompletePasswordResetHandler {
	if args.Tracer == nil {
		args.Tracer = tracer
	}
	if args.Logger == nil {
		args.Logger = logger
	}
	if args.PasswordHasher == nil {
		args.PasswordHasher = account.HashPassword
	}
	if args.Now == nil {
		args.Now = time.Now
	}

	return &CompletePasswordResetHandler{
		tracer:         args.Tracer,
		logger:         args.Logger,
		verifications:  args.VerificationRepo,
		accounts:       args.AccountRepo,
		sessions:       args.SessionIssuer,
		passwordHasher: args.PasswordHasher,
		now:            args.Now,
	}
}

// Handle consumes a verified reset record and sets the new password in the same transaction.
func (h *CompletePasswordResetHandler) Handle(ctx context.Context, cmd CompletePasswordReset) (CompletePasswordResetResult, error) {
	const op = "cmd.CompletePasswordResetHandler.Handle"
	ctx, span := h.tracer.Start(ctx, "CompletePasswordResetHandler.Handle",
		trace.WithAttributes(attribute.String("reset.email", logging.RedactEmail(cmd.Email))))
	defer span.End()

	passHash, err := h.passwordHasher(cmd.NewPassword)
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to hash password")
		return CompletePasswordResetResult{}, errorx.Wrap(err, op)
	}

	var acc *account.Account
	err = h.verifications.UpdateVerification(ctx, cmd.Email, verification.PurposePasswordReset,
		func(ctx context.Context, v *verification.PendingVerification) error {
			now := h.now()
			if err := v.CompleteReset(now); err != nil {
				return err
			}
			return h.accounts.UpdateAccountByEmail(ctx, v.Email(), func(_ context.Context, a *account.Account) error {
				acc = a
				return a.ChangePassword(passHash, now)
			})
		})
	if errors.Is(err, verification.ErrResetNotFound) {
		err = verification.ErrResetNotVerified.WithCause(err)
	}
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to complete password reset")
		return CompletePasswordResetResult{}, errorx.Wrap(err, op)
	}

	h.logger.InfoContext(ctx, "password reset completed", slog.String("account.id", acc.ID().String()))

	token, err := h.sessions.Issue(acc)
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to issue session token")
		return CompletePasswordResetResult{}, errorx.Wrap(errorx.NewInternalError().WithCause(err), op)
	}

	return CompletePasswordResetResult{Account: acc, Token: token}, nil
}
