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
	"gitlab.com/souqly/auth-backend/internal/domain/valueobject/role"
	"gitlab.com/souqly/auth-backend/internal/domain/verification"
	"gitlab.com/souqly/auth-backend/pkg/errorx"
	"gitlab.com/souqly/auth-backend/pkg/i18nx"
	"gitlab.com/souqly/auth-backend/pkg/logging"
	"gitlab.com/souqly/auth-backend/pkg/otelx"
)

var (
	tracer = otel.Tracer("souqly/application/registration/cmd")
	logger = otelslog.NewLogger("souqly/application/registration/cmd")
)

const (
	VerificationMailSubject = "Email Verification Code"
	DefaultMailTimeout      = 15 * time.Second
)

var ErrMailDispatch = errorx.NewDependencyFailure().WithKey(i18nx.KeyMailDispatchFailed)

type RequestEmailVerification struct {
	FirstName   string
	LastName    string
	Email       string
	Password    string
	Role        string
	Language    string
	PhoneNumber string
	Seller      account.SellerDraftArgs
	Address     *account.Address
	// DocumentURL is set when the upload step stored an identity document.
	DocumentURL string
}

type RequestEmailVerificationHandler struct {
	tracer         trace.Tracer
	logger         *slog.Logger
	verifications  VerificationRepo
	accounts       AccountRepo
	mailsender     MailSender
	codes          CodeIssuer
	passwordHasher func(string) ([]byte, error)
	mailTimeout    time.Duration
	now            func() time.Time
}

type RequestEmailVerificationHandlerArgs struct {
	Tracer           trace.Tracer
	Logger           *slog.Logger
	VerificationRepo VerificationRepo
	AccountRepo      AccountRepo
	MailSender       MailSender
	CodeIssuer       CodeIssuer
	PasswordHasher   func(string) ([]byte, error)
	MailTimeout      time.Duration
	Now              func() time.Time
}

func NewRequestEmailVerificationHandler(args RequestEmailVerificationHandlerArgs) *RequestEmailVerificationHandler {
	if args.Tracer == nil {
		args.Tracer = tracer
	}
	if args.Logger == nil {
		args.Logger = logger
	}
	if args.CodeIssuer == nil {
		args.CodeIssuer = verification.DefaultCodeIssuer
	}
	if args.PasswordHasher == nil {
		args.PasswordHasher = account.HashPassword
	}
	if args.MailTimeout == 0 {
		args.MailTimeout = DefaultMailTimeout
	}
	if args.Now == nil {
		args.Now = time.Now
	}

	return &RequestEmailVerificationHandler{
		tracer:         args.Tracer,
		logger:         args.Logger,
		verifications:  args.VerificationRepo,
		accounts:       args.AccountRepo,
		mailsender:     args.MailSender,
		codes:          args.CodeIssuer,
		passwordHasher: args.PasswordHasher,
		mailTimeout:    args.MailTimeout,
		now:            args.Now,
	}
}

// Handle stores a pending signup for the email, replacing any earlier one, and mails the code.
// When the mail cannot be sent the stored record is removed again.
func (h *RequestEmailVerificationHandler) Handle(ctx context.Context, cmd RequestEmailVerification) error {
	const op = "cmd.RequestEmailVerificationHandler.Handle"
	ctx, span := h.tracer.Start(ctx, "RequestEmailVerificationHandler.Handle",
		trace.WithAttributes(
			attribute.String("signup.email", logging.RedactEmail(cmd.Email)),
			attribute.String("signup.role", cmd.Role),
			attribute.Bool("signup.has_document", cmd.DocumentURL != ""),
		))
	defer span.End()

	if role.Role(cmd.Role) == role.Admin {
		otelx.RecordSpanError(span, account.ErrInvalidRole, "admin signup attempt")
		return errorx.Wrap(account.ErrInvalidRole, op)
	}

	existing, err := h.accounts.GetAccountByEmail(ctx, cmd.Email)
	if err != nil && !errors.Is(err, account.ErrAccountNotFound) {
		otelx.RecordSpanError(span, err, "failed to get account by email")
		return errorx.Wrap(err, op)
	}
	if existing != nil {
		otelx.RecordSpanError(span, account.ErrEmailTaken, "account already exists")
		return errorx.Wrap(account.ErrEmailTaken, op)
	}

	passHash, err := h.passwordHasher(cmd.Password)
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to hash password")
		return errorx.Wrap(err, op)
	}

	now := h.now()
	draft, err := account.NewDraft(account.DraftArgs{
		FirstName:   cmd.FirstName,
		LastName:    cmd.LastName,
		Email:       cmd.Email,
		Role:        cmd.Role,
		Language:    cmd.Language,
		PhoneNumber: cmd.PhoneNumber,
		PassHash:    passHash,
		Seller:      cmd.Seller,
		Address:     cmd.Address,
		DocumentURL: cmd.DocumentURL,
		Now:         now,
	})
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to build signup draft")
		return errorx.Wrap(err, op)
	}

	code, err := h.codes.Issue(now)
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to issue code")
		return errorx.Wrap(err, op)
	}

	v, err := verification.NewEmailVerification(draft, code, now)
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to create verification")
		return errorx.Wrap(err, op)
	}

	if err := h.verifications.SaveVerification(ctx, v); err != nil {
		otelx.RecordSpanError(span, err, "failed to save verification")
		return errorx.Wrap(err, op)
	}
	span.AddEvent("verification saved", trace.WithAttributes(attribute.String("verification.id", v.ID().String())))

	mailCtx, cancel := context.WithTimeout(ctx, h.mailTimeout)
	defer cancel()

	err = h.mailsender.SendMail(mailCtx, mail.Payload{
		To:      draft.Email,
		Subject: VerificationMailSubject,
		Body:    verificationMailBody(draft.FirstName, draft.LastName, code.Plaintext),
	})
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to send verification mail")
		h.logger.ErrorContext(ctx, "failed to send verification mail",
			slog.String("email", logging.RedactEmail(draft.Email)),
			slog.Any("error", err))

		if delErr := h.verifications.DeleteVerification(ctx, v.ID()); delErr != nil {
			h.logger.ErrorContext(ctx, "failed to remove verification after mail failure",
				slog.String("verification.id", v.ID().String()),
				slog.Any("error", delErr))
			err = errors.Join(err, delErr)
		}
		return errorx.Wrap(ErrMailDispatch.WithCause(err), op)
	}

	return nil
}

func verificationMailBody(firstName, lastName, code string) string {
	return fmt.Sprintf("Hi %s %s,\nYour verification code is:\n%s\n(valid for %d minutes)\n",
		firstName, lastName, code, int(verification.CodeTTL.Minutes()))
}
