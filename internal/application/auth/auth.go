package authapp

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	"gitlab.com/souqly/auth-backend/internal/domain/account"
	"gitlab.com/souqly/auth-backend/pkg/errorx"
	"gitlab.com/souqly/auth-backend/pkg/logging"
	"gitlab.com/souqly/auth-backend/pkg/otelx"
)

var (
	tracer = otel.Tracer("souqly/internal/application/auth")
	logger = otelslog.NewLogger("souqly/internal/application/auth")
)

// dummyHash is compared against when the email is unknown so that path costs one bcrypt run too.
var dummyHash = sync.OnceValue(func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("souqly-login-placeholder"), account.PasswordCostFactor)
	if err != nil {
		panic(err)
	}
	return h
})

type AccountGetter interface {
	GetAccountByEmail(ctx context.Context, email string) (*account.Account, error)
}

type App struct {
	tracer   trace.Tracer
	logger   *slog.Logger
	accounts AccountGetter
	sessions *SessionIssuer
}

type Args struct {
	Tracer        trace.Tracer
	Logger        *slog.Logger
	AccountGetter AccountGetter
	SessionIssuer *SessionIssuer
}

func NewApp(args Args) *App {
	app := &App{
		tracer:   tracer,
		logger:   logger,
		accounts: args.AccountGetter,
		sessions: args.SessionIssuer,
	}
	if args.Tracer != nil {
		app.tracer = args.Tracer
	}
	if args.Logger != nil {
		app.logger = args.Logger
	}
	return app
}

type Login struct {
	Email    string
	Password string
}

type LoginResponse struct {
	Account        *account.Account
	AccessToken    string
	AccessTokenExp time.Duration
}

// LoginHandle checks the seller approval gate, then the password, and issues an access token.
// Unknown emails and wrong passwords fail with the same error.
func (a *App) LoginHandle(ctx context.Context, cmd Login) (LoginResponse, error) {
	const op = "authapp.App.LoginHandle"
	ctx, span := a.tracer.Start(ctx, "App.LoginHandle",
		trace.WithAttributes(attribute.String("account.email", logging.RedactEmail(cmd.Email))))
	defer span.End()

	acc, err := a.accounts.GetAccountByEmail(ctx, cmd.Email)
	if errors.Is(err, account.ErrAccountNotFound) {
		_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(cmd.Password))
		otelx.RecordSpanError(span, err, "account not found")
		return LoginResponse{}, errorx.Wrap(account.ErrInvalidCredentials.WithCause(err), op)
	}
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to get account")
		return LoginResponse{}, errorx.Wrap(err, op)
	}
	otelx.SetSpanAttrs(span, map[string]any{
		"account.id":   acc.ID().String(),
		"account.role": acc.Role().String(),
	})

	if err := acc.CanAuthenticate(); err != nil {
		_ = acc.ComparePassword(cmd.Password)
		otelx.RecordSpanError(span, err, "account not approved")
		return LoginResponse{}, errorx.Wrap(err, op)
	}

	if err := acc.ComparePassword(cmd.Password); err != nil {
		otelx.RecordSpanError(span, err, "password mismatch")
		return LoginResponse{}, errorx.Wrap(err, op)
	}

	token, err := a.sessions.Issue(acc)
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to issue access token")
		return LoginResponse{}, errorx.Wrap(errorx.NewInternalError().WithCause(err), op)
	}

	a.logger.DebugContext(ctx, "account logged in", slog.String("account.id", acc.ID().String()))

	return LoginResponse{
		Account:        acc,
		AccessToken:    token,
		AccessTokenExp: a.sessions.TTL(),
	}, nil
}
