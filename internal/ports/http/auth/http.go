package authhttp

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ARUMANDESU/validation"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	accountapp "gitlab.com/souqly/auth-backend/internal/application/account"
	accountcmd "gitlab.com/souqly/auth-backend/internal/application/account/cmd"
	"gitlab.com/souqly/auth-backend/internal/application/account/query"
	authapp "gitlab.com/souqly/auth-backend/internal/application/auth"
	"gitlab.com/souqly/auth-backend/internal/application/passwordreset"
	"gitlab.com/souqly/auth-backend/internal/application/registration"
	"gitlab.com/souqly/auth-backend/internal/adapters/services/s3"
	"gitlab.com/souqly/auth-backend/pkg/ctxs"
	"gitlab.com/souqly/auth-backend/pkg/errorx"
	"gitlab.com/souqly/auth-backend/pkg/httpx"
	"gitlab.com/souqly/auth-backend/pkg/logging"
	"gitlab.com/souqly/auth-backend/pkg/otelx"
	"gitlab.com/souqly/auth-backend/pkg/sanitizex"
	"gitlab.com/souqly/auth-backend/pkg/validationx"
)

var (
	tracer = otel.Tracer("souqly/internal/ports/http/auth")
	logger = otelslog.NewLogger("souqly/internal/ports/http/auth")
)

// DocumentStore keeps seller identity documents uploaded with a signup.
type DocumentStore interface {
	UploadSellerDocument(ctx context.Context, ownerID string, doc s3.Document) (string, error)
	DeleteDocument(ctx context.Context, url string) error
}

type HTTP struct {
	tracer        trace.Tracer
	logger        *slog.Logger
	auth          *authapp.App
	registration  *registration.App
	passwordreset *passwordreset.App
	account       *accountapp.App
	documents     DocumentStore
	errhandler    *httpx.ErrorHandler
}

type Args struct {
	Tracer        trace.Tracer
	Logger        *slog.Logger
	AuthApp       *authapp.App
	Registration  *registration.App
	PasswordReset *passwordreset.App
	AccountApp    *accountapp.App
	Documents     DocumentStore
	Errhandler    *httpx.ErrorHandler
}

func NewHTTP(args Args) *HTTP {
	if args.Tracer == nil {
		args.Tracer = tracer
	}
	if args.Logger == nil {
		args.Logger = logger
	}

	return &HTTP{
		tracer:        args.Tracer,
		logger:        args.Logger,
		auth:          args.AuthApp,
		registration:  args.Registration,
		passwordreset: args.PasswordReset,
		account:       args.AccountApp,
		documents:     args.Documents,
		errhandler:    args.Errhandler,
	}
}

// Route mounts the public auth endpoints. authenticated wraps the ones that need a session.
func (h *HTTP) Route(r chi.Router, authenticated func(http.Handler) http.Handler) {
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/signup", h.Signup)
		r.Post("/verifyEmailUser", h.VerifyEmail)
		r.Post("/login", h.Login)
		r.Post("/forgetPassword", h.ForgetPassword)
		r.Post("/verifyForgotPasswordCode", h.VerifyForgotPasswordCode)
		r.Post("/resetPassword", h.ResetPassword)
		r.With(authenticated).Post("/updateFcmToken", h.UpdateFcmToken)
	})
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Sanitized() {
	r.Email = sanitizex.Email(r.Email)
}

func (r *LoginRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email, validationx.EmailRules...),
		validation.Field(&r.Password, validation.Required, validation.Length(1, validationx.MaxPasswordLen)),
	)
}

func (h *HTTP) Login(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "Login")
	defer span.End()

	var req LoginRequest
	if err := httpx.ReadJSON(w, r, &req); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to read json")
		return
	}

	req.Sanitized()
	otelx.SetSpanAttrs(span, map[string]any{"email": logging.RedactEmail(req.Email)})
	if err := req.Validate(); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to validate request body")
		return
	}

	res, err := h.auth.LoginHandle(ctx, authapp.Login{Email: req.Email, Password: req.Password})
	if err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to login")
		return
	}

	httpx.Success(w, r, http.StatusOK, httpx.Envelope{
		"token":     res.AccessToken,
		"expiresIn": int(res.AccessTokenExp.Seconds()),
		"user":      query.NewAccountView(res.Account),
	})
}

type UpdateFcmTokenRequest struct {
	FcmToken string `json:"fcmToken"`
}

func (r *UpdateFcmTokenRequest) Sanitized() {
	r.FcmToken = strings.TrimSpace(r.FcmToken)
}

func (r *UpdateFcmTokenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.FcmToken, validationx.NotificationTokenRules...),
	)
}

func (h *HTTP) UpdateFcmToken(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UpdateFcmToken")
	defer span.End()

	principal, ok := ctxs.PrincipalFromCtx(ctx)
	if !ok {
		h.errhandler.HandleError(w, r, span, errorx.NewUnauthorized(), "no principal in context")
		return
	}

	var req UpdateFcmTokenRequest
	if err := httpx.ReadJSON(w, r, &req); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to read json")
		return
	}

	req.Sanitized()
	otelx.SetSpanAttrs(span, map[string]any{"account.id": principal.ID.String()})
	if err := req.Validate(); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to validate request body")
		return
	}

	err := h.account.CMD.UpdateNotificationToken.Handle(ctx, accountcmd.UpdateNotificationToken{
		AccountID: principal.ID,
		Token:     req.FcmToken,
	})
	if err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to update notification token")
		return
	}

	httpx.Success(w, r, http.StatusOK, httpx.Envelope{"message": "FCM Token updated successfully."})
}
