package middlewares

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"gitlab.com/souqly/auth-backend/internal/domain/valueobject/role"
	"gitlab.com/souqly/auth-backend/pkg/ctxs"
	"gitlab.com/souqly/auth-backend/pkg/errorx"
	"gitlab.com/souqly/auth-backend/pkg/httpx"
	"gitlab.com/souqly/auth-backend/pkg/otelx"
)

var (
	tracer = otel.Tracer("souqly/internal/ports/http/middlewares")
	logger = otelslog.NewLogger("souqly/internal/ports/http/middlewares")
)

const maxTokenLen = 4096

type TokenParser interface {
	ParseAccessToken(token string) (*ctxs.Principal, error)
}

type Middleware struct {
	tracer     trace.Tracer
	logger     *slog.Logger
	tokens     TokenParser
	errhandler *httpx.ErrorHandler
}

type Args struct {
	Tracer      trace.Tracer
	Logger      *slog.Logger
	TokenParser TokenParser
	Errhandler  *httpx.ErrorHandler
}

func NewMiddleware(args Args) *Middleware {
	m := &Middleware{
		tracer:     args.Tracer,
		logger:     args.Logger,
		tokens:     args.TokenParser,
		errhandler: args.Errhandler,
	}

	if m.tracer == nil {
		m.tracer = tracer
	}
	if m.logger == nil {
		m.logger = logger
	}
	if m.tokens == nil {
		panic("token parser is required for auth middleware")
	}
	if m.errhandler == nil {
		panic("error handler is required for auth middleware")
	}
	return m
}

// Auth requires "Authorization: Bearer <token>" and puts the caller into the request context.
func (m *Middleware) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := m.tracer.Start(r.Context(), "AuthMiddleware")
		defer span.End()

		token, err := bearerToken(r.Header.Get("Authorization"))
		if err != nil {
			m.errhandler.HandleError(w, r, span, errorx.NewUnauthorized().WithCause(err), "missing bearer token")
			return
		}

		principal, err := m.tokens.ParseAccessToken(token)
		if err != nil {
			m.errhandler.HandleError(w, r, span, err, "failed to parse access token")
			return
		}
		otelx.SetSpanAttrs(span, map[string]any{
			"account.id":   principal.ID.String(),
			"account.role": principal.Role.String(),
		})

		next.ServeHTTP(w, r.WithContext(ctxs.WithPrincipal(ctx, principal)))
	})
}

// RequireRole lets through only callers whose role is one of roles. It must run after Auth.
func (m *Middleware) RequireRole(roles ...role.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := ctxs.PrincipalFromCtx(r.Context())
			if !ok {
				span := trace.SpanFromContext(r.Context())
				m.errhandler.HandleError(w, r, span, errorx.NewUnauthorized(), "no principal in context")
				return
			}
			if !slices.Contains(roles, principal.Role) {
				span := trace.SpanFromContext(r.Context())
				err := errorx.NewForbidden().WithCause(fmt.Errorf("role %q not in %v", principal.Role, roles))
				m.errhandler.HandleError(w, r, span, err, "role not allowed")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", errors.New("authorization header must be a bearer token")
	}
	token = strings.TrimSpace(token)
	if token == "" || len(token) > maxTokenLen {
		return "", errors.New("bearer token is empty or too long")
	}
	return token, nil
}
