package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	accountapp "gitlab.com/souqly/auth-backend/internal/application/account"
	authapp "gitlab.com/souqly/auth-backend/internal/application/auth"
	"gitlab.com/souqly/auth-backend/internal/application/passwordreset"
	"gitlab.com/souqly/auth-backend/internal/application/registration"
	accounthttp "gitlab.com/souqly/auth-backend/internal/ports/http/account"
	authhttp "gitlab.com/souqly/auth-backend/internal/ports/http/auth"
	"gitlab.com/souqly/auth-backend/internal/ports/http/middlewares"
	"gitlab.com/souqly/auth-backend/pkg/httpx"
)

// DocumentStore is satisfied by the S3 document store.
type DocumentStore interface {
	authhttp.DocumentStore
	accounthttp.DocumentStore
}

type Port struct {
	auth       *authhttp.HTTP
	account    *accounthttp.HTTP
	middleware *middlewares.Middleware
	timeout    time.Duration
}

type Args struct {
	AuthApp       *authapp.App
	Registration  *registration.App
	PasswordReset *passwordreset.App
	AccountApp    *accountapp.App
	Documents     DocumentStore
	TokenParser   middlewares.TokenParser
	Errhandler    *httpx.ErrorHandler
	// RequestTimeout bounds every handler's context. Zero means 30s.
	RequestTimeout time.Duration
}

func NewPort(args Args) *Port {
	if args.RequestTimeout == 0 {
		args.RequestTimeout = 30 * time.Second
	}

	return &Port{
		auth: authhttp.NewHTTP(authhttp.Args{
			AuthApp:       args.AuthApp,
			Registration:  args.Registration,
			PasswordReset: args.PasswordReset,
			AccountApp:    args.AccountApp,
			Documents:     args.Documents,
			Errhandler:    args.Errhandler,
		}),
		account: accounthttp.NewHTTP(accounthttp.Args{
			App:        args.AccountApp,
			Documents:  args.Documents,
			Errhandler: args.Errhandler,
		}),
		middleware: middlewares.NewMiddleware(middlewares.Args{
			TokenParser: args.TokenParser,
			Errhandler:  args.Errhandler,
		}),
		timeout: args.RequestTimeout,
	}
}

// Route builds the full router when r is nil, or mounts the routes onto r.
func (p *Port) Route(r chi.Router) chi.Router {
	if r == nil {
		r = chi.NewRouter()
	}

	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middlewares.OTel,
		middlewares.Logger,
		middleware.Recoverer,
		middleware.Timeout(p.timeout),
	)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.Success(w, r, http.StatusOK, nil)
	})

	p.auth.Route(r, p.middleware.Auth)
	p.account.Route(r, p.middleware)

	return r
}
