package accounthttp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ARUMANDESU/validation"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	accountapp "gitlab.com/souqly/auth-backend/internal/application/account"
	"gitlab.com/souqly/auth-backend/internal/application/account/cmd"
	"gitlab.com/souqly/auth-backend/internal/application/account/query"
	"gitlab.com/souqly/auth-backend/internal/adapters/services/s3"
	"gitlab.com/souqly/auth-backend/internal/domain/account"
	"gitlab.com/souqly/auth-backend/internal/domain/valueobject/role"
	"gitlab.com/souqly/auth-backend/pkg/ctxs"
	"gitlab.com/souqly/auth-backend/pkg/errorx"
	"gitlab.com/souqly/auth-backend/pkg/httpx"
	"gitlab.com/souqly/auth-backend/pkg/otelx"
	"gitlab.com/souqly/auth-backend/pkg/sanitizex"
)

var (
	tracer = otel.Tracer("souqly/internal/ports/http/account")
	logger = otelslog.NewLogger("souqly/internal/ports/http/account")
)

const (
	DocumentField    = "verificationDocument"
	maxMultipartSize = s3.MaxDocumentSize + 1<<20
)

type DocumentStore interface {
	UploadSellerDocument(ctx context.Context, ownerID string, doc s3.Document) (string, error)
	DeleteDocument(ctx context.Context, url string) error
}

// Guard is the auth middleware: Auth resolves the caller, RequireRole filters by role.
type Guard interface {
	Auth(next http.Handler) http.Handler
	RequireRole(roles ...role.Role) func(http.Handler) http.Handler
}

type HTTP struct {
	tracer     trace.Tracer
	logger     *slog.Logger
	app        *accountapp.App
	documents  DocumentStore
	errhandler *httpx.ErrorHandler
}

type Args struct {
	Tracer     trace.Tracer
	Logger     *slog.Logger
	App        *accountapp.App
	Documents  DocumentStore
	Errhandler *httpx.ErrorHandler
}

func NewHTTP(args Args) *HTTP {
	if args.Tracer == nil {
		args.Tracer = tracer
	}
	if args.Logger == nil {
		args.Logger = logger
	}

	return &HTTP{
		tracer:     args.Tracer,
		logger:     args.Logger,
		app:        args.App,
		documents:  args.Documents,
		errhandler: args.Errhandler,
	}
}

func (h *HTTP) Route(r chi.Router, guard Guard) {
	r.Group(func(r chi.Router) {
		r.Use(guard.Auth)

		r.Get("/api/v1/me", h.GetMe)

		r.With(guard.RequireRole(role.Seller)).
			Post("/api/v1/sellers/me/verification-card", h.SubmitVerificationCard)

		r.Group(func(r chi.Router) {
			r.Use(guard.RequireRole(role.Admin))
			r.Post("/api/v1/admin/sellers/{sellerID}/verification-card/approve", h.ApproveVerificationCard)
			r.Post("/api/v1/admin/sellers/{sellerID}/verification-card/reject", h.RejectVerificationCard)
		})
	})
}

func (h *HTTP) GetMe(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetMe")
	defer span.End()

	principal, ok := ctxs.PrincipalFromCtx(ctx)
	if !ok {
		h.errhandler.HandleError(w, r, span, errorx.NewUnauthorized(), "no principal in context")
		return
	}

	view, err := h.app.Query.GetAccount.Handle(ctx, query.GetAccount{ID: principal.ID})
	if err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to get account")
		return
	}

	httpx.Success(w, r, http.StatusOK, httpx.Envelope{"user": view})
}

type SubmitCardRequest struct {
	IDType   string
	IDNumber string
}

func (r *SubmitCardRequest) Sanitized() {
	r.IDType = sanitizex.CleanSingleLine(r.IDType)
	r.IDNumber = sanitizex.CleanSingleLine(r.IDNumber)
}

func (r *SubmitCardRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.IDType, validation.Required, validation.Length(1, 50)),
		validation.Field(&r.IDNumber, validation.Required, validation.Length(1, 100)),
	)
}

// SubmitVerificationCard takes a multipart form with idType, idNumber and the document file.
func (h *HTTP) SubmitVerificationCard(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "SubmitVerificationCard")
	defer span.End()

	principal, ok := ctxs.PrincipalFromCtx(ctx)
	if !ok {
		h.errhandler.HandleError(w, r, span, errorx.NewUnauthorized(), "no principal in context")
		return
	}
	otelx.SetSpanAttrs(span, map[string]any{"account.id": principal.ID.String()})

	r.Body = http.MaxBytesReader(w, r.Body, maxMultipartSize)
	if err := r.ParseMultipartForm(maxMultipartSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.errhandler.HandleError(w, r, span, s3.ErrDocumentTooLarge.WithCause(err), "document too large")
			return
		}
		h.errhandler.HandleError(w, r, span, errorx.NewInvalidRequest().WithCause(err), "failed to parse multipart form")
		return
	}

	req := SubmitCardRequest{
		IDType:   r.FormValue("idType"),
		IDNumber: r.FormValue("idNumber"),
	}
	req.Sanitized()
	if err := req.Validate(); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to validate request body")
		return
	}

	file, header, err := r.FormFile(DocumentField)
	if err != nil {
		h.errhandler.HandleError(w, r, span, account.ErrMissingDocument.WithCause(err), "missing verification document")
		return
	}
	defer file.Close()

	url, err := h.documents.UploadSellerDocument(ctx, principal.ID.String(), s3.Document{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	})
	if err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to upload verification document")
		return
	}

	err = h.app.CMD.SubmitVerificationCard.Handle(ctx, cmd.SubmitVerificationCard{
		AccountID:   principal.ID,
		IDType:      req.IDType,
		IDNumber:    req.IDNumber,
		DocumentURL: url,
	})
	if err != nil {
		if delErr := h.documents.DeleteDocument(context.WithoutCancel(ctx), url); delErr != nil {
			h.logger.WarnContext(ctx, "failed to remove uploaded document after failed submit",
				slog.String("url", url), slog.Any("error", delErr))
		}
		h.errhandler.HandleError(w, r, span, err, "failed to submit verification card")
		return
	}

	httpx.Success(w, r, http.StatusCreated, httpx.Envelope{"message": "Verification card submitted."})
}

type RejectCardRequest struct {
	Reason string `json:"reason"`
}

func (r *RejectCardRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Reason, validation.Required, validation.Length(1, 500)),
	)
}

func (h *HTTP) ApproveVerificationCard(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ApproveVerificationCard")
	defer span.End()

	h.review(ctx, w, r, span, true, "")
}

func (h *HTTP) RejectVerificationCard(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RejectVerificationCard")
	defer span.End()

	var req RejectCardRequest
	if err := httpx.ReadJSON(w, r, &req); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to read json")
		return
	}
	req.Reason = sanitizex.CleanMultiline(req.Reason)
	if err := req.Validate(); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to validate request body")
		return
	}

	h.review(ctx, w, r, span, false, req.Reason)
}

func (h *HTTP) review(ctx context.Context, w http.ResponseWriter, r *http.Request, span trace.Span, approve bool, reason string) {
	principal, ok := ctxs.PrincipalFromCtx(ctx)
	if !ok {
		h.errhandler.HandleError(w, r, span, errorx.NewUnauthorized(), "no principal in context")
		return
	}

	sellerID, err := account.ParseID(chi.URLParam(r, "sellerID"))
	if err != nil {
		h.errhandler.HandleError(w, r, span, errorx.NewInvalidRequest().WithCause(err), "invalid seller id")
		return
	}
	otelx.SetSpanAttrs(span, map[string]any{
		"admin.id":  principal.ID.String(),
		"seller.id": sellerID.String(),
		"approve":   approve,
	})

	err = h.app.CMD.ReviewVerificationCard.Handle(ctx, cmd.ReviewVerificationCard{
		AdminID:   principal.ID,
		AdminRole: principal.Role,
		SellerID:  sellerID,
		Approve:   approve,
		Reason:    reason,
	})
	if err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to review verification card")
		return
	}

	msg := "Verification card rejected."
	if approve {
		msg = "Verification card approved."
	}
	httpx.Success(w, r, http.StatusOK, httpx.Envelope{"message": msg})
}
