package query

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"gitlab.com/souqly/auth-backend/internal/domain/account"
	"gitlab.com/souqly/auth-backend/pkg/errorx"
	"gitlab.com/souqly/auth-backend/pkg/otelx"
)

var (
	tracer = otel.Tracer("souqly/internal/application/account/query")
	logger = otelslog.NewLogger("souqly/internal/application/account/query")
)

type AccountGetter interface {
	GetAccountByID(ctx context.Context, id account.ID) (*account.Account, error)
}

type GetAccount struct {
	ID account.ID
}

type GetAccountHandler struct {
	tracer   trace.Tracer
	logger   *slog.Logger
	accounts AccountGetter
}

type GetAccountHandlerArgs struct {
	Tracer        trace.Tracer
	Logger        *slog.Logger
	AccountGetter AccountGetter
}

func NewGetAccountHandler(args GetAccountHandlerArgs) *GetAccountHandler {
	if args.Tracer == nil {
		args.Tracer = tracer
	}
	if args.Logger == nil {
		args.Logger = logger
	}

	return &GetAccountHandler{
		tracer:   args.Tracer,
		logger:   args.Logger,
		accounts: args.AccountGetter,
	}
}

func (h *GetAccountHandler) Handle(ctx context.Context, q GetAccount) (*AccountView, error) {
	const op = "query.GetAccountHandler.Handle"
	ctx, span := h.tracer.Start(ctx, "GetAccountHandler.Handle",
		trace.WithAttributes(attribute.String("account.id", q.ID.String())))
	defer span.End()

	a, err := h.accounts.GetAccountByID(ctx, q.ID)
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to get account by id")
		return nil, errorx.Wrap(err, op)
	}

	v := NewAccountView(a)
	return &v, nil
}

// AccountView is the public shape of an account. Secrets such as the password hash
// and the notification token are never part of it.
type AccountView struct {
	ID          string      `json:"id"`
	Email       string      `json:"email"`
	FirstName   string      `json:"firstName"`
	LastName    string      `json:"lastName"`
	Role        string      `json:"role"`
	Language    string      `json:"language"`
	PhoneNumber string      `json:"phoneNumber,omitempty"`
	Seller      *SellerView `json:"sellerProfile,omitempty"`
	Buyer       *BuyerView  `json:"buyerProfile,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

type SellerView struct {
	ShopName         string    `json:"shopName"`
	ShopDescription  string    `json:"shopDescription,omitempty"`
	LogoURL          string    `json:"logoUrl,omitempty"`
	CoverImageURL    string    `json:"coverImageUrl,omitempty"`
	Categories       []string  `json:"categories,omitempty"`
	Address          string    `json:"address,omitempty"`
	OpeningTime      string    `json:"openingTime"`
	ClosingTime      string    `json:"closingTime"`
	Rating           float64   `json:"rating"`
	TotalSales       int       `json:"totalSales"`
	VerificationCard *CardView `json:"verificationCard,omitempty"`
}

type CardView struct {
	IDType          string     `json:"idType"`
	Status          string     `json:"status"`
	SubmittedAt     time.Time  `json:"submittedAt"`
	VerifiedAt      *time.Time `json:"verifiedAt,omitempty"`
	RejectionReason string     `json:"rejectionReason,omitempty"`
}

type BuyerView struct {
	PhoneNumber            string           `json:"phoneNumber,omitempty"`
	Address                *account.Address `json:"address,omitempty"`
	PreferredPaymentMethod string           `json:"preferredPaymentMethod,omitempty"`
	PreferredCategories    []string         `json:"preferredCategories,omitempty"`
}

func NewAccountView(a *account.Account) AccountView {
	v := AccountView{
		ID:          a.ID().String(),
		Email:       a.Email(),
		FirstName:   a.FirstName(),
		LastName:    a.LastName(),
		Role:        a.Role().String(),
		Language:    a.Language().String(),
		PhoneNumber: a.PhoneNumber(),
		CreatedAt:   a.CreatedAt(),
		UpdatedAt:   a.UpdatedAt(),
	}

	switch p := a.Profile().(type) {
	case *account.SellerProfile:
		v.Seller = &SellerView{
			ShopName:        p.ShopName,
			ShopDescription: p.ShopDescription,
			LogoURL:         p.LogoURL,
			CoverImageURL:   p.CoverImageURL,
			Categories:      p.Categories,
			Address:         p.Address,
			OpeningTime:     p.WorkingHours.Open,
			ClosingTime:     p.WorkingHours.Close,
			Rating:          p.Rating,
			TotalSales:      p.TotalSales,
		}
		if p.Card != nil {
			v.Seller.VerificationCard = &CardView{
				IDType:          p.Card.IDType,
				Status:          p.Card.Status.String(),
				SubmittedAt:     p.Card.SubmittedAt,
				VerifiedAt:      p.Card.VerifiedAt,
				RejectionReason: p.Card.RejectionReason,
			}
		}
	case *account.BuyerProfile:
		v.Buyer = &BuyerView{
			PhoneNumber:            p.PhoneNumber,
			Address:                p.Address,
			PreferredPaymentMethod: p.PreferredPaymentMethod,
			PreferredCategories:    p.PreferredCategories,
		}
	}

	return v
}
