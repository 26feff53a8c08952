package account

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"gitlab.com/souqly/auth-backend/internal/domain/valueobject/role"
)

// Draft is the signup payload held by a pending email verification until the code is confirmed.
// It only carries allow-listed fields; card review state is not representable here.
type Draft struct {
	FirstName   string
	LastName    string
	Email       string
	Role        role.Role
	Language    Language
	PhoneNumber string
	PassHash    []byte
	Seller      *SellerDraft
	Buyer       *BuyerDraft
}

type SellerDraft struct {
	ShopName        string
	ShopDescription string
	LogoURL         string
	CoverImageURL   string
	Categories      []string
	Address         string
	Card            *CardSubmission
}

type BuyerDraft struct {
	PhoneNumber string
	Address     *Address
}

type SellerDraftArgs struct {
	ShopName        string
	ShopDescription string
	LogoURL         string
	CoverImageURL   string
	Categories      []string
	Address         string
	IDType          string
	IDNumber        string
}

type DraftArgs struct {
	FirstName   string
	LastName    string
	Email       string
	Role        string
	Language    string
	PhoneNumber string
	PassHash    []byte
	Seller      SellerDraftArgs
	Address     *Address
	// DocumentURL is the stored identity document, empty when none was uploaded.
	DocumentURL string
	Now         time.Time
}

// NewDraft builds the signup payload. Role defaults to buyer and admin is rejected.
// A seller gets a default shop name and a card only when a document was stored.
func NewDraft(args DraftArgs) (*Draft, error) {
	r := role.Role(args.Role)
	if r == "" {
		r = role.Buyer
	}
	if !r.IsSelfRegistrable() {
		return nil, ErrInvalidRole
	}

	lang, err := ParseLanguage(args.Language)
	if err != nil {
		return nil, ErrInvalidDraft.WithCause(err)
	}

	d := &Draft{
		FirstName:   args.FirstName,
		LastName:    args.LastName,
		Email:       args.Email,
		Role:        r,
		Language:    lang,
		PhoneNumber: args.PhoneNumber,
		PassHash:    args.PassHash,
	}

	switch r {
	case role.Seller:
		shopName := strings.TrimSpace(args.Seller.ShopName)
		if shopName == "" {
			shopName = DefaultShopName(args.FirstName)
		}
		d.Seller = &SellerDraft{
			ShopName:        shopName,
			ShopDescription: args.Seller.ShopDescription,
			LogoURL:         args.Seller.LogoURL,
			CoverImageURL:   args.Seller.CoverImageURL,
			Categories:      slices.Clone(args.Seller.Categories),
			Address:         args.Seller.Address,
		}
		if args.DocumentURL != "" {
			idType := strings.TrimSpace(args.Seller.IDType)
			if idType == "" {
				idType = DefaultIDType
			}
			idNumber := strings.TrimSpace(args.Seller.IDNumber)
			if idNumber == "" {
				idNumber = DefaultIDNumber
			}
			d.Seller.Card = &CardSubmission{
				IDType:      idType,
				IDNumber:    idNumber,
				DocumentURL: args.DocumentURL,
				SubmittedAt: args.Now.UTC(),
			}
		}
	case role.Buyer:
		d.Buyer = &BuyerDraft{PhoneNumber: args.PhoneNumber}
		if args.Address != nil {
			addr := *args.Address
			d.Buyer.Address = &addr
		}
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// DefaultShopName is "<first name> Shop", or "Seller Shop" without a first name.
func DefaultShopName(firstName string) string {
	firstName = strings.TrimSpace(firstName)
	if firstName == "" {
		firstName = "Seller"
	}
	return firstName + " Shop"
}

// Validate checks that the payload variant matches the role and that every card has a document.
func (d *Draft) Validate() error {
	if d == nil {
		return ErrInvalidDraft.WithCause(errors.New("draft is nil"))
	}
	if d.Email == "" || len(d.PassHash) == 0 {
		return ErrInvalidDraft.WithCause(errors.New("email and password hash are required"))
	}

	switch d.Role {
	case role.Seller:
		if d.Seller == nil || d.Buyer != nil {
			return ErrInvalidDraft.WithCause(errors.New("seller draft must carry only a seller profile"))
		}
		if d.Seller.ShopName == "" {
			return ErrInvalidDraft.WithCause(errors.New("seller draft without shop name"))
		}
		if d.Seller.Card != nil && d.Seller.Card.DocumentURL == "" {
			return ErrMissingDocument
		}
	case role.Buyer:
		if d.Buyer == nil || d.Seller != nil {
			return ErrInvalidDraft.WithCause(errors.New("buyer draft must carry only a buyer profile"))
		}
	case role.Admin:
		return ErrInvalidRole
	default:
		return ErrInvalidDraft.WithCause(fmt.Errorf("unknown role %q", d.Role))
	}
	return nil
}
