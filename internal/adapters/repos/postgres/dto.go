package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gitlab.com/souqly/auth-backend/internal/domain/account"
	"gitlab.com/souqly/auth-backend/internal/domain/valueobject/role"
	"gitlab.com/souqly/auth-backend/internal/domain/verification"
)

type AccountDTO struct {
	ID                uuid.UUID
	Email             string
	PassHash          []byte
	Role              string
	FirstName         string
	LastName          string
	Language          string
	PhoneNumber       string
	SellerProfile     []byte
	BuyerProfile      []byte
	NotificationToken string
	PasswordChangedAt *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type WorkingHoursJSON struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

type CardJSON struct {
	IDType          string     `json:"id_type"`
	IDNumber        string     `json:"id_number"`
	DocumentURL     string     `json:"document_url"`
	SubmittedAt     time.Time  `json:"submitted_at"`
	Status          string     `json:"status"`
	VerifiedBy      *uuid.UUID `json:"verified_by,omitempty"`
	VerifiedAt      *time.Time `json:"verified_at,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
}

type SellerProfileJSON struct {
	ShopName        string           `json:"shop_name"`
	ShopDescription string           `json:"shop_description,omitempty"`
	LogoURL         string           `json:"logo_url,omitempty"`
	CoverImageURL   string           `json:"cover_image_url,omitempty"`
	Categories      []string         `json:"categories,omitempty"`
	Address         string           `json:"address,omitempty"`
	WorkingHours    WorkingHoursJSON `json:"working_hours"`
	Rating          float64          `json:"rating"`
	TotalSales      int              `json:"total_sales"`
	Card            *CardJSON        `json:"card,omitempty"`
}

type AddressJSON struct {
	Country    string `json:"country,omitempty"`
	City       string `json:"city,omitempty"`
	Street     string `json:"street,omitempty"`
	Building   string `json:"building,omitempty"`
	Floor      string `json:"floor,omitempty"`
	Apartment  string `json:"apartment,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
}

type BuyerProfileJSON struct {
	PhoneNumber            string       `json:"phone_number,omitempty"`
	Address                *AddressJSON `json:"address,omitempty"`
	PreferredPaymentMethod string       `json:"preferred_payment_method,omitempty"`
	PreferredCategories    []string     `json:"preferred_categories,omitempty"`
}

func DomainToAccountDTO(a *account.Account) (AccountDTO, error) {
	dto := AccountDTO{
		ID:                uuid.UUID(a.ID()),
		Email:             a.Email(),
		PassHash:          a.PassHash(),
		Role:              a.Role().String(),
		FirstName:         a.FirstName(),
		LastName:          a.LastName(),
		Language:          a.Language().String(),
		PhoneNumber:       a.PhoneNumber(),
		NotificationToken: a.NotificationToken(),
		PasswordChangedAt: a.PasswordChangedAt(),
		CreatedAt:         a.CreatedAt(),
		UpdatedAt:         a.UpdatedAt(),
	}

	var err error
	switch p := a.Profile().(type) {
	case *account.SellerProfile:
		dto.SellerProfile, err = json.Marshal(sellerProfileToJSON(p))
	case *account.BuyerProfile:
		dto.BuyerProfile, err = json.Marshal(buyerProfileToJSON(p))
	}
	if err != nil {
		return AccountDTO{}, fmt.Errorf("failed to marshal profile: %w", err)
	}
	return dto, nil
}

func AccountToDomain(dto AccountDTO) (*account.Account, error) {
	var profile account.Profile
	switch {
	case len(dto.SellerProfile) > 0:
		var sp SellerProfileJSON
		if err := json.Unmarshal(dto.SellerProfile, &sp); err != nil {
			return nil, fmt.Errorf("failed to unmarshal seller profile: %w", err)
		}
		profile = sellerProfileToDomain(sp)
	case len(dto.BuyerProfile) > 0:
		var bp BuyerProfileJSON
		if err := json.Unmarshal(dto.BuyerProfile, &bp); err != nil {
			return nil, fmt.Errorf("failed to unmarshal buyer profile: %w", err)
		}
		profile = buyerProfileToDomain(bp)
	}

	return account.Rehydrate(account.RehydrateArgs{
		ID:                account.ID(dto.ID),
		Email:             dto.Email,
		PassHash:          dto.PassHash,
		Role:              role.Role(dto.Role),
		FirstName:         dto.FirstName,
		LastName:          dto.LastName,
		Language:          account.Language(dto.Language),
		PhoneNumber:       dto.PhoneNumber,
		Profile:           profile,
		NotificationToken: dto.NotificationToken,
		PasswordChangedAt: dto.PasswordChangedAt,
		CreatedAt:         dto.CreatedAt,
		UpdatedAt:         dto.UpdatedAt,
	}), nil
}

func sellerProfileToJSON(p *account.SellerProfile) SellerProfileJSON {
	out := SellerProfileJSON{
		ShopName:        p.ShopName,
		ShopDescription: p.ShopDescription,
		LogoURL:         p.LogoURL,
		CoverImageURL:   p.CoverImageURL,
		Categories:      p.Categories,
		Address:         p.Address,
		WorkingHours:    WorkingHoursJSON{Open: p.WorkingHours.Open, Close: p.WorkingHours.Close},
		Rating:          p.Rating,
		TotalSales:      p.TotalSales,
	}
	if c := p.Card; c != nil {
		out.Card = &CardJSON{
			IDType:          c.IDType,
			IDNumber:        c.IDNumber,
			DocumentURL:     c.DocumentURL,
			SubmittedAt:     c.SubmittedAt,
			Status:          c.Status.String(),
			VerifiedAt:      c.VerifiedAt,
			RejectionReason: c.RejectionReason,
		}
		if c.VerifiedBy != nil {
			by := uuid.UUID(*c.VerifiedBy)
			out.Card.VerifiedBy = &by
		}
	}
	return out
}

func sellerProfileToDomain(sp SellerProfileJSON) *account.SellerProfile {
	p := &account.SellerProfile{
		ShopName:        sp.ShopName,
		ShopDescription: sp.ShopDescription,
		LogoURL:         sp.LogoURL,
		CoverImageURL:   sp.CoverImageURL,
		Categories:      sp.Categories,
		Address:         sp.Address,
		WorkingHours:    account.WorkingHours{Open: sp.WorkingHours.Open, Close: sp.WorkingHours.Close},
		Rating:          sp.Rating,
		TotalSales:      sp.TotalSales,
	}
	if c := sp.Card; c != nil {
		p.Card = &account.VerificationCard{
			IDType:          c.IDType,
			IDNumber:        c.IDNumber,
			DocumentURL:     c.DocumentURL,
			SubmittedAt:     c.SubmittedAt,
			Status:          account.CardStatus(c.Status),
			VerifiedAt:      c.VerifiedAt,
			RejectionReason: c.RejectionReason,
		}
		if c.VerifiedBy != nil {
			by := account.ID(*c.VerifiedBy)
			p.Card.VerifiedBy = &by
		}
	}
	return p
}

func addressToJSON(a *account.Address) *AddressJSON {
	if a == nil {
		return nil
	}
	return &AddressJSON{
		Country:    a.Country,
		City:       a.City,
		Street:     a.Street,
		Building:   a.Building,
		Floor:      a.Floor,
		Apartment:  a.Apartment,
		PostalCode: a.PostalCode,
	}
}

func addressToDomain(a *AddressJSON) *account.Address {
	if a == nil {
		return nil
	}
	return &account.Address{
		Country:    a.Country,
		City:       a.City,
		Street:     a.Street,
		Building:   a.Building,
		Floor:      a.Floor,
		Apartment:  a.Apartment,
		PostalCode: a.PostalCode,
	}
}

func buyerProfileToJSON(p *account.BuyerProfile) BuyerProfileJSON {
	return BuyerProfileJSON{
		PhoneNumber:            p.PhoneNumber,
		Address:                addressToJSON(p.Address),
		PreferredPaymentMethod: p.PreferredPaymentMethod,
		PreferredCategories:    p.PreferredCategories,
	}
}

func buyerProfileToDomain(bp BuyerProfileJSON) *account.BuyerProfile {
	return &account.BuyerProfile{
		PhoneNumber:            bp.PhoneNumber,
		Address:                addressToDomain(bp.Address),
		PreferredPaymentMethod: bp.PreferredPaymentMethod,
		PreferredCategories:    bp.PreferredCategories,
	}
}

type VerificationDTO struct {
	ID        uuid.UUID
	Email     string
	Purpose   string
	CodeHash  []byte
	ExpiresAt time.Time
	Verified  bool
	Draft     []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CardSubmissionJSON struct {
	IDType      string    `json:"id_type"`
	IDNumber    string    `json:"id_number"`
	DocumentURL string    `json:"document_url"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type SellerDraftJSON struct {
	ShopName        string              `json:"shop_name"`
	ShopDescription string              `json:"shop_description,omitempty"`
	LogoURL         string              `json:"logo_url,omitempty"`
	CoverImageURL   string              `json:"cover_image_url,omitempty"`
	Categories      []string            `json:"categories,omitempty"`
	Address         string              `json:"address,omitempty"`
	Card            *CardSubmissionJSON `json:"card,omitempty"`
}

type BuyerDraftJSON struct {
	PhoneNumber string       `json:"phone_number,omitempty"`
	Address     *AddressJSON `json:"address,omitempty"`
}

// DraftJSON is the signup payload as stored in verifications.draft. The password is kept as its bcrypt hash.
type DraftJSON struct {
	FirstName   string           `json:"first_name"`
	LastName    string           `json:"last_name"`
	Email       string           `json:"email"`
	Role        string           `json:"role"`
	Language    string           `json:"language"`
	PhoneNumber string           `json:"phone_number,omitempty"`
	PassHash    []byte           `json:"pass_hash"`
	Seller      *SellerDraftJSON `json:"seller,omitempty"`
	Buyer       *BuyerDraftJSON  `json:"buyer,omitempty"`
}

func DomainToVerificationDTO(v *verification.PendingVerification) (VerificationDTO, error) {
	dto := VerificationDTO{
		ID:        uuid.UUID(v.ID()),
		Email:     v.Email(),
		Purpose:   v.Purpose().String(),
		CodeHash:  v.CodeHash(),
		ExpiresAt: v.ExpiresAt(),
		Verified:  v.IsVerified(),
		CreatedAt: v.CreatedAt(),
		UpdatedAt: v.UpdatedAt(),
	}
	if d := v.Draft(); d != nil {
		raw, err := json.Marshal(draftToJSON(d))
		if err != nil {
			return VerificationDTO{}, fmt.Errorf("failed to marshal draft: %w", err)
		}
		dto.Draft = raw
	}
	return dto, nil
}

func VerificationToDomain(dto VerificationDTO) (*verification.PendingVerification, error) {
	var draft *account.Draft
	if len(dto.Draft) > 0 {
		var dj DraftJSON
		if err := json.Unmarshal(dto.Draft, &dj); err != nil {
			return nil, fmt.Errorf("failed to unmarshal draft: %w", err)
		}
		draft = draftToDomain(dj)
	}

	return verification.Rehydrate(verification.RehydrateArgs{
		ID:        verification.ID(dto.ID),
		Email:     dto.Email,
		Purpose:   verification.Purpose(dto.Purpose),
		CodeHash:  dto.CodeHash,
		ExpiresAt: dto.ExpiresAt,
		Verified:  dto.Verified,
		Draft:     draft,
		CreatedAt: dto.CreatedAt,
		UpdatedAt: dto.UpdatedAt,
	}), nil
}

func draftToJSON(d *account.Draft) DraftJSON {
	out := DraftJSON{
		FirstName:   d.FirstName,
		LastName:    d.LastName,
		Email:       d.Email,
		Role:        d.Role.String(),
		Language:    d.Language.String(),
		PhoneNumber: d.PhoneNumber,
		PassHash:    d.PassHash,
	}
	if s := d.Seller; s != nil {
		out.Seller = &SellerDraftJSON{
			ShopName:        s.ShopName,
			ShopDescription: s.ShopDescription,
			LogoURL:         s.LogoURL,
			CoverImageURL:   s.CoverImageURL,
			Categories:      s.Categories,
			Address:         s.Address,
		}
		if c := s.Card; c != nil {
			out.Seller.Card = &CardSubmissionJSON{
				IDType:      c.IDType,
				IDNumber:    c.IDNumber,
				DocumentURL: c.DocumentURL,
				SubmittedAt: c.SubmittedAt,
			}
		}
	}
	if b := d.Buyer; b != nil {
		out.Buyer = &BuyerDraftJSON{
			PhoneNumber: b.PhoneNumber,
			Address:     addressToJSON(b.Address),
		}
	}
	return out
}

func draftToDomain(dj DraftJSON) *account.Draft {
	d := &account.Draft{
		FirstName:   dj.FirstName,
		LastName:    dj.LastName,
		Email:       dj.Email,
		Role:        role.Role(dj.Role),
		Language:    account.Language(dj.Language),
		PhoneNumber: dj.PhoneNumber,
		PassHash:    dj.PassHash,
	}
	if s := dj.Seller; s != nil {
		d.Seller = &account.SellerDraft{
			ShopName:        s.ShopName,
			ShopDescription: s.ShopDescription,
			LogoURL:         s.LogoURL,
			CoverImageURL:   s.CoverImageURL,
			Categories:      s.Categories,
			Address:         s.Address,
		}
		if c := s.Card; c != nil {
			d.Seller.Card = &account.CardSubmission{
				IDType:      c.IDType,
				IDNumber:    c.IDNumber,
				DocumentURL: c.DocumentURL,
				SubmittedAt: c.SubmittedAt,
			}
		}
	}
	if b := dj.Buyer; b != nil {
		d.Buyer = &account.BuyerDraft{
			PhoneNumber: b.PhoneNumber,
			Address:     addressToDomain(b.Address),
		}
	}
	return d
}
