package account

import (
	"slices"

	"gitlab.com/souqly/auth-backend/internal/domain/valueobject/role"
)

const (
	DefaultOpeningTime = "09:00"
	DefaultClosingTime = "21:00"
	DefaultCountry     = "Egypt"
)

// Profile is the role specific part of an account. Only *SellerProfile and *BuyerProfile implement it.
type Profile interface {
	ProfileRole() role.Role
	clone() Profile
}

type WorkingHours struct {
	Open  string
	Close string
}

type SellerProfile struct {
	ShopName        string
	ShopDescription string
	LogoURL         string
	CoverImageURL   string
	Categories      []string
	Address         string
	WorkingHours    WorkingHours
	Rating          float64
	TotalSales      int
	Card            *VerificationCard
}

func (*SellerProfile) ProfileRole() role.Role { return role.Seller }

func (p *SellerProfile) clone() Profile {
	c := *p
	c.Categories = slices.Clone(p.Categories)
	if p.Card != nil {
		card := *p.Card
		c.Card = &card
	}
	return &c
}

type Address struct {
	Country    string
	City       string
	Street     string
	Building   string
	Floor      string
	Apartment  string
	PostalCode string
}

type BuyerProfile struct {
	PhoneNumber            string
	Address                *Address
	PreferredPaymentMethod string
	PreferredCategories    []string
}

func (*BuyerProfile) ProfileRole() role.Role { return role.Buyer }

func (p *BuyerProfile) clone() Profile {
	c := *p
	c.PreferredCategories = slices.Clone(p.PreferredCategories)
	if p.Address != nil {
		addr := *p.Address
		c.Address = &addr
	}
	return &c
}

func newSellerProfile(d *SellerDraft) (*SellerProfile, error) {
	p := &SellerProfile{
		ShopName:        d.ShopName,
		ShopDescription: d.ShopDescription,
		LogoURL:         d.LogoURL,
		CoverImageURL:   d.CoverImageURL,
		Categories:      slices.Clone(d.Categories),
		Address:         d.Address,
		WorkingHours:    WorkingHours{Open: DefaultOpeningTime, Close: DefaultClosingTime},
	}
	if d.Card != nil {
		card, err := newSubmittedCard(*d.Card)
		if err != nil {
			return nil, err
		}
		p.Card = card
	}
	return p, nil
}

func newBuyerProfile(d *BuyerDraft) *BuyerProfile {
	p := &BuyerProfile{}
	if d == nil {
		return p
	}
	p.PhoneNumber = d.PhoneNumber
	if d.Address != nil {
		addr := *d.Address
		if addr.Country == "" {
			addr.Country = DefaultCountry
		}
		p.Address = &addr
	}
	return p
}
