package builders

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"gitlab.com/souqly/auth-backend/internal/domain/account"
	"gitlab.com/souqly/auth-backend/internal/domain/valueobject/role"
	"gitlab.com/souqly/auth-backend/tests/integration/fixtures"
)

const TestPasswordCost = bcrypt.MinCost

// TestPasswordHasher hashes at the minimum bcrypt cost to keep tests fast.
func TestPasswordHasher(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), TestPasswordCost)
}

type AccountFactory struct{}

func (f *AccountFactory) Buyer(email string) *account.Account {
	return NewAccountBuilder().WithEmail(email).Build()
}

func (f *AccountFactory) ApprovedSeller(email string) *account.Account {
	return NewAccountBuilder().WithEmail(email).AsSeller().WithCard(account.CardStatusVerified).Build()
}

func (f *AccountFactory) PendingSeller(email string) *account.Account {
	return NewAccountBuilder().WithEmail(email).AsSeller().WithCard(account.CardStatusSubmitted).Build()
}

func (f *AccountFactory) Admin(email string) *account.Account {
	return NewAccountBuilder().WithEmail(email).AsAdmin().Build()
}

type AccountBuilder struct {
	id                account.ID
	email             string
	password          string
	passHash          []byte
	role              role.Role
	firstName         string
	lastName          string
	language          account.Language
	phoneNumber       string
	profile           account.Profile
	notificationToken string
	createdAt         time.Time
	updatedAt         time.Time
}

func NewAccountBuilder() *AccountBuilder {
	hash, _ := TestPasswordHasher(fixtures.TestBuyer.Password)
	now := time.Now().UTC()

	return &AccountBuilder{
		id:        account.NewID(),
		email:     fixtures.TestBuyer.Email,
		password:  fixtures.TestBuyer.Password,
		passHash:  hash,
		role:      role.Buyer,
		firstName: fixtures.TestBuyer.FirstName,
		lastName:  fixtures.TestBuyer.LastName,
		language:  account.English,
		profile:   &account.BuyerProfile{},
		createdAt: now,
		updatedAt: now,
	}
}

func (b *AccountBuilder) WithID(id account.ID) *AccountBuilder {
	b.id = id
	return b
}

func (b *AccountBuilder) WithEmail(email string) *AccountBuilder {
	b.email = email
	return b
}

func (b *AccountBuilder) WithPassword(password string) *AccountBuilder {
	hash, _ := TestPasswordHasher(password)
	b.password = password
	b.passHash = hash
	return b
}

func (b *AccountBuilder) WithName(first, last string) *AccountBuilder {
	b.firstName = first
	b.lastName = last
	return b
}

func (b *AccountBuilder) WithLanguage(lang account.Language) *AccountBuilder {
	b.language = lang
	return b
}

func (b *AccountBuilder) WithNotificationToken(sealed string) *AccountBuilder {
	b.notificationToken = sealed
	return b
}

func (b *AccountBuilder) AsBuyer() *AccountBuilder {
	b.role = role.Buyer
	b.profile = &account.BuyerProfile{}
	return b
}

// AsSeller switches to a seller without a card.
func (b *AccountBuilder) AsSeller() *AccountBuilder {
	b.role = role.Seller
	b.profile = &account.SellerProfile{
		ShopName:     account.DefaultShopName(b.firstName),
		WorkingHours: account.WorkingHours{Open: account.DefaultOpeningTime, Close: account.DefaultClosingTime},
	}
	return b
}

func (b *AccountBuilder) AsAdmin() *AccountBuilder {
	b.role = role.Admin
	b.profile = nil
	return b
}

// WithCard attaches a card in the given status. Only meaningful after AsSeller.
func (b *AccountBuilder) WithCard(status account.CardStatus) *AccountBuilder {
	sp, ok := b.profile.(*account.SellerProfile)
	if !ok {
		return b
	}
	card := &account.VerificationCard{
		IDType:      account.DefaultIDType,
		IDNumber:    "29001011234567",
		DocumentURL: fixtures.DocumentURL,
		SubmittedAt: b.createdAt,
		Status:      status,
	}
	if status == account.CardStatusVerified || status == account.CardStatusRejected {
		reviewer := account.NewID()
		at := b.createdAt
		card.VerifiedBy = &reviewer
		card.VerifiedAt = &at
	}
	if status == account.CardStatusRejected {
		card.RejectionReason = "blurry photo"
	}
	sp.Card = card
	return b
}

func (b *AccountBuilder) Password() string {
	return b.password
}

func (b *AccountBuilder) RehydrateArgs() account.RehydrateArgs {
	return account.RehydrateArgs{
		ID:                b.id,
		Email:             b.email,
		PassHash:          b.passHash,
		Role:              b.role,
		FirstName:         b.firstName,
		LastName:          b.lastName,
		Language:          b.language,
		PhoneNumber:       b.phoneNumber,
		Profile:           b.profile,
		NotificationToken: b.notificationToken,
		CreatedAt:         b.createdAt,
		UpdatedAt:         b.updatedAt,
	}
}

func (b *AccountBuilder) Build() *account.Account {
	return account.Rehydrate(b.RehydrateArgs())
}
