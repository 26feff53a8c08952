package account

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"gitlab.com/souqly/auth-backend/internal/domain/event"
	"gitlab.com/souqly/auth-backend/internal/domain/valueobject/role"
)

const PasswordCostFactor = 12

type ID uuid.UUID

func NewID() ID {
	return ID(uuid.New())
}

func ParseID(s string) (ID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return ID{}, err
	}
	return ID(id), nil
}

func (id ID) String() string {
	return uuid.UUID(id).String()
}

func (id ID) IsZero() bool {
	return uuid.UUID(id) == uuid.Nil
}

func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(uuid.UUID(id).String())
}

func (id *ID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseID(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

type Language string

const (
	English Language = "en"
	Arabic  Language = "ar"
)

// ParseLanguage maps an empty value to English.
func ParseLanguage(s string) (Language, error) {
	switch Language(s) {
	case "":
		return English, nil
	case English, Arabic:
		return Language(s), nil
	default:
		return "", fmt.Errorf("unsupported language %q", s)
	}
}

func (l Language) String() string {
	return string(l)
}

// HashPassword hashes a plaintext password with bcrypt at PasswordCostFactor.
func HashPassword(password string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCostFactor)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return hash, nil
}

// Account is the root aggregate for a marketplace user. Sellers own a SellerProfile,
// buyers a BuyerProfile, admins neither.
type Account struct {
	event.Recorder
	id                ID
	email             string
	passHash          []byte
	role              role.Role
	firstName         string
	lastName          string
	language          Language
	phoneNumber       string
	profile           Profile
	notificationToken string
	passwordChangedAt *time.Time
	createdAt         time.Time
	updatedAt         time.Time
}

// NewFromDraft promotes a confirmed signup draft into a permanent account.
func NewFromDraft(id ID, d *Draft, now time.Time) (*Account, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	now = now.UTC()

	a := &Account{
		id:          id,
		email:       d.Email,
		passHash:    d.PassHash,
		role:        d.Role,
		firstName:   d.FirstName,
		lastName:    d.LastName,
		language:    d.Language,
		phoneNumber: d.PhoneNumber,
		createdAt:   now,
		updatedAt:   now,
	}

	switch d.Role {
	case role.Seller:
		sp, err := newSellerProfile(d.Seller)
		if err != nil {
			return nil, err
		}
		a.profile = sp
	case role.Buyer:
		a.profile = newBuyerProfile(d.Buyer)
	}

	a.AddEvent(&AccountRegistered{
		Header:          event.NewEventHeader(),
		AccountID:       a.id,
		Email:           a.email,
		FirstName:       a.firstName,
		Role:            a.role,
		Language:        a.language,
		PendingApproval: a.RequiresApproval(),
	})

	return a, nil
}

type NewAdminArgs struct {
	ID        ID
	Email     string
	FirstName string
	LastName  string
	PassHash  []byte
	Now       time.Time
}

// NewAdmin creates an administrator. Admins never come from public signup.
func NewAdmin(args NewAdminArgs) (*Account, error) {
	if args.Email == "" || len(args.PassHash) == 0 {
		return nil, ErrInvalidDraft.WithCause(errors.New("admin requires email and password"))
	}
	now := args.Now.UTC()
	return &Account{
		id:        args.ID,
		email:     args.Email,
		passHash:  args.PassHash,
		role:      role.Admin,
		firstName: args.FirstName,
		lastName:  args.LastName,
		language:  English,
		createdAt: now,
		updatedAt: now,
	}, nil
}

type RehydrateArgs struct {
	ID                ID
	Email             string
	PassHash          []byte
	Role              role.Role
	FirstName         string
	LastName          string
	Language          Language
	PhoneNumber       string
	Profile           Profile
	NotificationToken string
	PasswordChangedAt *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func Rehydrate(args RehydrateArgs) *Account {
	return &Account{
		id:                args.ID,
		email:             args.Email,
		passHash:          args.PassHash,
		role:              args.Role,
		firstName:         args.FirstName,
		lastName:          args.LastName,
		language:          args.Language,
		phoneNumber:       args.PhoneNumber,
		profile:           args.Profile,
		notificationToken: args.NotificationToken,
		passwordChangedAt: args.PasswordChangedAt,
		createdAt:         args.CreatedAt,
		updatedAt:         args.UpdatedAt,
	}
}

// CanAuthenticate enforces the seller approval gate: a seller signs in only with a verified card.
func (a *Account) CanAuthenticate() error {
	if a == nil {
		return ErrInvalidCredentials
	}
	if a.role != role.Seller {
		return nil
	}
	sp, ok := a.profile.(*SellerProfile)
	if !ok || sp.Card == nil || sp.Card.Status != CardStatusVerified {
		return ErrNotApproved
	}
	return nil
}

// RequiresApproval is true for sellers whose handed in card is not verified yet.
// A seller without a card is not pending: it still has to submit one.
func (a *Account) RequiresApproval() bool {
	if a == nil || a.role != role.Seller {
		return false
	}
	sp, ok := a.profile.(*SellerProfile)
	if !ok || sp.Card == nil {
		return false
	}
	return sp.Card.Status != CardStatusVerified
}

func (a *Account) ComparePassword(password string) error {
	if a == nil {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(a.passHash, []byte(password)); err != nil {
		return ErrInvalidCredentials.WithCause(err)
	}
	return nil
}

func (a *Account) ChangePassword(passHash []byte, now time.Time) error {
	if a == nil {
		return errors.New("account is nil")
	}
	if len(passHash) == 0 {
		return errors.New("password hash is empty")
	}
	now = now.UTC()
	a.passHash = passHash
	a.passwordChangedAt = &now
	a.updatedAt = now
	return nil
}

// SetNotificationToken stores an already sealed device token.
func (a *Account) SetNotificationToken(sealed string, now time.Time) error {
	if a == nil {
		return errors.New("account is nil")
	}
	if sealed == "" {
		return errors.New("notification token is empty")
	}
	a.notificationToken = sealed
	a.updatedAt = now.UTC()
	return nil
}

// SubmitVerificationCard attaches a card to a seller that has none or had one rejected.
func (a *Account) SubmitVerificationCard(sub CardSubmission, now time.Time) error {
	if a == nil {
		return errors.New("account is nil")
	}
	sp, ok := a.profile.(*SellerProfile)
	if a.role != role.Seller || !ok {
		return ErrNotASeller
	}
	if sp.Card != nil && (sp.Card.Status == CardStatusSubmitted || sp.Card.Status == CardStatusVerified) {
		return ErrCardAlreadySubmitted
	}
	card, err := newSubmittedCard(sub)
	if err != nil {
		return err
	}
	sp.Card = card
	a.updatedAt = now.UTC()
	return nil
}

// ReviewVerificationCard records an admin decision on a submitted card.
func (a *Account) ReviewVerificationCard(adminID ID, approve bool, reason string, now time.Time) error {
	if a == nil {
		return errors.New("account is nil")
	}
	sp, ok := a.profile.(*SellerProfile)
	if a.role != role.Seller || !ok {
		return ErrNotASeller
	}
	if sp.Card == nil {
		return ErrCardNotSubmitted
	}

	var err error
	if approve {
		err = sp.Card.approve(adminID, now)
	} else {
		err = sp.Card.reject(adminID, reason, now)
	}
	if err != nil {
		return err
	}
	a.updatedAt = now.UTC()

	a.AddEvent(&VerificationCardReviewed{
		Header:    event.NewEventHeader(),
		AccountID: a.id,
		Email:     a.email,
		FirstName: a.firstName,
		Language:  a.language,
		Approved:  approve,
		Reason:    sp.Card.RejectionReason,
	})
	return nil
}

func (a *Account) ID() ID {
	if a == nil {
		return ID{}
	}
	return a.id
}

func (a *Account) Email() string {
	if a == nil {
		return ""
	}
	return a.email
}

func (a *Account) PassHash() []byte {
	if a == nil {
		return nil
	}
	return a.passHash
}

func (a *Account) Role() role.Role {
	if a == nil {
		return ""
	}
	return a.role
}

func (a *Account) FirstName() string {
	if a == nil {
		return ""
	}
	return a.firstName
}

func (a *Account) LastName() string {
	if a == nil {
		return ""
	}
	return a.lastName
}

func (a *Account) Language() Language {
	if a == nil {
		return ""
	}
	return a.language
}

func (a *Account) PhoneNumber() string {
	if a == nil {
		return ""
	}
	return a.phoneNumber
}

// Profile returns a deep copy of the role specific profile, nil for admins.
func (a *Account) Profile() Profile {
	if a == nil || a.profile == nil {
		return nil
	}
	return a.profile.clone()
}

func (a *Account) NotificationToken() string {
	if a == nil {
		return ""
	}
	return a.notificationToken
}

func (a *Account) PasswordChangedAt() *time.Time {
	if a == nil || a.passwordChangedAt == nil {
		return nil
	}
	t := *a.passwordChangedAt
	return &t
}

func (a *Account) CreatedAt() time.Time {
	if a == nil {
		return time.Time{}
	}
	return a.createdAt
}

func (a *Account) UpdatedAt() time.Time {
	if a == nil {
		return time.Time{}
	}
	return a.updatedAt
}
