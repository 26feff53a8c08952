package builders

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"gitlab.com/souqly/auth-backend/internal/domain/account"
	"gitlab.com/souqly/auth-backend/internal/domain/verification"
	"gitlab.com/souqly/auth-backend/tests/integration/fixtures"
)

// TestCodeIssuer issues codes hashed at the minimum bcrypt cost.
var TestCodeIssuer = verification.CodeIssuer{Cost: bcrypt.MinCost}

const TestCode = "123456"

type VerificationBuilder struct {
	id        verification.ID
	email     string
	purpose   verification.Purpose
	code      string
	expiresAt time.Time
	verified  bool
	draft     *account.Draft
	createdAt time.Time
}

func NewVerificationBuilder() *VerificationBuilder {
	now := time.Now().UTC()
	return &VerificationBuilder{
		id:        verification.NewID(),
		email:     fixtures.ValidBuyerEmail,
		purpose:   verification.PurposeEmailVerification,
		code:      TestCode,
		expiresAt: now.Add(verification.CodeTTL),
		createdAt: now,
	}
}

func (b *VerificationBuilder) WithEmail(email string) *VerificationBuilder {
	b.email = email
	return b
}

func (b *VerificationBuilder) WithCode(code string) *VerificationBuilder {
	b.code = code
	return b
}

func (b *VerificationBuilder) WithExpiredCode() *VerificationBuilder {
	b.expiresAt = time.Now().UTC().Add(-time.Minute)
	return b
}

func (b *VerificationBuilder) WithExpiresAt(at time.Time) *VerificationBuilder {
	b.expiresAt = at
	return b
}

// ForSignup holds a draft built from args; the email follows the draft.
func (b *VerificationBuilder) ForSignup(args account.DraftArgs) *VerificationBuilder {
	if args.Email == "" {
		args.Email = b.email
	}
	if len(args.PassHash) == 0 {
		args.PassHash, _ = TestPasswordHasher(fixtures.ValidPassword)
	}
	if args.Now.IsZero() {
		args.Now = b.createdAt
	}
	d, err := account.NewDraft(args)
	if err != nil {
		panic(err)
	}
	b.purpose = verification.PurposeEmailVerification
	b.email = d.Email
	b.draft = d
	return b
}

func (b *VerificationBuilder) ForPasswordReset() *VerificationBuilder {
	b.purpose = verification.PurposePasswordReset
	b.draft = nil
	return b
}

func (b *VerificationBuilder) Verified() *VerificationBuilder {
	b.verified = true
	return b
}

func (b *VerificationBuilder) Build() *verification.PendingVerification {
	hash, _ := bcrypt.GenerateFromPassword([]byte(b.code), bcrypt.MinCost)
	draft := b.draft
	if draft == nil && b.purpose == verification.PurposeEmailVerification {
		passHash, _ := TestPasswordHasher(fixtures.ValidPassword)
		draft, _ = account.NewDraft(account.DraftArgs{
			FirstName: fixtures.TestBuyer.FirstName,
			LastName:  fixtures.TestBuyer.LastName,
			Email:     b.email,
			PassHash:  passHash,
			Now:       b.createdAt,
		})
	}
	return verification.Rehydrate(verification.RehydrateArgs{
		ID:        b.id,
		Email:     b.email,
		Purpose:   b.purpose,
		CodeHash:  hash,
		ExpiresAt: b.expiresAt,
		Verified:  b.verified,
		Draft:     draft,
		CreatedAt: b.createdAt,
		UpdatedAt: b.createdAt,
	})
}
