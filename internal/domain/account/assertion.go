package account

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"gitlab.com/souqly/auth-backend/internal/domain/valueobject/role"
)

type Assertion struct {
	account *Account
}

func NewAssertion(a *Account) *Assertion {
	return &Assertion{account: a}
}

func (as *Assertion) AssertEmail(t *testing.T, expected string) *Assertion {
	t.Helper()
	assert.Equal(t, expected, as.account.email, "account email")
	return as
}

func (as *Assertion) AssertRole(t *testing.T, expected role.Role) *Assertion {
	t.Helper()
	assert.Equal(t, expected, as.account.role, "account role")
	return as
}

func (as *Assertion) AssertName(t *testing.T, first, last string) *Assertion {
	t.Helper()
	assert.Equal(t, first, as.account.firstName, "first name")
	assert.Equal(t, last, as.account.lastName, "last name")
	return as
}

func (as *Assertion) AssertPassword(t *testing.T, password string) *Assertion {
	t.Helper()
	assert.NoError(t, bcrypt.CompareHashAndPassword(as.account.passHash, []byte(password)), "password does not match hash")
	return as
}

func (as *Assertion) AssertPasswordChangedAfter(t *testing.T, after time.Time) *Assertion {
	t.Helper()
	require.NotNil(t, as.account.passwordChangedAt, "password changed at")
	assert.False(t, as.account.passwordChangedAt.Before(after), "password changed at %s is before %s", as.account.passwordChangedAt, after)
	return as
}

func (as *Assertion) AssertNotificationToken(t *testing.T, expected string) *Assertion {
	t.Helper()
	assert.Equal(t, expected, as.account.notificationToken, "notification token")
	return as
}

func (as *Assertion) AssertSellerProfile(t *testing.T) *SellerProfile {
	t.Helper()
	sp, ok := as.account.profile.(*SellerProfile)
	require.True(t, ok, "expected seller profile, got %T", as.account.profile)
	return sp
}

func (as *Assertion) AssertBuyerProfile(t *testing.T) *BuyerProfile {
	t.Helper()
	bp, ok := as.account.profile.(*BuyerProfile)
	require.True(t, ok, "expected buyer profile, got %T", as.account.profile)
	return bp
}

func (as *Assertion) AssertNoCard(t *testing.T) *Assertion {
	t.Helper()
	assert.Nil(t, as.AssertSellerProfile(t).Card, "verification card")
	return as
}

func (as *Assertion) AssertCardStatus(t *testing.T, expected CardStatus) *Assertion {
	t.Helper()
	card := as.AssertSellerProfile(t).Card
	require.NotNil(t, card, "verification card")
	assert.Equal(t, expected, card.Status, "card status")
	return as
}

func (as *Assertion) AssertCardDocument(t *testing.T, expected string) *Assertion {
	t.Helper()
	card := as.AssertSellerProfile(t).Card
	require.NotNil(t, card, "verification card")
	assert.Equal(t, expected, card.DocumentURL, "card document url")
	return as
}

func (as *Assertion) AssertEventCount(t *testing.T, expected int) *Assertion {
	t.Helper()
	assert.Len(t, as.account.GetUncommittedEvents(), expected, "uncommitted events")
	return as
}
