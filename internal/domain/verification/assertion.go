package verification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

type Assertion struct {
	v *PendingVerification
}

func NewAssertion(v *PendingVerification) *Assertion {
	return &Assertion{v: v}
}

func (a *Assertion) AssertEmail(t *testing.T, expected string) *Assertion {
	t.Helper()
	assert.Equal(t, expected, a.v.email, "verification email")
	return a
}

func (a *Assertion) AssertPurpose(t *testing.T, expected Purpose) *Assertion {
	t.Helper()
	assert.Equal(t, expected, a.v.purpose, "verification purpose")
	return a
}

// AssertCodeMatches checks that the stored hash accepts code and that code is not stored as is.
func (a *Assertion) AssertCodeMatches(t *testing.T, code string) *Assertion {
	t.Helper()
	assert.NotEqual(t, code, string(a.v.codeHash), "code stored in plaintext")
	assert.NoError(t, bcrypt.CompareHashAndPassword(a.v.codeHash, []byte(code)), "code does not match stored hash")
	return a
}

func (a *Assertion) AssertCodeDoesNotMatch(t *testing.T, code string) *Assertion {
	t.Helper()
	assert.Error(t, bcrypt.CompareHashAndPassword(a.v.codeHash, []byte(code)), "stale code still matches")
	return a
}

func (a *Assertion) AssertVerified(t *testing.T, expected bool) *Assertion {
	t.Helper()
	assert.Equal(t, expected, a.v.verified, "verified flag")
	return a
}

func (a *Assertion) AssertDiscarded(t *testing.T, expected bool) *Assertion {
	t.Helper()
	assert.Equal(t, expected, a.v.discarded, "discarded flag")
	return a
}

func (a *Assertion) AssertExpiresWithin(t *testing.T, from time.Time, d time.Duration) *Assertion {
	t.Helper()
	assert.WithinDuration(t, from.Add(d), a.v.expiresAt, time.Second, "expiry")
	return a
}

func (a *Assertion) AssertHasDraft(t *testing.T, expected bool) *Assertion {
	t.Helper()
	assert.Equal(t, expected, a.v.draft != nil, "draft presence")
	return a
}
