package mailevent

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/souqly/auth-backend/internal/domain/account"
	"gitlab.com/souqly/auth-backend/internal/domain/event"
	"gitlab.com/souqly/auth-backend/internal/domain/valueobject/role"
	"gitlab.com/souqly/auth-backend/tests/integration/fixtures"
	"gitlab.com/souqly/auth-backend/tests/mocks"
)

func newHandler(t *testing.T) (*MailEventHandler, *mocks.MockMailSender) {
	t.Helper()
	sender := mocks.NewMockMailSender()
	return NewMailEventHandler(MailEventHandlerArgs{Mailsender: sender}), sender
}

func TestMailEventHandler_HandleAccountRegistered(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		pending     bool
		wantSubject string
	}{
		{name: "active account", pending: false, wantSubject: WelcomeSubject},
		{name: "pending approval", pending: true, wantSubject: PendingApprovalSubject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h, sender := newHandler(t)

			err := h.HandleAccountRegistered(t.Context(), &account.AccountRegistered{
				Header:          event.NewEventHeader(),
				AccountID:       account.NewID(),
				Email:           fixtures.ValidSellerEmail,
				FirstName:       fixtures.TestSeller.FirstName,
				Role:            role.Seller,
				PendingApproval: tt.pending,
			})
			require.NoError(t, err)

			sent, ok := sender.LastMailTo(fixtures.ValidSellerEmail)
			require.True(t, ok)
			assert.Equal(t, tt.wantSubject, sent.Subject)
			assert.Contains(t, sent.Body, fixtures.TestSeller.FirstName)
		})
	}

	t.Run("invalid email", func(t *testing.T) {
		t.Parallel()
		h, sender := newHandler(t)

		err := h.HandleAccountRegistered(t.Context(), &account.AccountRegistered{
			Header:    event.NewEventHeader(),
			AccountID: account.NewID(),
			Email:     fixtures.InvalidEmail,
		})
		require.Error(t, err)
		sender.AssertNoMailSent(t)
	})

	t.Run("nil event", func(t *testing.T) {
		t.Parallel()
		h, sender := newHandler(t)

		require.NoError(t, h.HandleAccountRegistered(t.Context(), nil))
		sender.AssertNoMailSent(t)
	})

	t.Run("sender failure is returned for retry", func(t *testing.T) {
		t.Parallel()
		h, sender := newHandler(t)
		sender.FailWith(errors.New("smtp down"))

		err := h.HandleAccountRegistered(t.Context(), &account.AccountRegistered{
			Header:    event.NewEventHeader(),
			AccountID: account.NewID(),
			Email:     fixtures.ValidBuyerEmail,
		})
		require.Error(t, err)
	})
}

func TestMailEventHandler_HandleVerificationCardReviewed(t *testing.T) {
	t.Parallel()

	t.Run("approved", func(t *testing.T) {
		t.Parallel()
		h, sender := newHandler(t)

		err := h.HandleVerificationCardReviewed(t.Context(), &account.VerificationCardReviewed{
			Header:    event.NewEventHeader(),
			AccountID: account.NewID(),
			Email:     fixtures.ValidSellerEmail,
			FirstName: fixtures.TestSeller.FirstName,
			Approved:  true,
		})
		require.NoError(t, err)
		sender.AssertMailSent(t, fixtures.ValidSellerEmail, CardApprovedSubject)
	})

	t.Run("rejected carries the reason", func(t *testing.T) {
		t.Parallel()
		h, sender := newHandler(t)

		err := h.HandleVerificationCardReviewed(t.Context(), &account.VerificationCardReviewed{
			Header:    event.NewEventHeader(),
			AccountID: account.NewID(),
			Email:     fixtures.ValidSellerEmail,
			FirstName: fixtures.TestSeller.FirstName,
			Reason:    "document expired",
		})
		require.NoError(t, err)

		sent, ok := sender.LastMailTo(fixtures.ValidSellerEmail)
		require.True(t, ok)
		assert.Equal(t, CardRejectedSubject, sent.Subject)
		assert.Contains(t, sent.Body, "document expired")
	})
}
