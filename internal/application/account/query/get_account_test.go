package query

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/souqly/auth-backend/internal/domain/account"
	"gitlab.com/souqly/auth-backend/tests/integration/builders"
	"gitlab.com/souqly/auth-backend/tests/integration/fixtures"
	"gitlab.com/souqly/auth-backend/tests/mocks"
)

func TestGetAccountHandler(t *testing.T) {
	t.Parallel()

	t.Run("buyer", func(t *testing.T) {
		t.Parallel()
		repo := mocks.NewAccountRepo()
		acc := builders.NewAccountBuilder().
			WithEmail(fixtures.ValidBuyerEmail).
			WithNotificationToken("sealed-token-value").
			Build()
		repo.SeedAccount(t, acc)
		h := NewGetAccountHandler(GetAccountHandlerArgs{AccountGetter: repo})

		v, err := h.Handle(t.Context(), GetAccount{ID: acc.ID()})
		require.NoError(t, err)
		assert.Equal(t, acc.ID().String(), v.ID)
		assert.Equal(t, acc.Email(), v.Email)
		assert.Equal(t, "buyer", v.Role)
		assert.NotNil(t, v.Buyer)
		assert.Nil(t, v.Seller)

		raw, err := json.Marshal(v)
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "sealed-token-value")
		assert.NotContains(t, string(raw), "$2a$")
	})

	t.Run("seller shows card status", func(t *testing.T) {
		t.Parallel()
		repo := mocks.NewAccountRepo()
		acc := builders.NewAccountBuilder().
			WithEmail(fixtures.ValidSellerEmail).
			AsSeller().
			WithCard(account.CardStatusRejected).
			Build()
		repo.SeedAccount(t, acc)
		h := NewGetAccountHandler(GetAccountHandlerArgs{AccountGetter: repo})

		v, err := h.Handle(t.Context(), GetAccount{ID: acc.ID()})
		require.NoError(t, err)
		require.NotNil(t, v.Seller)
		require.NotNil(t, v.Seller.VerificationCard)
		assert.Equal(t, "rejected", v.Seller.VerificationCard.Status)
		assert.Equal(t, "blurry photo", v.Seller.VerificationCard.RejectionReason)

		raw, err := json.Marshal(v)
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "29001011234567", "id number must stay private")
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		h := NewGetAccountHandler(GetAccountHandlerArgs{AccountGetter: mocks.NewAccountRepo()})

		_, err := h.Handle(t.Context(), GetAccount{ID: account.NewID()})
		require.Error(t, err)
		assert.ErrorIs(t, err, account.ErrAccountNotFound)
	})
}
