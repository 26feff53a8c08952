package cmd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authapp "gitlab.com/souqly/auth-backend/internal/application/auth"
	"gitlab.com/souqly/auth-backend/internal/domain/account"
	"gitlab.com/souqly/auth-backend/internal/domain/verification"
	"gitlab.com/souqly/auth-backend/tests/integration/builders"
	"gitlab.com/souqly/auth-backend/tests/integration/fixtures"
	"gitlab.com/souqly/auth-backend/tests/mocks"
)

type ResetFlowSuite struct {
	Confirm          *ConfirmPasswordResetCodeHandler
	Complete         *CompletePasswordResetHandler
	MockVerification *mocks.VerificationRepo
	MockAccount      *mocks.AccountRepo
}

func NewResetFlowSuite(t *testing.T) *ResetFlowSuite {
	t.Helper()

	verificationRepo := mocks.NewVerificationRepo()
	accountRepo := mocks.NewAccountRepo()
	sessions, err := authapp.NewSessionIssuer(authapp.SessionIssuerArgs{SecretKey: fixtures.AccessTokenSecretKey})
	require.NoError(t, err)

	return &ResetFlowSuite{
		Confirm: NewConfirmPasswordResetCodeHandler(ConfirmPasswordResetCodeHandlerArgs{
			VerificationRepo: verificationRepo,
		}),
		Complete: NewCompletePasswordResetHandler(CompletePasswordResetHandlerArgs{
			VerificationRepo: verificationRepo,
			AccountRepo:      accountRepo,
			SessionIssuer:    sessions,
			PasswordHasher:   builders.TestPasswordHasher,
		}),
		MockVerification: verificationRepo,
		MockAccount:      accountRepo,
	}
}

func (s *ResetFlowSuite) seed(t *testing.T, email string, v *builders.VerificationBuilder) *account.Account {
	t.Helper()
	acc := builders.NewAccountBuilder().WithEmail(email).Build()
	s.MockAccount.SeedAccount(t, acc)
	if v != nil {
		s.MockVerification.SeedVerification(t, v.WithEmail(email).ForPasswordReset().Build())
	}
	return acc
}

func TestPasswordReset_ConfirmThenComplete(t *testing.T) {
	t.Parallel()

	s := NewResetFlowSuite(t)
	acc := s.seed(t, fixtures.ValidBuyerEmail, builders.NewVerificationBuilder())

	require.NoError(t, s.Confirm.Handle(t.Context(), ConfirmPasswordResetCode{Email: acc.Email(), Code: builders.TestCode}))
	s.MockVerification.AssertVerificationExists(t, acc.Email(), verification.PurposePasswordReset).
		AssertVerified(t, true)

	before := time.Now()
	res, err := s.Complete.Handle(t.Context(), CompletePasswordReset{Email: acc.Email(), NewPassword: fixtures.ValidPassword2})
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)

	authapp.NewJWTTokenAssertion(t, res.Token, []byte(fixtures.AccessTokenSecretKey)).
		AssertValid().
		AssertUID(acc.ID().String())

	s.MockAccount.AssertAccountExistsByEmail(t, acc.Email()).
		AssertPassword(t, fixtures.ValidPassword2).
		AssertPasswordChangedAfter(t, before.Add(-time.Second))
	s.MockVerification.AssertVerificationNotExists(t, acc.Email(), verification.PurposePasswordReset)
}

func TestConfirmPasswordResetCodeHandler_ErrorCases(t *testing.T) {
	t.Parallel()

	t.Run("no record", func(t *testing.T) {
		t.Parallel()
		s := NewResetFlowSuite(t)

		err := s.Confirm.Handle(t.Context(), ConfirmPasswordResetCode{Email: fixtures.UnknownEmail, Code: builders.TestCode})
		require.Error(t, err)
		assert.ErrorIs(t, err, verification.ErrResetNotFound)
	})

	t.Run("wrong code keeps record unverified", func(t *testing.T) {
		t.Parallel()
		s := NewResetFlowSuite(t)
		acc := s.seed(t, fixtures.ValidBuyerEmail, builders.NewVerificationBuilder())

		err := s.Confirm.Handle(t.Context(), ConfirmPasswordResetCode{Email: acc.Email(), Code: fixtures.WrongCode})
		require.Error(t, err)
		assert.ErrorIs(t, err, verification.ErrInvalidResetCode)
		s.MockVerification.AssertVerificationExists(t, acc.Email(), verification.PurposePasswordReset).
			AssertVerified(t, false)
	})

	t.Run("expired code deletes record", func(t *testing.T) {
		t.Parallel()
		s := NewResetFlowSuite(t)
		acc := s.seed(t, fixtures.ValidBuyerEmail, builders.NewVerificationBuilder().WithExpiredCode())

		err := s.Confirm.Handle(t.Context(), ConfirmPasswordResetCode{Email: acc.Email(), Code: builders.TestCode})
		require.Error(t, err)
		assert.ErrorIs(t, err, verification.ErrCodeExpired)
		s.MockVerification.AssertVerificationNotExists(t, acc.Email(), verification.PurposePasswordReset)
	})

	t.Run("signup record does not confirm a reset", func(t *testing.T) {
		t.Parallel()
		s := NewResetFlowSuite(t)
		s.MockVerification.SeedVerification(t, builders.NewVerificationBuilder().WithEmail(fixtures.ValidSellerEmail).Build())

		err := s.Confirm.Handle(t.Context(), ConfirmPasswordResetCode{Email: fixtures.ValidSellerEmail, Code: builders.TestCode})
		require.Error(t, err)
		assert.ErrorIs(t, err, verification.ErrResetNotFound)
	})
}

func TestCompletePasswordResetHandler_ErrorCases(t *testing.T) {
	t.Parallel()

	t.Run("unverified record", func(t *testing.T) {
		t.Parallel()
		s := NewResetFlowSuite(t)
		acc := s.seed(t, fixtures.ValidBuyerEmail, builders.NewVerificationBuilder())

		_, err := s.Complete.Handle(t.Context(), CompletePasswordReset{Email: acc.Email(), NewPassword: fixtures.ValidPassword2})
		require.Error(t, err)
		assert.ErrorIs(t, err, verification.ErrResetNotVerified)
		s.MockAccount.AssertAccountExistsByEmail(t, acc.Email()).AssertPassword(t, fixtures.ValidPassword)
		s.MockVerification.AssertVerificationExists(t, acc.Email(), verification.PurposePasswordReset)
	})

	t.Run("no record", func(t *testing.T) {
		t.Parallel()
		s := NewResetFlowSuite(t)
		acc := s.seed(t, fixtures.ValidBuyerEmail, nil)

		_, err := s.Complete.Handle(t.Context(), CompletePasswordReset{Email: acc.Email(), NewPassword: fixtures.ValidPassword2})
		require.Error(t, err)
		assert.ErrorIs(t, err, verification.ErrResetNotVerified)
	})

	t.Run("expired verified record is deleted", func(t *testing.T) {
		t.Parallel()
		s := NewResetFlowSuite(t)
		acc := s.seed(t, fixtures.ValidBuyerEmail, builders.NewVerificationBuilder().Verified().WithExpiredCode())

		_, err := s.Complete.Handle(t.Context(), CompletePasswordReset{Email: acc.Email(), NewPassword: fixtures.ValidPassword2})
		require.Error(t, err)
		assert.ErrorIs(t, err, verification.ErrResetExpired)
		s.MockVerification.AssertVerificationNotExists(t, acc.Email(), verification.PurposePasswordReset)
		s.MockAccount.AssertAccountExistsByEmail(t, acc.Email()).AssertPassword(t, fixtures.ValidPassword)
	})

	t.Run("account gone", func(t *testing.T) {
		t.Parallel()
		s := NewResetFlowSuite(t)
		s.MockVerification.SeedVerification(t,
			builders.NewVerificationBuilder().WithEmail(fixtures.UnknownEmail).ForPasswordReset().Verified().Build())

		_, err := s.Complete.Handle(t.Context(), CompletePasswordReset{Email: fixtures.UnknownEmail, NewPassword: fixtures.ValidPassword2})
		require.Error(t, err)
		assert.ErrorIs(t, err, account.ErrAccountNotFound)
		s.MockVerification.AssertVerificationExists(t, fixtures.UnknownEmail, verification.PurposePasswordReset)
	})
}
