package cmd

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"gitlab.com/souqly/auth-backend/internal/domain/verification"
	"gitlab.com/souqly/auth-backend/tests/integration/builders"
	"gitlab.com/souqly/auth-backend/tests/integration/fixtures"
	"gitlab.com/souqly/auth-backend/tests/mocks"
)

type RequestPasswordResetSuite struct {
	Handler          *RequestPasswordResetHandler
	MockVerification *mocks.VerificationRepo
	MockAccount      *mocks.AccountRepo
	MockMail         *mocks.MockMailSender
}

func NewRequestPasswordResetSuite(t *testing.T) *RequestPasswordResetSuite {
	t.Helper()

	verificationRepo := mocks.NewVerificationRepo()
	accountRepo := mocks.NewAccountRepo()
	mailSender := mocks.NewMockMailSender()

	return &RequestPasswordResetSuite{
		Handler: NewRequestPasswordResetHandler(RequestPasswordResetHandlerArgs{
			VerificationRepo: verificationRepo,
			AccountRepo:      accountRepo,
			MailSender:       mailSender,
			CodeIssuer:       builders.TestCodeIssuer,
		}),
		MockVerification: verificationRepo,
		MockAccount:      accountRepo,
		MockMail:         mailSender,
	}
}

// sequenceCodeIssuer hands out the given codes in order so consecutive requests never collide.
type sequenceCodeIssuer struct {
	codes []string
	next  int
}

func (s *sequenceCodeIssuer) Issue(now time.Time) (verification.IssuedCode, error) {
	code := s.codes[s.next%len(s.codes)]
	s.next++
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.MinCost)
	if err != nil {
		return verification.IssuedCode{}, err
	}
	return verification.IssuedCode{Plaintext: code, Hash: hash, ExpiresAt: now.Add(verification.CodeTTL)}, nil
}

func TestRequestPasswordResetHandler_SecondRequestSupersedesFirst(t *testing.T) {
	t.Parallel()

	verificationRepo := mocks.NewVerificationRepo()
	accountRepo := mocks.NewAccountRepo()
	mailSender := mocks.NewMockMailSender()
	request := NewRequestPasswordResetHandler(RequestPasswordResetHandlerArgs{
		VerificationRepo: verificationRepo,
		AccountRepo:      accountRepo,
		MailSender:       mailSender,
		CodeIssuer:       &sequenceCodeIssuer{codes: []string{"111111", "222222"}},
	})
	confirm := NewConfirmPasswordResetCodeHandler(ConfirmPasswordResetCodeHandlerArgs{
		VerificationRepo: verificationRepo,
	})

	acc := builders.NewAccountBuilder().WithEmail(fixtures.ValidBuyerEmail).Build()
	accountRepo.SeedAccount(t, acc)

	require.NoError(t, request.Handle(t.Context(), RequestPasswordReset{Email: acc.Email()}))
	firstMail, ok := mailSender.LastMailTo(acc.Email())
	require.True(t, ok)
	first := mocks.RequireCode(t, firstMail)

	require.NoError(t, request.Handle(t.Context(), RequestPasswordReset{Email: acc.Email()}))
	secondMail, ok := mailSender.LastMailTo(acc.Email())
	require.True(t, ok)
	second := mocks.RequireCode(t, secondMail)
	require.NotEqual(t, first, second)

	assert.Len(t, mailSender.GetSentMails(), 2)
	assert.Equal(t, 1, verificationRepo.Count())
	verificationRepo.AssertVerificationExists(t, acc.Email(), verification.PurposePasswordReset).
		AssertCodeDoesNotMatch(t, first).
		AssertCodeMatches(t, second)

	err := confirm.Handle(t.Context(), ConfirmPasswordResetCode{Email: acc.Email(), Code: first})
	require.ErrorIs(t, err, verification.ErrInvalidResetCode)
	verificationRepo.AssertVerificationExists(t, acc.Email(), verification.PurposePasswordReset).
		AssertVerified(t, false)

	require.NoError(t, confirm.Handle(t.Context(), ConfirmPasswordResetCode{Email: acc.Email(), Code: second}))
	verificationRepo.AssertVerificationExists(t, acc.Email(), verification.PurposePasswordReset).
		AssertVerified(t, true)
}

func TestRequestPasswordResetHandler(t *testing.T) {
	t.Parallel()

	t.Run("known email gets a code", func(t *testing.T) {
		t.Parallel()
		s := NewRequestPasswordResetSuite(t)
		acc := builders.NewAccountBuilder().WithEmail(fixtures.ValidBuyerEmail).Build()
		s.MockAccount.SeedAccount(t, acc)

		before := time.Now()
		require.NoError(t, s.Handler.Handle(t.Context(), RequestPasswordReset{Email: acc.Email()}))

		sent, ok := s.MockMail.LastMailTo(acc.Email())
		require.True(t, ok)
		assert.Equal(t, ResetMailSubject, sent.Subject)

		s.MockVerification.AssertVerificationExists(t, acc.Email(), verification.PurposePasswordReset).
			AssertCodeMatches(t, mocks.RequireCode(t, sent)).
			AssertVerified(t, false).
			AssertHasDraft(t, false).
			AssertExpiresWithin(t, before, verification.CodeTTL)
	})

	t.Run("unknown email looks the same but stores and sends nothing", func(t *testing.T) {
		t.Parallel()
		s := NewRequestPasswordResetSuite(t)

		require.NoError(t, s.Handler.Handle(t.Context(), RequestPasswordReset{Email: fixtures.UnknownEmail}))

		assert.Equal(t, 0, s.MockVerification.Count())
		s.MockMail.AssertNoMailSent(t)
	})

	t.Run("new request replaces a verified one", func(t *testing.T) {
		t.Parallel()
		s := NewRequestPasswordResetSuite(t)
		acc := builders.NewAccountBuilder().WithEmail(fixtures.ValidBuyer2Email).Build()
		s.MockAccount.SeedAccount(t, acc)
		s.MockVerification.SeedVerification(t,
			builders.NewVerificationBuilder().WithEmail(acc.Email()).ForPasswordReset().Verified().Build())

		require.NoError(t, s.Handler.Handle(t.Context(), RequestPasswordReset{Email: acc.Email()}))

		assert.Equal(t, 1, s.MockVerification.Count())
		s.MockVerification.AssertVerificationExists(t, acc.Email(), verification.PurposePasswordReset).
			AssertVerified(t, false)
	})

	t.Run("signup record for the same email is untouched", func(t *testing.T) {
		t.Parallel()
		s := NewRequestPasswordResetSuite(t)
		acc := builders.NewAccountBuilder().WithEmail(fixtures.ValidSellerEmail).Build()
		s.MockAccount.SeedAccount(t, acc)
		s.MockVerification.SeedVerification(t, builders.NewVerificationBuilder().WithEmail(acc.Email()).Build())

		require.NoError(t, s.Handler.Handle(t.Context(), RequestPasswordReset{Email: acc.Email()}))

		assert.Equal(t, 2, s.MockVerification.Count())
	})

	t.Run("mail failure removes the record", func(t *testing.T) {
		t.Parallel()
		s := NewRequestPasswordResetSuite(t)
		acc := builders.NewAccountBuilder().WithEmail(fixtures.ValidAdminEmail).Build()
		s.MockAccount.SeedAccount(t, acc)
		s.MockMail.FailWith(errors.New("smtp timeout"))

		err := s.Handler.Handle(t.Context(), RequestPasswordReset{Email: acc.Email()})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMailDispatch)
		s.MockVerification.AssertVerificationNotExists(t, acc.Email(), verification.PurposePasswordReset)
	})
}
