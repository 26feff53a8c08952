package passwordreset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"gitlab.com/souqly/auth-backend/internal/application/passwordreset/cmd"
	"gitlab.com/souqly/auth-backend/internal/domain/account"
	"gitlab.com/souqly/auth-backend/internal/domain/verification"
	"gitlab.com/souqly/auth-backend/pkg/errorx"
	"gitlab.com/souqly/auth-backend/tests/integration/builders"
	"gitlab.com/souqly/auth-backend/tests/integration/fixtures"
	"gitlab.com/souqly/auth-backend/tests/integration/framework"
	"gitlab.com/souqly/auth-backend/tests/mocks"
)

type PasswordResetIntegrationSuite struct {
	framework.IntegrationTestSuite
}

func TestPasswordResetIntegrationSuite(t *testing.T) {
	suite.Run(t, new(PasswordResetIntegrationSuite))
}

func (s *PasswordResetIntegrationSuite) TestFullFlow() {
	t := s.T()
	buyer := s.Builder.Account.Buyer(fixtures.ValidBuyerEmail)
	s.DB.SeedAccount(t, buyer)
	startedAt := time.Now()

	s.HTTP.ForgetPassword(t, buyer.Email()).
		AssertSuccess().
		AssertMessage("Password reset code sent to your email.")

	payload, ok := s.MailSender.LastMailTo(buyer.Email())
	require.True(t, ok)
	assert.Equal(t, cmd.ResetMailSubject, payload.Subject)
	code := mocks.RequireCode(t, payload)

	s.DB.RequireVerificationExists(t, buyer.Email(), verification.PurposePasswordReset).
		AssertHasDraft(t, false).
		AssertVerified(t, false).
		AssertCodeMatches(t, code)

	s.HTTP.VerifyForgotPasswordCode(t, buyer.Email(), code).
		AssertSuccess().
		AssertMessage("Code verified successfully")
	s.DB.RequireVerificationExists(t, buyer.Email(), verification.PurposePasswordReset).
		AssertVerified(t, true)

	body := s.HTTP.ResetPassword(t, buyer.Email(), fixtures.ValidPassword2, fixtures.ValidPassword2).
		AssertSuccess().
		JSON()
	assert.Equal(t, "Password reset successfully", body["message"])
	token, _ := body["token"].(string)
	principal, err := s.Sessions.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, buyer.ID(), principal.ID)

	s.DB.RequireAccountExists(t, buyer.Email()).
		AssertPassword(t, fixtures.ValidPassword2).
		AssertPasswordChangedAfter(t, startedAt)
	s.DB.RequireVerificationNotExists(t, buyer.Email(), verification.PurposePasswordReset)

	s.HTTP.Login(t, buyer.Email(), fixtures.ValidPassword).AssertStatus(account.ErrInvalidCredentials.HTTPStatusCode())
	s.HTTP.Login(t, buyer.Email(), fixtures.ValidPassword2).AssertSuccess()
}

func (s *PasswordResetIntegrationSuite) TestForgetPassword_UnknownEmail() {
	t := s.T()

	s.HTTP.ForgetPassword(t, fixtures.UnknownEmail).
		AssertSuccess().
		AssertMessage("Password reset code sent to your email.")

	s.MailSender.AssertNoMailSent(t)
	s.DB.RequireVerificationNotExists(t, fixtures.UnknownEmail, verification.PurposePasswordReset)
}

func (s *PasswordResetIntegrationSuite) TestResetPassword_WithoutVerifiedCode() {
	t := s.T()
	buyer := s.Builder.Account.Buyer(fixtures.ValidBuyerEmail)
	s.DB.SeedAccount(t, buyer)
	s.DB.SeedVerification(t, builders.NewVerificationBuilder().
		WithEmail(buyer.Email()).
		WithCode("482913").
		ForPasswordReset().
		Build())

	s.HTTP.ResetPassword(t, buyer.Email(), fixtures.ValidPassword2, fixtures.ValidPassword2).
		AssertStatus(verification.ErrResetNotVerified.HTTPStatusCode()).
		AssertCode(errorx.CodeNotVerified)

	s.DB.RequireAccountExists(t, buyer.Email()).AssertPassword(t, fixtures.ValidPassword)
}

func (s *PasswordResetIntegrationSuite) TestVerifyCode_Failures() {
	t := s.T()
	buyer := s.Builder.Account.Buyer(fixtures.ValidBuyerEmail)
	other := s.Builder.Account.Buyer(fixtures.ValidBuyer2Email)
	s.DB.SeedAccount(t, buyer)
	s.DB.SeedAccount(t, other)
	s.DB.SeedVerification(t, builders.NewVerificationBuilder().
		WithEmail(buyer.Email()).
		WithCode("482913").
		ForPasswordReset().
		Build())
	s.DB.SeedVerification(t, builders.NewVerificationBuilder().
		WithEmail(other.Email()).
		WithCode("482913").
		WithExpiredCode().
		ForPasswordReset().
		Build())

	s.Run("wrong code", func() {
		s.HTTP.VerifyForgotPasswordCode(s.T(), buyer.Email(), fixtures.WrongCode).
			AssertStatus(verification.ErrInvalidResetCode.HTTPStatusCode()).
			AssertCode(errorx.CodeInvalidCode)
		s.DB.RequireVerificationExists(s.T(), buyer.Email(), verification.PurposePasswordReset).
			AssertVerified(s.T(), false)
	})

	s.Run("expired code", func() {
		s.HTTP.VerifyForgotPasswordCode(s.T(), other.Email(), "482913").
			AssertStatus(verification.ErrCodeExpired.HTTPStatusCode()).
			AssertCode(errorx.CodeCodeExpired)
		s.DB.RequireVerificationNotExists(s.T(), other.Email(), verification.PurposePasswordReset)
	})

	s.Run("no reset requested", func() {
		s.HTTP.VerifyForgotPasswordCode(s.T(), fixtures.UnknownEmail, "482913").
			AssertStatus(verification.ErrResetNotFound.HTTPStatusCode())
	})
}

func (s *PasswordResetIntegrationSuite) TestResetPassword_Validation() {
	t := s.T()

	s.HTTP.ResetPassword(t, fixtures.ValidBuyerEmail, fixtures.ValidPassword2, fixtures.ValidPassword).
		AssertBadRequest().
		AssertCode(errorx.CodeValidationFailed)
	s.HTTP.ResetPassword(t, fixtures.ValidBuyerEmail, fixtures.InvalidPassword, fixtures.InvalidPassword).
		AssertBadRequest().
		AssertCode(errorx.CodeValidationFailed)
}

func (s *PasswordResetIntegrationSuite) TestForgetPassword_SecondRequestSupersedesFirst() {
	t := s.T()
	buyer := s.Builder.Account.Buyer(fixtures.ValidBuyerEmail)
	s.DB.SeedAccount(t, buyer)

	s.HTTP.ForgetPassword(t, buyer.Email()).AssertSuccess()
	firstMail, ok := s.MailSender.LastMailTo(buyer.Email())
	require.True(t, ok)
	first := mocks.RequireCode(t, firstMail)

	s.HTTP.ForgetPassword(t, buyer.Email()).AssertSuccess()
	secondMail, ok := s.MailSender.LastMailTo(buyer.Email())
	require.True(t, ok)
	second := mocks.RequireCode(t, secondMail)

	var rows int
	err := s.DB.QueryOne(t, `SELECT COUNT(*) FROM verifications WHERE email = $1 AND purpose = $2`,
		buyer.Email(), string(verification.PurposePasswordReset)).Scan(&rows)
	require.NoError(t, err)
	assert.Equal(t, 1, rows)

	stored := s.DB.RequireVerificationExists(t, buyer.Email(), verification.PurposePasswordReset).
		AssertCodeMatches(t, second)
	if first != second {
		stored.AssertCodeDoesNotMatch(t, first)
		s.HTTP.VerifyForgotPasswordCode(t, buyer.Email(), first).
			AssertStatus(verification.ErrInvalidResetCode.HTTPStatusCode()).
			AssertCode(errorx.CodeInvalidCode)
	}

	s.HTTP.VerifyForgotPasswordCode(t, buyer.Email(), second).AssertSuccess()
}
