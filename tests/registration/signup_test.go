package registration

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"gitlab.com/souqly/auth-backend/internal/adapters/services/s3"
	event "gitlab.com/souqly/auth-backend/internal/application/mail/event"
	"gitlab.com/souqly/auth-backend/internal/application/registration/cmd"
	"gitlab.com/souqly/auth-backend/internal/domain/account"
	"gitlab.com/souqly/auth-backend/internal/domain/valueobject/role"
	"gitlab.com/souqly/auth-backend/internal/domain/verification"
	accounthttp "gitlab.com/souqly/auth-backend/internal/ports/http/account"
	authhttp "gitlab.com/souqly/auth-backend/internal/ports/http/auth"
	"gitlab.com/souqly/auth-backend/pkg/errorx"
	"gitlab.com/souqly/auth-backend/tests/integration/builders"
	"gitlab.com/souqly/auth-backend/tests/integration/fixtures"
	"gitlab.com/souqly/auth-backend/tests/integration/framework"
	httpframework "gitlab.com/souqly/auth-backend/tests/integration/framework/http"
	"gitlab.com/souqly/auth-backend/tests/mocks"
)

type SignupIntegrationSuite struct {
	framework.IntegrationTestSuite
}

func TestSignupIntegrationSuite(t *testing.T) {
	suite.Run(t, new(SignupIntegrationSuite))
}

func buyerSignup(email string) httpframework.SignupRequest {
	return httpframework.SignupRequest{
		FirstName:       fixtures.TestBuyer.FirstName,
		LastName:        fixtures.TestBuyer.LastName,
		Email:           email,
		Password:        fixtures.ValidPassword,
		ConfirmPassword: fixtures.ValidPassword,
		Role:            role.Buyer.String(),
		PreferredLang:   "en",
		Address: map[string]string{
			"country": "Egypt",
			"city":    "Cairo",
			"street":  "Tahrir St",
		},
	}
}

func sellerForm(email string) *httpframework.MultipartFormBuilder {
	return httpframework.NewMultipartFormBuilder().
		AddField("firstName", fixtures.TestSeller.FirstName).
		AddField("lastName", fixtures.TestSeller.LastName).
		AddField("email", email).
		AddField("password", fixtures.ValidPassword).
		AddField("confirmPassword", fixtures.ValidPassword).
		AddField("role", role.Seller.String()).
		AddField("shopName", "Omar's Spices").
		AddField("address", "12 Khan el-Khalili, Cairo").
		AddField("categories", "spices").
		AddField("categories", "tea").
		AddField("idType", "national_id").
		AddField("idNumber", "29001011234567")
}

func (s *SignupIntegrationSuite) requireCode(t *testing.T, email string) string {
	t.Helper()

	payload, ok := s.MailSender.LastMailTo(email)
	require.True(t, ok, "no mail sent to %s", email)
	assert.Equal(t, cmd.VerificationMailSubject, payload.Subject)

	return mocks.RequireCode(t, payload)
}

func (s *SignupIntegrationSuite) TestBuyerSignup_HappyPath() {
	t := s.T()
	email := fixtures.ValidBuyerEmail

	s.HTTP.Signup(t, buyerSignup(email)).
		AssertSuccess().
		AssertMessage("Verification code sent to your email.")

	s.DB.RequireVerificationExists(t, email, verification.PurposeEmailVerification).
		AssertHasDraft(t, true).
		AssertVerified(t, false)
	s.DB.RequireAccountNotExists(t, email)

	code := s.requireCode(t, email)

	resp := s.HTTP.VerifyEmail(t, email, code).AssertCreated()
	body := resp.JSON()
	assert.Equal(t, "Email verified successfully", body["message"])
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	principal, err := s.Sessions.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, role.Buyer, principal.Role)

	s.DB.RequireAccountExists(t, email).
		AssertRole(t, role.Buyer).
		AssertPassword(t, fixtures.ValidPassword).
		AssertName(t, fixtures.TestBuyer.FirstName, fixtures.TestBuyer.LastName)
	s.DB.RequireVerificationNotExists(t, email, verification.PurposeEmailVerification)

	registered := s.Event.AssertAccountRegistered(t, email)
	assert.Equal(t, role.Buyer, registered.Role)
	assert.False(t, registered.PendingApproval)

	s.RequireMailEventually(t, email, event.WelcomeSubject)
}

func (s *SignupIntegrationSuite) TestSellerSignup_WithDocument_PendingApproval() {
	t := s.T()
	email := fixtures.ValidSellerEmail

	form := sellerForm(email).AddFile(authhttp.DocumentField,
		fixtures.ValidPDFDocument.Name,
		fixtures.ValidPDFDocument.ContentType,
		fixtures.ValidPDFDocument.Data,
	)
	s.HTTP.SignupMultipart(t, form).AssertSuccess()

	code := s.requireCode(t, email)

	body := s.HTTP.VerifyEmail(t, email, code).AssertCreated().JSON()
	assert.Equal(t, true, body["pendingApproval"])
	assert.NotContains(t, body, "token", "a seller awaiting approval gets no session")

	a := s.DB.GetAccount(t, email)
	account.NewAssertion(a).
		AssertRole(t, role.Seller).
		AssertCardStatus(t, account.CardStatusSubmitted)
	sp := account.NewAssertion(a).AssertSellerProfile(t)
	assert.Equal(t, []string{"spices", "tea"}, sp.Categories)
	require.NotNil(t, sp.Card)
	assert.True(t, strings.Contains(sp.Card.DocumentURL, "/"+s3.SellerCardsFolder+"/"+s3.TempOwner+"/"))

	stored := s.S3.RequireDocument(t, sp.Card.DocumentURL)
	assert.Equal(t, fixtures.ValidPDFDocument.Data, stored)

	registered := s.Event.AssertAccountRegistered(t, email)
	assert.True(t, registered.PendingApproval)
	s.RequireMailEventually(t, email, event.PendingApprovalSubject)

	s.HTTP.Login(t, email, fixtures.ValidPassword).
		AssertStatus(account.ErrNotApproved.HTTPStatusCode()).
		AssertCode(errorx.CodeNotApproved)
}

func (s *SignupIntegrationSuite) TestSellerSignup_WithoutDocument() {
	t := s.T()
	email := fixtures.ValidSeller2Email

	s.HTTP.SignupMultipart(t, sellerForm(email)).AssertSuccess()

	code := s.requireCode(t, email)
	body := s.HTTP.VerifyEmail(t, email, code).AssertCreated().JSON()
	assert.NotContains(t, body, "pendingApproval")
	token, _ := body["token"].(string)
	require.NotEmpty(t, token, "a seller without a card gets a session to hand one in")

	s.DB.RequireAccountExists(t, email).
		AssertRole(t, role.Seller).
		AssertNoCard(t)

	registered := s.Event.AssertAccountRegistered(t, email)
	assert.False(t, registered.PendingApproval)

	form := httpframework.NewMultipartFormBuilder().
		AddField("idType", "national_id").
		AddField("idNumber", "29001011234567").
		AddFile(accounthttp.DocumentField,
			fixtures.ValidPDFDocument.Name,
			fixtures.ValidPDFDocument.ContentType,
			fixtures.ValidPDFDocument.Data,
		)
	s.HTTP.SubmitVerificationCard(t, token, form).AssertCreated()
	s.DB.RequireAccountExists(t, email).AssertCardStatus(t, account.CardStatusSubmitted)

	s.HTTP.Login(t, email, fixtures.ValidPassword).
		AssertStatus(account.ErrNotApproved.HTTPStatusCode()).
		AssertCode(errorx.CodeNotApproved)
}

func (s *SignupIntegrationSuite) TestSignup_Rejections() {
	t := s.T()

	taken := s.Builder.Account.Buyer(fixtures.ValidBuyer2Email)
	s.DB.SeedAccount(t, taken)

	tests := []struct {
		name   string
		mutate func(*httpframework.SignupRequest)
		status int
		code   errorx.Code
	}{
		{
			name:   "email already registered",
			mutate: func(r *httpframework.SignupRequest) { r.Email = fixtures.ValidBuyer2Email },
			status: account.ErrEmailTaken.HTTPStatusCode(),
			code:   errorx.CodeEmailTaken,
		},
		{
			name:   "admin role",
			mutate: func(r *httpframework.SignupRequest) { r.Role = role.Admin.String() },
			status: account.ErrInvalidRole.HTTPStatusCode(),
			code:   errorx.CodeInvalidRole,
		},
		{
			name: "password mismatch",
			mutate: func(r *httpframework.SignupRequest) {
				r.ConfirmPassword = fixtures.ValidPassword2
			},
			status: http.StatusBadRequest,
			code:   errorx.CodeValidationFailed,
		},
		{
			name:   "weak password",
			mutate: func(r *httpframework.SignupRequest) { r.Password, r.ConfirmPassword = "short", "short" },
			status: http.StatusBadRequest,
			code:   errorx.CodeValidationFailed,
		},
		{
			name:   "invalid email",
			mutate: func(r *httpframework.SignupRequest) { r.Email = fixtures.InvalidEmail },
			status: http.StatusBadRequest,
			code:   errorx.CodeValidationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s.MailSender.Reset()
			req := buyerSignup(fixtures.ValidBuyerEmail)
			tt.mutate(&req)

			s.HTTP.Signup(t, req).AssertStatus(tt.status).AssertCode(tt.code)

			s.MailSender.AssertNoMailSent(t)
			s.DB.RequireVerificationNotExists(t, fixtures.ValidBuyerEmail, verification.PurposeEmailVerification)
		})
	}
}

func (s *SignupIntegrationSuite) TestSignup_RejectedDocuments() {
	t := s.T()

	tests := []struct {
		name   string
		doc    fixtures.DocumentFile
		status int
	}{
		{name: "plain text", doc: fixtures.TextDocument, status: s3.ErrUnsupportedDocument.HTTPStatusCode()},
		{name: "over the size limit", doc: fixtures.OversizedPDFDocument, status: s3.ErrDocumentTooLarge.HTTPStatusCode()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := sellerForm(fixtures.ValidSellerEmail).
				AddFile(authhttp.DocumentField, tt.doc.Name, tt.doc.ContentType, tt.doc.Data)

			s.HTTP.SignupMultipart(t, form).AssertStatus(tt.status)

			s.DB.RequireVerificationNotExists(t, fixtures.ValidSellerEmail, verification.PurposeEmailVerification)
		})
	}
}

func (s *SignupIntegrationSuite) TestSignup_ResendReplacesCode() {
	t := s.T()
	email := fixtures.ValidBuyerEmail

	s.HTTP.Signup(t, buyerSignup(email)).AssertSuccess()
	first := s.requireCode(t, email)

	s.HTTP.Signup(t, buyerSignup(email)).AssertSuccess()
	second := s.requireCode(t, email)

	if first != second {
		s.HTTP.VerifyEmail(t, email, first).
			AssertStatus(verification.ErrInvalidCode.HTTPStatusCode()).
			AssertCode(errorx.CodeInvalidCode)
	}
	s.HTTP.VerifyEmail(t, email, second).AssertCreated()
}

func (s *SignupIntegrationSuite) TestVerifyEmail_Failures() {
	t := s.T()

	expired := builders.NewVerificationBuilder().
		WithEmail(fixtures.ValidBuyer2Email).
		WithCode("123456").
		WithExpiredCode().
		ForSignup(account.DraftArgs{
			FirstName: fixtures.TestBuyer.FirstName,
			LastName:  fixtures.TestBuyer.LastName,
			Email:     fixtures.ValidBuyer2Email,
			Role:      role.Buyer.String(),
		}).
		Build()
	s.DB.SeedVerification(t, expired)

	s.HTTP.Signup(t, buyerSignup(fixtures.ValidBuyerEmail)).AssertSuccess()

	s.Run("wrong code", func() {
		s.HTTP.VerifyEmail(s.T(), fixtures.ValidBuyerEmail, fixtures.WrongCode).
			AssertStatus(verification.ErrInvalidCode.HTTPStatusCode()).
			AssertCode(errorx.CodeInvalidCode)
		s.DB.RequireAccountNotExists(s.T(), fixtures.ValidBuyerEmail)
	})

	s.Run("expired code discards the signup", func() {
		s.HTTP.VerifyEmail(s.T(), fixtures.ValidBuyer2Email, "123456").
			AssertStatus(verification.ErrCodeExpired.HTTPStatusCode()).
			AssertCode(errorx.CodeCodeExpired)
		s.DB.RequireVerificationNotExists(s.T(), fixtures.ValidBuyer2Email, verification.PurposeEmailVerification)
	})

	s.Run("no pending signup", func() {
		s.HTTP.VerifyEmail(s.T(), fixtures.UnknownEmail, "123456").
			AssertStatus(verification.ErrVerificationNotFound.HTTPStatusCode())
	})
}
