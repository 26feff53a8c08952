package auth

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"gitlab.com/souqly/auth-backend/internal/domain/account"
	"gitlab.com/souqly/auth-backend/internal/domain/valueobject/role"
	"gitlab.com/souqly/auth-backend/pkg/errorx"
	"gitlab.com/souqly/auth-backend/tests/integration/builders"
	"gitlab.com/souqly/auth-backend/tests/integration/fixtures"
	"gitlab.com/souqly/auth-backend/tests/integration/framework"
	httpframework "gitlab.com/souqly/auth-backend/tests/integration/framework/http"
)

type AuthIntegrationSuite struct {
	framework.IntegrationTestSuite
}

func TestAuthIntegrationSuite(t *testing.T) {
	suite.Run(t, new(AuthIntegrationSuite))
}

func (s *AuthIntegrationSuite) TestLogin() {
	buyer := s.Builder.Account.Buyer(fixtures.ValidBuyerEmail)
	seller := s.Builder.Account.ApprovedSeller(fixtures.ValidSellerEmail)
	admin := s.Builder.Account.Admin(fixtures.ValidAdminEmail)
	for _, a := range []*account.Account{buyer, seller, admin} {
		s.DB.SeedAccount(s.T(), a)
	}

	tests := []struct {
		name  string
		email string
		want  *account.Account
	}{
		{name: "buyer", email: buyer.Email(), want: buyer},
		{name: "approved seller", email: seller.Email(), want: seller},
		{name: "admin", email: admin.Email(), want: admin},
		{name: "email is case insensitive", email: "  BUYER@Test.com ", want: buyer},
	}

	for _, tt := range tests {
		s.T().Run(tt.name, func(t *testing.T) {
			body := s.HTTP.Login(t, tt.email, fixtures.ValidPassword).AssertSuccess().JSON()

			token, _ := body["token"].(string)
			require.NotEmpty(t, token)
			assert.EqualValues(t, s.Sessions.TTL().Seconds(), body["expiresIn"])

			principal, err := s.Sessions.ParseAccessToken(token)
			require.NoError(t, err)
			assert.Equal(t, tt.want.ID(), principal.ID)
			assert.Equal(t, tt.want.Role(), principal.Role)

			user, ok := body["user"].(map[string]any)
			require.True(t, ok, "user missing from login response")
			assert.Equal(t, tt.want.Email(), user["email"])
			assert.Equal(t, tt.want.Role().String(), user["role"])
		})
	}
}

func (s *AuthIntegrationSuite) TestLogin_Rejected() {
	s.DB.SeedAccount(s.T(), s.Builder.Account.Buyer(fixtures.ValidBuyerEmail))
	s.DB.SeedAccount(s.T(), s.Builder.Account.PendingSeller(fixtures.ValidSellerEmail))
	s.DB.SeedAccount(s.T(), builders.NewAccountBuilder().
		WithEmail(fixtures.ValidSeller2Email).
		AsSeller().
		WithCard(account.CardStatusRejected).
		Build())

	tests := []struct {
		name     string
		email    string
		password string
		status   int
		code     errorx.Code
	}{
		{
			name:     "wrong password",
			email:    fixtures.ValidBuyerEmail,
			password: fixtures.ValidPassword2,
			status:   account.ErrInvalidCredentials.HTTPStatusCode(),
			code:     errorx.CodeInvalidCredentials,
		},
		{
			name:     "unknown email answers like a wrong password",
			email:    fixtures.UnknownEmail,
			password: fixtures.ValidPassword,
			status:   account.ErrInvalidCredentials.HTTPStatusCode(),
			code:     errorx.CodeInvalidCredentials,
		},
		{
			name:     "seller with card under review",
			email:    fixtures.ValidSellerEmail,
			password: fixtures.ValidPassword,
			status:   account.ErrNotApproved.HTTPStatusCode(),
			code:     errorx.CodeNotApproved,
		},
		{
			name:     "seller with rejected card",
			email:    fixtures.ValidSeller2Email,
			password: fixtures.ValidPassword,
			status:   account.ErrNotApproved.HTTPStatusCode(),
			code:     errorx.CodeNotApproved,
		},
		{
			name:     "empty password",
			email:    fixtures.ValidBuyerEmail,
			password: "",
			status:   http.StatusBadRequest,
			code:     errorx.CodeValidationFailed,
		},
	}

	for _, tt := range tests {
		s.T().Run(tt.name, func(t *testing.T) {
			s.HTTP.Login(t, tt.email, tt.password).
				AssertStatus(tt.status).
				AssertCode(tt.code)
		})
	}
}

func (s *AuthIntegrationSuite) TestUpdateFcmToken() {
	t := s.T()
	buyer := s.Builder.Account.Buyer(fixtures.ValidBuyerEmail)
	s.DB.SeedAccount(t, buyer)

	s.HTTP.UpdateFcmToken(t, s.AccessToken(buyer), fixtures.ValidNotificationToken).
		AssertSuccess().
		AssertMessage("FCM Token updated successfully.")

	stored := s.DB.StoredNotificationToken(t, buyer.Email())
	require.NotEmpty(t, stored)
	assert.NotEqual(t, fixtures.ValidNotificationToken, stored, "token must be sealed at rest")

	opened, err := s.Sealer.Open(stored)
	require.NoError(t, err)
	assert.Equal(t, fixtures.ValidNotificationToken, opened)
}

func (s *AuthIntegrationSuite) TestUpdateFcmToken_PendingSeller() {
	t := s.T()
	seller := s.Builder.Account.PendingSeller(fixtures.ValidSellerEmail)
	s.DB.SeedAccount(t, seller)

	s.HTTP.UpdateFcmToken(t, s.AccessToken(seller), fixtures.ValidNotificationToken).AssertSuccess()
}

func (s *AuthIntegrationSuite) TestUpdateFcmToken_Validation() {
	t := s.T()
	buyer := s.Builder.Account.Buyer(fixtures.ValidBuyerEmail)
	s.DB.SeedAccount(t, buyer)

	s.HTTP.UpdateFcmToken(t, s.AccessToken(buyer), "   ").
		AssertBadRequest().
		AssertCode(errorx.CodeValidationFailed)
}

func (s *AuthIntegrationSuite) TestBearerAuth() {
	buyer := s.Builder.Account.Buyer(fixtures.ValidBuyerEmail)
	s.DB.SeedAccount(s.T(), buyer)

	tests := []struct {
		name   string
		header string
		status int
		code   errorx.Code
	}{
		{
			name:   "missing header",
			header: "",
			status: http.StatusUnauthorized,
			code:   errorx.CodeUnauthorized,
		},
		{
			name:   "not a bearer scheme",
			header: "Basic dXNlcjpwYXNz",
			status: http.StatusUnauthorized,
			code:   errorx.CodeUnauthorized,
		},
		{
			name: "expired token",
			header: "Bearer " + s.Builder.JWT.AccessTokenBuilder(buyer.ID().String(), role.Buyer.String()).
				WithIssuedAt(time.Now().Add(-2*time.Hour)).
				WithExpiration(time.Now().Add(-time.Hour)).
				BuildSignedStringT(s.T()),
			status: errorx.NewTokenExpired().HTTPStatusCode(),
			code:   errorx.CodeTokenExpired,
		},
		{
			name: "foreign signature",
			header: "Bearer " + s.Builder.JWT.AccessTokenBuilder(buyer.ID().String(), role.Buyer.String()).
				WithSecret([]byte("some-other-secret")).
				BuildSignedStringT(s.T()),
			status: http.StatusUnauthorized,
			code:   errorx.CodeUnauthorized,
		},
		{
			name: "unknown role claim",
			header: "Bearer " + s.Builder.JWT.AccessTokenBuilder(buyer.ID().String(), "root").
				BuildSignedStringT(s.T()),
			status: http.StatusUnauthorized,
			code:   errorx.CodeUnauthorized,
		},
	}

	for _, tt := range tests {
		s.T().Run(tt.name, func(t *testing.T) {
			req := httpframework.NewRequest(http.MethodGet, "/api/v1/me")
			if tt.header != "" {
				req.WithHeader("Authorization", tt.header)
			}

			s.HTTP.Do(t, req.Build()).AssertStatus(tt.status).AssertCode(tt.code)
		})
	}
}

func (s *AuthIntegrationSuite) TestGetMe() {
	t := s.T()
	seller := s.Builder.Account.ApprovedSeller(fixtures.ValidSellerEmail)
	s.DB.SeedAccount(t, seller)

	body := s.HTTP.GetMe(t, s.AccessToken(seller)).AssertSuccess().JSON()

	user, ok := body["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, seller.ID().String(), user["id"])
	assert.Equal(t, role.Seller.String(), user["role"])

	profile, ok := user["sellerProfile"].(map[string]any)
	require.True(t, ok, "seller profile missing")
	card, ok := profile["verificationCard"].(map[string]any)
	require.True(t, ok, "verification card missing")
	assert.Equal(t, string(account.CardStatusVerified), card["status"])
	assert.NotContains(t, card, "documentUrl")
}

func (s *AuthIntegrationSuite) TestHealthz() {
	s.HTTP.Do(s.T(), httpframework.NewRequest(http.MethodGet, "/healthz").Build()).AssertSuccess()
}
