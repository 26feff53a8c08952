package account

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"gitlab.com/souqly/auth-backend/internal/adapters/services/s3"
	event "gitlab.com/souqly/auth-backend/internal/application/mail/event"
	"gitlab.com/souqly/auth-backend/internal/domain/account"
	accounthttp "gitlab.com/souqly/auth-backend/internal/ports/http/account"
	"gitlab.com/souqly/auth-backend/pkg/errorx"
	"gitlab.com/souqly/auth-backend/tests/integration/builders"
	"gitlab.com/souqly/auth-backend/tests/integration/fixtures"
	"gitlab.com/souqly/auth-backend/tests/integration/framework"
	httpframework "gitlab.com/souqly/auth-backend/tests/integration/framework/http"
)

type AccountIntegrationSuite struct {
	framework.IntegrationTestSuite
}

func TestAccountIntegrationSuite(t *testing.T) {
	suite.Run(t, new(AccountIntegrationSuite))
}

func cardForm() *httpframework.MultipartFormBuilder {
	return httpframework.NewMultipartFormBuilder().
		AddField("idType", "passport").
		AddField("idNumber", "A12345678")
}

func (s *AccountIntegrationSuite) TestSubmitVerificationCard() {
	t := s.T()
	seller := builders.NewAccountBuilder().WithEmail(fixtures.ValidSellerEmail).AsSeller().Build()
	s.DB.SeedAccount(t, seller)

	form := cardForm().AddFile(accounthttp.DocumentField,
		fixtures.ValidPNGDocument.Name,
		fixtures.ValidPNGDocument.ContentType,
		fixtures.ValidPNGDocument.Data,
	)
	s.HTTP.SubmitVerificationCard(t, s.AccessToken(seller), form).
		AssertCreated().
		AssertMessage("Verification card submitted.")

	a := s.DB.GetAccount(t, seller.Email())
	account.NewAssertion(a).AssertCardStatus(t, account.CardStatusSubmitted)
	sp := account.NewAssertion(a).AssertSellerProfile(t)
	require.NotNil(t, sp.Card)
	assert.Equal(t, "passport", sp.Card.IDType)
	assert.Equal(t, "A12345678", sp.Card.IDNumber)
	assert.True(t, strings.Contains(sp.Card.DocumentURL, "/"+s3.SellerCardsFolder+"/"+seller.ID().String()+"/"))

	stored := s.S3.RequireDocument(t, sp.Card.DocumentURL)
	assert.Equal(t, fixtures.ValidPNGDocument.Data, stored)

	s.HTTP.Login(t, seller.Email(), fixtures.ValidPassword).
		AssertStatus(account.ErrNotApproved.HTTPStatusCode()).
		AssertCode(errorx.CodeNotApproved)
}

func (s *AccountIntegrationSuite) TestSubmitVerificationCard_Rejected() {
	t := s.T()
	seller := builders.NewAccountBuilder().WithEmail(fixtures.ValidSellerEmail).AsSeller().Build()
	pending := s.Builder.Account.PendingSeller(fixtures.ValidSeller2Email)
	buyer := s.Builder.Account.Buyer(fixtures.ValidBuyerEmail)
	for _, a := range []*account.Account{seller, pending, buyer} {
		s.DB.SeedAccount(t, a)
	}

	withDoc := func() *httpframework.MultipartFormBuilder {
		return cardForm().AddFile(accounthttp.DocumentField,
			fixtures.ValidPDFDocument.Name,
			fixtures.ValidPDFDocument.ContentType,
			fixtures.ValidPDFDocument.Data,
		)
	}

	s.Run("missing document", func() {
		s.HTTP.SubmitVerificationCard(s.T(), s.AccessToken(seller), cardForm()).
			AssertStatus(account.ErrMissingDocument.HTTPStatusCode()).
			AssertCode(errorx.CodeValidationFailed)
		s.DB.RequireAccountExists(s.T(), seller.Email()).AssertNoCard(s.T())
	})

	s.Run("missing id number", func() {
		form := httpframework.NewMultipartFormBuilder().
			AddField("idType", "passport").
			AddFile(accounthttp.DocumentField,
				fixtures.ValidPDFDocument.Name,
				fixtures.ValidPDFDocument.ContentType,
				fixtures.ValidPDFDocument.Data,
			)
		s.HTTP.SubmitVerificationCard(s.T(), s.AccessToken(seller), form).
			AssertBadRequest().
			AssertCode(errorx.CodeValidationFailed)
	})

	s.Run("unsupported document", func() {
		form := cardForm().AddFile(accounthttp.DocumentField,
			fixtures.TextDocument.Name,
			fixtures.TextDocument.ContentType,
			fixtures.TextDocument.Data,
		)
		s.HTTP.SubmitVerificationCard(s.T(), s.AccessToken(seller), form).
			AssertStatus(s3.ErrUnsupportedDocument.HTTPStatusCode())
		s.DB.RequireAccountExists(s.T(), seller.Email()).AssertNoCard(s.T())
	})

	s.Run("card already under review", func() {
		s.HTTP.SubmitVerificationCard(s.T(), s.AccessToken(pending), withDoc()).
			AssertConflict()
		s.DB.RequireAccountExists(s.T(), pending.Email()).
			AssertCardDocument(s.T(), fixtures.DocumentURL)
	})

	s.Run("buyer", func() {
		s.HTTP.SubmitVerificationCard(s.T(), s.AccessToken(buyer), withDoc()).
			AssertForbidden()
	})

	s.Run("anonymous", func() {
		s.HTTP.Do(s.T(), httpframework.NewRequest(http.MethodPost, "/api/v1/sellers/me/verification-card").
			WithMultipart(withDoc()).
			Build()).
			AssertUnauthorized()
	})
}

func (s *AccountIntegrationSuite) TestResubmitAfterRejection() {
	t := s.T()
	seller := builders.NewAccountBuilder().
		WithEmail(fixtures.ValidSellerEmail).
		AsSeller().
		WithCard(account.CardStatusRejected).
		Build()
	s.DB.SeedAccount(t, seller)

	form := cardForm().AddFile(accounthttp.DocumentField,
		fixtures.ValidPDFDocument.Name,
		fixtures.ValidPDFDocument.ContentType,
		fixtures.ValidPDFDocument.Data,
	)
	s.HTTP.SubmitVerificationCard(t, s.AccessToken(seller), form).AssertCreated()

	a := s.DB.GetAccount(t, seller.Email())
	account.NewAssertion(a).AssertCardStatus(t, account.CardStatusSubmitted)
	sp := account.NewAssertion(a).AssertSellerProfile(t)
	assert.Empty(t, sp.Card.RejectionReason)
	assert.Nil(t, sp.Card.VerifiedBy)
}

func (s *AccountIntegrationSuite) TestApproveVerificationCard() {
	t := s.T()
	seller := s.Builder.Account.PendingSeller(fixtures.ValidSellerEmail)
	admin := s.Builder.Account.Admin(fixtures.ValidAdminEmail)
	s.DB.SeedAccount(t, seller)
	s.DB.SeedAccount(t, admin)

	s.HTTP.ApproveVerificationCard(t, s.AccessToken(admin), seller.ID().String()).
		AssertSuccess().
		AssertMessage("Verification card approved.")

	a := s.DB.GetAccount(t, seller.Email())
	account.NewAssertion(a).AssertCardStatus(t, account.CardStatusVerified)
	sp := account.NewAssertion(a).AssertSellerProfile(t)
	require.NotNil(t, sp.Card.VerifiedBy)
	assert.Equal(t, admin.ID(), *sp.Card.VerifiedBy)
	assert.NotNil(t, sp.Card.VerifiedAt)

	reviewed := s.Event.AssertVerificationCardReviewed(t, seller.Email())
	assert.True(t, reviewed.Approved)
	s.RequireMailEventually(t, seller.Email(), event.CardApprovedSubject)

	s.HTTP.Login(t, seller.Email(), fixtures.ValidPassword).AssertSuccess()

	s.HTTP.ApproveVerificationCard(t, s.AccessToken(admin), seller.ID().String()).
		AssertStatus(account.ErrCardNotSubmitted.HTTPStatusCode())
}

func (s *AccountIntegrationSuite) TestRejectVerificationCard() {
	t := s.T()
	seller := s.Builder.Account.PendingSeller(fixtures.ValidSellerEmail)
	admin := s.Builder.Account.Admin(fixtures.ValidAdminEmail)
	s.DB.SeedAccount(t, seller)
	s.DB.SeedAccount(t, admin)

	s.HTTP.RejectVerificationCard(t, s.AccessToken(admin), seller.ID().String(), "   ").
		AssertBadRequest().
		AssertCode(errorx.CodeValidationFailed)
	s.DB.RequireAccountExists(t, seller.Email()).AssertCardStatus(t, account.CardStatusSubmitted)

	s.HTTP.RejectVerificationCard(t, s.AccessToken(admin), seller.ID().String(), "document is unreadable").
		AssertSuccess().
		AssertMessage("Verification card rejected.")

	a := s.DB.GetAccount(t, seller.Email())
	account.NewAssertion(a).AssertCardStatus(t, account.CardStatusRejected)
	assert.Equal(t, "document is unreadable", account.NewAssertion(a).AssertSellerProfile(t).Card.RejectionReason)

	reviewed := s.Event.AssertVerificationCardReviewed(t, seller.Email())
	assert.False(t, reviewed.Approved)
	assert.Equal(t, "document is unreadable", reviewed.Reason)
	s.RequireMailEventually(t, seller.Email(), event.CardRejectedSubject)

	s.HTTP.Login(t, seller.Email(), fixtures.ValidPassword).
		AssertStatus(account.ErrNotApproved.HTTPStatusCode()).
		AssertCode(errorx.CodeNotApproved)
}

func (s *AccountIntegrationSuite) TestReviewVerificationCard_Rejected() {
	t := s.T()
	seller := s.Builder.Account.PendingSeller(fixtures.ValidSellerEmail)
	noCard := builders.NewAccountBuilder().WithEmail(fixtures.ValidSeller2Email).AsSeller().Build()
	buyer := s.Builder.Account.Buyer(fixtures.ValidBuyerEmail)
	admin := s.Builder.Account.Admin(fixtures.ValidAdminEmail)
	for _, a := range []*account.Account{seller, noCard, buyer, admin} {
		s.DB.SeedAccount(t, a)
	}

	tests := []struct {
		name     string
		token    string
		sellerID string
		status   int
	}{
		{
			name:     "seller reviewing",
			token:    s.AccessToken(seller),
			sellerID: seller.ID().String(),
			status:   http.StatusForbidden,
		},
		{
			name:     "buyer reviewing",
			token:    s.AccessToken(buyer),
			sellerID: seller.ID().String(),
			status:   http.StatusForbidden,
		},
		{
			name:     "card not submitted",
			token:    s.AccessToken(admin),
			sellerID: noCard.ID().String(),
			status:   account.ErrCardNotSubmitted.HTTPStatusCode(),
		},
		{
			name:     "target is not a seller",
			token:    s.AccessToken(admin),
			sellerID: buyer.ID().String(),
			status:   account.ErrNotASeller.HTTPStatusCode(),
		},
		{
			name:     "unknown seller",
			token:    s.AccessToken(admin),
			sellerID: account.NewID().String(),
			status:   account.ErrAccountNotFound.HTTPStatusCode(),
		},
		{
			name:     "malformed seller id",
			token:    s.AccessToken(admin),
			sellerID: "not-an-id",
			status:   http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s.HTTP.ApproveVerificationCard(t, tt.token, tt.sellerID).AssertStatus(tt.status)
		})
	}

	s.DB.RequireAccountExists(t, seller.Email()).AssertCardStatus(t, account.CardStatusSubmitted)
	s.Event.AssertNoEvent(t, "account.VerificationCardReviewed", seller.Email())
}
