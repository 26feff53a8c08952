package cmd

import (
	"context"
	"time"

	"gitlab.com/souqly/auth-backend/internal/domain/account"
	"gitlab.com/souqly/auth-backend/internal/domain/valueobject/mail"
	"gitlab.com/souqly/auth-backend/internal/domain/verification"
)

type VerificationRepo interface {
	SaveVerification(ctx context.Context, v *verification.PendingVerification) error
	DeleteVerification(ctx context.Context, id verification.ID) error
	UpdateVerification(
		ctx context.Context,
		email string,
		purpose verification.Purpose,
		fn func(context.Context, *verification.PendingVerification) error,
	) error
}

type AccountRepo interface {
	GetAccountByEmail(ctx context.Context, email string) (*account.Account, error)
	SaveAccount(ctx context.Context, a *account.Account) error
}

type MailSender interface {
	SendMail(ctx context.Context, payload mail.Payload) error
}

type CodeIssuer interface {
	Issue(now time.Time) (verification.IssuedCode, error)
}

type SessionIssuer interface {
	Issue(a *account.Account) (string, error)
}
