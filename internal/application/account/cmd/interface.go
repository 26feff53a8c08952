package cmd

import (
	"context"

	"gitlab.com/souqly/auth-backend/internal/domain/account"
)

type AccountRepo interface {
	UpdateAccount(ctx context.Context, id account.ID, fn func(context.Context, *account.Account) error) error
}

type TokenSealer interface {
	Seal(plaintext string) (string, error)
}
