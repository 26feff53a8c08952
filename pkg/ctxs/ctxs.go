package ctxs

import (
	"context"

	"github.com/jackc/pgx/v5"

	"gitlab.com/souqly/auth-backend/internal/domain/account"
	"gitlab.com/souqly/auth-backend/internal/domain/valueobject/role"
)

type ctxKey string

const (
	txKey      ctxKey = "pgxTx"
	accountKey ctxKey = "account"
)

// Principal is the authenticated caller extracted from a session token.
type Principal struct {
	ID   account.ID
	Role role.Role
}

func WithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txKey, tx)
}

func Tx(ctx context.Context) (pgx.Tx, bool) {
	tx, ok := ctx.Value(txKey).(pgx.Tx)
	return tx, ok && tx != nil
}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, accountKey, p)
}

func PrincipalFromCtx(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(accountKey).(*Principal)
	return p, ok && p != nil
}
