package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/souqly/auth-backend/internal/adapters/repos/postgres"
	"gitlab.com/souqly/auth-backend/internal/domain/account"
	"gitlab.com/souqly/auth-backend/internal/domain/verification"
)

type Helper struct {
	pool         *pgxpool.Pool
	account      *postgres.AccountRepo
	verification *postgres.VerificationRepo
}

type Args struct {
	Pool         *pgxpool.Pool
	Account      *postgres.AccountRepo
	Verification *postgres.VerificationRepo
}

func NewHelper(args Args) *Helper {
	if args.Pool == nil {
		panic("pgxpool.Pool is required")
	}
	if args.Account == nil {
		args.Account = postgres.NewAccountRepo(args.Pool, nil, nil)
	}
	if args.Verification == nil {
		args.Verification = postgres.NewVerificationRepo(args.Pool, nil, nil)
	}

	return &Helper{
		pool:         args.Pool,
		account:      args.Account,
		verification: args.Verification,
	}
}

func (h *Helper) QueryOne(t *testing.T, query string, args ...any) pgx.Row {
	t.Helper()
	return h.pool.QueryRow(context.Background(), query, args...)
}

func (h *Helper) Exec(t *testing.T, query string, args ...any) pgconn.CommandTag {
	t.Helper()

	tag, err := h.pool.Exec(context.Background(), query, args...)
	require.NoError(t, err)

	return tag
}

func (h *Helper) TruncateAll(t *testing.T) {
	t.Helper()

	for _, table := range []string{"verifications", "accounts"} {
		_, err := h.pool.Exec(context.Background(), fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		require.NoError(t, err, "failed to truncate table %s", table)
	}
}

func (h *Helper) SeedAccount(t *testing.T, a *account.Account) {
	t.Helper()
	require.NoError(t, h.account.SaveAccount(t.Context(), a))
}

func (h *Helper) SeedVerification(t *testing.T, v *verification.PendingVerification) {
	t.Helper()
	require.NoError(t, h.verification.SaveVerification(t.Context(), v))
}

func (h *Helper) RequireAccountExists(t *testing.T, email string) *account.Assertion {
	t.Helper()

	a, err := h.account.GetAccountByEmail(t.Context(), email)
	require.NoError(t, err, "account not found for email: %s", email)

	return account.NewAssertion(a)
}

func (h *Helper) GetAccount(t *testing.T, email string) *account.Account {
	t.Helper()

	a, err := h.account.GetAccountByEmail(t.Context(), email)
	require.NoError(t, err, "account not found for email: %s", email)

	return a
}

func (h *Helper) RequireAccountNotExists(t *testing.T, email string) {
	t.Helper()

	var count int
	err := h.pool.QueryRow(context.Background(),
		"SELECT COUNT(*) FROM accounts WHERE email = $1", email).Scan(&count)

	require.NoError(t, err)
	assert.Equal(t, 0, count, "expected no account for email %s, but found %d", email, count)
}

// StoredNotificationToken returns the column as written, i.e. still sealed.
func (h *Helper) StoredNotificationToken(t *testing.T, email string) string {
	t.Helper()

	var token string
	err := h.pool.QueryRow(context.Background(),
		"SELECT notification_token FROM accounts WHERE email = $1", email).Scan(&token)
	require.NoError(t, err)

	return token
}

func (h *Helper) GetVerification(t *testing.T, email string, purpose verification.Purpose) (*verification.PendingVerification, bool) {
	t.Helper()

	var dto postgres.VerificationDTO
	err := h.pool.QueryRow(context.Background(), `
        SELECT id, email, purpose, code_hash, expires_at, verified, draft, created_at, updated_at
        FROM verifications
        WHERE email = $1 AND purpose = $2`, email, purpose.String()).Scan(
		&dto.ID, &dto.Email, &dto.Purpose, &dto.CodeHash, &dto.ExpiresAt,
		&dto.Verified, &dto.Draft, &dto.CreatedAt, &dto.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false
	}
	require.NoError(t, err)

	v, err := postgres.VerificationToDomain(dto)
	require.NoError(t, err)

	return v, true
}

func (h *Helper) RequireVerificationExists(t *testing.T, email string, purpose verification.Purpose) *verification.Assertion {
	t.Helper()

	v, ok := h.GetVerification(t, email, purpose)
	require.True(t, ok, "verification not found for email %s purpose %s", email, purpose)

	return verification.NewAssertion(v)
}

func (h *Helper) RequireVerificationNotExists(t *testing.T, email string, purpose verification.Purpose) {
	t.Helper()

	_, ok := h.GetVerification(t, email, purpose)
	assert.False(t, ok, "expected no verification for email %s purpose %s", email, purpose)
}
