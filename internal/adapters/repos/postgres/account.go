package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"gitlab.com/souqly/auth-backend/internal/domain/account"
	"gitlab.com/souqly/auth-backend/pkg/errorx"
	"gitlab.com/souqly/auth-backend/pkg/logging"
	"gitlab.com/souqly/auth-backend/pkg/otelx"
	"gitlab.com/souqly/auth-backend/pkg/postgres"
	"gitlab.com/souqly/auth-backend/pkg/watermillx"
)

const accountColumns = `id, email, pass_hash, role, first_name, last_name, language, phone_number,
        seller_profile, buyer_profile, notification_token, password_changed_at, created_at, updated_at`

type AccountRepo struct {
	tracer  trace.Tracer
	logger  *slog.Logger
	pool    *pgxpool.Pool
	wlogger watermill.LoggerAdapter
}

// NewAccountRepo panics if pool is nil.
func NewAccountRepo(pool *pgxpool.Pool, t trace.Tracer, l *slog.Logger) *AccountRepo {
	if pool == nil {
		panic("pgxpool.Pool cannot be nil")
	}
	if t == nil {
		t = tracer
	}
	if l == nil {
		l = logger
	}

	return &AccountRepo{
		tracer:  t,
		logger:  l,
		pool:    pool,
		wlogger: watermill.NewSlogLogger(l),
	}
}

func scanAccount(row pgx.Row) (AccountDTO, error) {
	var dto AccountDTO
	err := row.Scan(
		&dto.ID, &dto.Email, &dto.PassHash, &dto.Role, &dto.FirstName, &dto.LastName,
		&dto.Language, &dto.PhoneNumber, &dto.SellerProfile, &dto.BuyerProfile,
		&dto.NotificationToken, &dto.PasswordChangedAt, &dto.CreatedAt, &dto.UpdatedAt,
	)
	return dto, err
}

func (r *AccountRepo) GetAccountByID(ctx context.Context, id account.ID) (*account.Account, error) {
	ctx, span := r.tracer.Start(ctx, "AccountRepo.GetAccountByID",
		trace.WithAttributes(attribute.String("account.id", id.String())))
	defer span.End()

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1;`

	return r.getAccount(ctx, span, query, uuid.UUID(id))
}

func (r *AccountRepo) GetAccountByEmail(ctx context.Context, email string) (*account.Account, error) {
	ctx, span := r.tracer.Start(ctx, "AccountRepo.GetAccountByEmail",
		trace.WithAttributes(attribute.String("account.email", logging.RedactEmail(email))))
	defer span.End()

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1;`

	return r.getAccount(ctx, span, query, email)
}

func (r *AccountRepo) getAccount(ctx context.Context, span trace.Span, query string, arg any) (*account.Account, error) {
	dto, err := scanAccount(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to get account")
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrAccountNotFound.WithCause(err)
		}
		return nil, err
	}

	a, err := AccountToDomain(dto)
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to map account")
		return nil, err
	}
	return a, nil
}

// SaveAccount inserts a new account and publishes its events in the same transaction.
// A duplicate email fails with account.ErrEmailTaken.
func (r *AccountRepo) SaveAccount(ctx context.Context, a *account.Account) error {
	ctx, span := r.tracer.Start(ctx, "AccountRepo.SaveAccount",
		trace.WithAttributes(
			attribute.String("account.id", a.ID().String()),
			attribute.String("account.role", a.Role().String()),
		))
	defer span.End()

	dto, err := DomainToAccountDTO(a)
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to map account")
		return err
	}

	query := `
        INSERT INTO accounts (` + accountColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
    `

	return postgres.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx, query,
			dto.ID, dto.Email, dto.PassHash, dto.Role, dto.FirstName, dto.LastName,
			dto.Language, dto.PhoneNumber, dto.SellerProfile, dto.BuyerProfile,
			dto.NotificationToken, dto.PasswordChangedAt, dto.CreatedAt, dto.UpdatedAt,
		)
		if err != nil {
			otelx.RecordSpanError(span, err, "failed to insert account")
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
				return account.ErrEmailTaken.WithCause(err)
			}
			return err
		}

		if err := r.publish(ctx, tx, a); err != nil {
			otelx.RecordSpanError(span, err, "failed to publish events")
			return err
		}
		return nil
	})
}

func (r *AccountRepo) UpdateAccount(
	ctx context.Context,
	id account.ID,
	fn func(context.Context, *account.Account) error,
) error {
	ctx, span := r.tracer.Start(ctx, "AccountRepo.UpdateAccount",
		trace.WithAttributes(attribute.String("account.id", id.String())))
	defer span.End()

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 FOR UPDATE;`

	return r.update(ctx, span, query, uuid.UUID(id), fn)
}

func (r *AccountRepo) UpdateAccountByEmail(
	ctx context.Context,
	email string,
	fn func(context.Context, *account.Account) error,
) error {
	ctx, span := r.tracer.Start(ctx, "AccountRepo.UpdateAccountByEmail",
		trace.WithAttributes(attribute.String("account.email", logging.RedactEmail(email))))
	defer span.End()

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1 FOR UPDATE;`

	return r.update(ctx, span, query, email, fn)
}

func (r *AccountRepo) update(
	ctx context.Context,
	span trace.Span,
	selectquery string,
	arg any,
	fn func(context.Context, *account.Account) error,
) error {
	if fn == nil {
		otelx.RecordSpanError(span, ErrNilFunc, "update function cannot be nil")
		return ErrNilFunc
	}

	updatequery := `
        UPDATE accounts
        SET pass_hash = $2, first_name = $3, last_name = $4, language = $5, phone_number = $6,
            seller_profile = $7, buyer_profile = $8, notification_token = $9,
            password_changed_at = $10, updated_at = $11
        WHERE id = $1;
    `

	return postgres.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		dto, err := scanAccount(tx.QueryRow(ctx, selectquery, arg))
		if err != nil {
			otelx.RecordSpanError(span, err, "failed to get account for update")
			if errors.Is(err, pgx.ErrNoRows) {
				return account.ErrAccountNotFound.WithCause(err)
			}
			return err
		}

		a, err := AccountToDomain(dto)
		if err != nil {
			otelx.RecordSpanError(span, err, "failed to map account")
			return err
		}

		fnerr := fn(ctx, a)
		if fnerr != nil && !errorx.IsPersistable(fnerr) {
			otelx.RecordSpanError(span, fnerr, "failed to apply update function")
			return fnerr
		}

		dto, err = DomainToAccountDTO(a)
		if err != nil {
			otelx.RecordSpanError(span, err, "failed to map account")
			return err
		}

		res, err := tx.Exec(ctx, updatequery,
			dto.ID, dto.PassHash, dto.FirstName, dto.LastName, dto.Language, dto.PhoneNumber,
			dto.SellerProfile, dto.BuyerProfile, dto.NotificationToken,
			dto.PasswordChangedAt, dto.UpdatedAt,
		)
		if err != nil {
			otelx.RecordSpanError(span, err, "failed to update account")
			return err
		}
		if res.RowsAffected() == 0 {
			otelx.RecordSpanError(span, ErrNoRowsAffected, "no rows affected when updating account")
			return fmt.Errorf("failed to update account: %w", ErrNoRowsAffected)
		}

		if err := r.publish(ctx, tx, a); err != nil {
			otelx.RecordSpanError(span, err, "failed to publish events")
			return err
		}

		if fnerr != nil {
			otelx.RecordSpanError(span, fnerr, "update function returned an error but is allowed to continue")
			return fnerr
		}
		return nil
	})
}

func (r *AccountRepo) publish(ctx context.Context, tx pgx.Tx, a *account.Account) error {
	events := a.GetUncommittedEvents()
	if len(events) == 0 {
		return nil
	}
	if err := watermillx.Publish(ctx, tx, r.wlogger, events...); err != nil {
		return err
	}
	a.MarkEventsAsCommitted()
	return nil
}

// CountAdmins lets the startup bootstrap skip seeding once any admin exists.
func (r *AccountRepo) CountAdmins(ctx context.Context) (int, error) {
	ctx, span := r.tracer.Start(ctx, "AccountRepo.CountAdmins")
	defer span.End()

	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM accounts WHERE role = 'admin';`).Scan(&n); err != nil {
		otelx.RecordSpanError(span, err, "failed to count admins")
		return 0, err
	}
	return n, nil
}
