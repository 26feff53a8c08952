package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"gitlab.com/souqly/auth-backend/internal/domain/verification"
	"gitlab.com/souqly/auth-backend/pkg/errorx"
	"gitlab.com/souqly/auth-backend/pkg/logging"
	"gitlab.com/souqly/auth-backend/pkg/otelx"
	"gitlab.com/souqly/auth-backend/pkg/postgres"
)

type VerificationRepo struct {
	tracer trace.Tracer
	logger *slog.Logger
	pool   *pgxpool.Pool
}

// NewVerificationRepo panics if pool is nil.
func NewVerificationRepo(pool *pgxpool.Pool, t trace.Tracer, l *slog.Logger) *VerificationRepo {
	if pool == nil {
		panic("pgxpool.Pool cannot be nil")
	}
	if t == nil {
		t = tracer
	}
	if l == nil {
		l = logger
	}

	return &VerificationRepo{
		tracer: t,
		logger: l,
		pool:   pool,
	}
}

// SaveVerification upserts on (email, purpose). A row for the same pair is replaced, id included,
// so any earlier code stops working.
func (r *VerificationRepo) SaveVerification(ctx context.Context, v *verification.PendingVerification) error {
	ctx, span := r.tracer.Start(ctx, "VerificationRepo.SaveVerification",
		trace.WithAttributes(
			attribute.String("verification.email", logging.RedactEmail(v.Email())),
			attribute.String("verification.purpose", v.Purpose().String()),
		))
	defer span.End()

	dto, err := DomainToVerificationDTO(v)
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to map verification")
		return err
	}

	query := `
        INSERT INTO verifications (id, email, purpose, code_hash, expires_at, verified, draft, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        ON CONFLICT (email, purpose) DO UPDATE
        SET id = EXCLUDED.id, code_hash = EXCLUDED.code_hash, expires_at = EXCLUDED.expires_at,
            verified = EXCLUDED.verified, draft = EXCLUDED.draft,
            created_at = EXCLUDED.created_at, updated_at = EXCLUDED.updated_at;
    `

	return postgres.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		res, err := tx.Exec(ctx, query,
			dto.ID, dto.Email, dto.Purpose, dto.CodeHash, dto.ExpiresAt,
			dto.Verified, dto.Draft, dto.CreatedAt, dto.UpdatedAt,
		)
		if err != nil {
			otelx.RecordSpanError(span, err, "failed to upsert verification")
			return err
		}
		if res.RowsAffected() == 0 {
			otelx.RecordSpanError(span, ErrNoRowsAffected, "no rows affected when upserting verification")
			return fmt.Errorf("failed to upsert verification: %w", ErrNoRowsAffected)
		}
		return nil
	})
}

// DeleteVerification is a no-op for an id that no longer exists, e.g. after a supersede.
func (r *VerificationRepo) DeleteVerification(ctx context.Context, id verification.ID) error {
	ctx, span := r.tracer.Start(ctx, "VerificationRepo.DeleteVerification",
		trace.WithAttributes(attribute.String("verification.id", id.String())))
	defer span.End()

	return postgres.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM verifications WHERE id = $1;`, uuid.UUID(id)); err != nil {
			otelx.RecordSpanError(span, err, "failed to delete verification")
			return err
		}
		return nil
	})
}

// UpdateVerification locks the (email, purpose) row and runs fn in the same transaction.
// Repository calls fn makes with the passed ctx join that transaction. A record fn discards is deleted.
func (r *VerificationRepo) UpdateVerification(
	ctx context.Context,
	email string,
	purpose verification.Purpose,
	fn func(context.Context, *verification.PendingVerification) error,
) error {
	ctx, span := r.tracer.Start(ctx, "VerificationRepo.UpdateVerification",
		trace.WithAttributes(
			attribute.String("verification.email", logging.RedactEmail(email)),
			attribute.String("verification.purpose", purpose.String()),
		))
	defer span.End()
	if fn == nil {
		otelx.RecordSpanError(span, ErrNilFunc, "update function cannot be nil")
		return ErrNilFunc
	}

	selectquery := `
        SELECT id, email, purpose, code_hash, expires_at, verified, draft, created_at, updated_at
        FROM verifications
        WHERE email = $1 AND purpose = $2
        FOR UPDATE;
    `
	updatequery := `
        UPDATE verifications
        SET code_hash = $2, expires_at = $3, verified = $4, draft = $5, updated_at = $6
        WHERE id = $1;
    `
	deletequery := `DELETE FROM verifications WHERE id = $1;`

	return postgres.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		var dto VerificationDTO
		err := tx.QueryRow(ctx, selectquery, email, purpose.String()).Scan(
			&dto.ID, &dto.Email, &dto.Purpose, &dto.CodeHash, &dto.ExpiresAt,
			&dto.Verified, &dto.Draft, &dto.CreatedAt, &dto.UpdatedAt,
		)
		if err != nil {
			otelx.RecordSpanError(span, err, "failed to get verification for update")
			if errors.Is(err, pgx.ErrNoRows) {
				return verification.NotFoundFor(purpose).WithCause(err)
			}
			return err
		}

		v, err := VerificationToDomain(dto)
		if err != nil {
			otelx.RecordSpanError(span, err, "failed to map verification")
			return err
		}

		fnerr := fn(ctx, v)
		if fnerr != nil && !errorx.IsPersistable(fnerr) {
			otelx.RecordSpanError(span, fnerr, "failed to apply update function")
			return fnerr
		}

		if v.IsDiscarded() {
			if _, err := tx.Exec(ctx, deletequery, dto.ID); err != nil {
				otelx.RecordSpanError(span, err, "failed to delete discarded verification")
				return err
			}
		} else {
			dto, err = DomainToVerificationDTO(v)
			if err != nil {
				otelx.RecordSpanError(span, err, "failed to map verification")
				return err
			}
			res, err := tx.Exec(ctx, updatequery, dto.ID, dto.CodeHash, dto.ExpiresAt, dto.Verified, dto.Draft, dto.UpdatedAt)
			if err != nil {
				otelx.RecordSpanError(span, err, "failed to update verification")
				return err
			}
			if res.RowsAffected() == 0 {
				otelx.RecordSpanError(span, ErrNoRowsAffected, "no rows affected when updating verification")
				return fmt.Errorf("failed to update verification: %w", ErrNoRowsAffected)
			}
		}

		if fnerr != nil {
			otelx.RecordSpanError(span, fnerr, "update function returned an error but is allowed to continue")
			return fnerr
		}
		return nil
	})
}
