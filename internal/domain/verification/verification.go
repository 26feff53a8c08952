package verification

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"gitlab.com/souqly/auth-backend/internal/domain/account"
	"gitlab.com/souqly/auth-backend/pkg/errorx"
)

type Purpose string

const (
	PurposeEmailVerification Purpose = "email_verification"
	PurposePasswordReset     Purpose = "password_reset"
)

func (p Purpose) String() string {
	return string(p)
}

func (p Purpose) IsValid() bool {
	return p == PurposeEmailVerification || p == PurposePasswordReset
}

type ID uuid.UUID

func NewID() ID {
	return ID(uuid.New())
}

func (id ID) String() string {
	return uuid.UUID(id).String()
}

func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(uuid.UUID(id).String())
}

// PendingVerification is a code gated intent for one (email, purpose) pair.
// Storage keeps at most one per pair; a new request replaces the old one.
//
// Lifecycle: created on request, mutated only to mark a reset code verified,
// discarded on success, expiry or supersede.
type PendingVerification struct {
	id        ID
	email     string
	purpose   Purpose
	codeHash  []byte
	expiresAt time.Time
	verified  bool
	draft     *account.Draft
	discarded bool
	createdAt time.Time
	updatedAt time.Time
}

// NewEmailVerification holds a signup draft until the emailed code is confirmed.
func NewEmailVerification(draft *account.Draft, code IssuedCode, now time.Time) (*PendingVerification, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	return newPending(draft.Email, PurposeEmailVerification, draft, code, now)
}

func NewPasswordReset(email string, code IssuedCode, now time.Time) (*PendingVerification, error) {
	return newPending(email, PurposePasswordReset, nil, code, now)
}

func newPending(email string, purpose Purpose, draft *account.Draft, code IssuedCode, now time.Time) (*PendingVerification, error) {
	if email == "" {
		return nil, errors.New("email is required")
	}
	if len(code.Hash) == 0 || code.ExpiresAt.IsZero() {
		return nil, errors.New("issued code is incomplete")
	}
	now = now.UTC()
	return &PendingVerification{
		id:        NewID(),
		email:     email,
		purpose:   purpose,
		codeHash:  code.Hash,
		expiresAt: code.ExpiresAt.UTC(),
		draft:     draft,
		createdAt: now,
		updatedAt: now,
	}, nil
}

type RehydrateArgs struct {
	ID        ID
	Email     string
	Purpose   Purpose
	CodeHash  []byte
	ExpiresAt time.Time
	Verified  bool
	Draft     *account.Draft
	CreatedAt time.Time
	UpdatedAt time.Time
}

func Rehydrate(args RehydrateArgs) *PendingVerification {
	return &PendingVerification{
		id:        args.ID,
		email:     args.Email,
		purpose:   args.Purpose,
		codeHash:  args.CodeHash,
		expiresAt: args.ExpiresAt,
		verified:  args.Verified,
		draft:     args.Draft,
		createdAt: args.CreatedAt,
		updatedAt: args.UpdatedAt,
	}
}

// ConfirmEmail checks the signup code. On success the record is discarded and the draft returned.
// An expired record is discarded too; the error is persistable so the deletion commits.
func (v *PendingVerification) ConfirmEmail(code string, now time.Time) (*account.Draft, error) {
	if err := v.requirePurpose(PurposeEmailVerification); err != nil {
		return nil, err
	}
	if v.isExpired(now) {
		v.discard(now)
		return nil, errorx.NewPersistable(ErrCodeExpired)
	}
	if !v.matches(code) {
		return nil, ErrInvalidCode
	}
	v.discard(now)
	return v.draft, nil
}

// ConfirmResetCode checks a reset code and marks the record verified. The record stays for CompleteReset.
func (v *PendingVerification) ConfirmResetCode(code string, now time.Time) error {
	if err := v.requirePurpose(PurposePasswordReset); err != nil {
		return err
	}
	if v.isExpired(now) {
		v.discard(now)
		return errorx.NewPersistable(ErrCodeExpired)
	}
	if !v.matches(code) {
		return ErrInvalidResetCode
	}
	v.verified = true
	v.updatedAt = now.UTC()
	return nil
}

// CompleteReset consumes a verified reset record.
func (v *PendingVerification) CompleteReset(now time.Time) error {
	if err := v.requirePurpose(PurposePasswordReset); err != nil {
		return err
	}
	if !v.verified {
		return ErrResetNotVerified
	}
	if v.isExpired(now) {
		v.discard(now)
		return errorx.NewPersistable(ErrResetExpired)
	}
	v.discard(now)
	return nil
}

func (v *PendingVerification) requirePurpose(p Purpose) error {
	if v == nil {
		return NotFoundFor(p)
	}
	if v.discarded {
		return NotFoundFor(p)
	}
	if v.purpose != p {
		return ErrWrongPurpose.WithCause(fmt.Errorf("record purpose is %s, want %s", v.purpose, p))
	}
	return nil
}

func (v *PendingVerification) isExpired(now time.Time) bool {
	return now.After(v.expiresAt)
}

func (v *PendingVerification) matches(code string) bool {
	return bcrypt.CompareHashAndPassword(v.codeHash, []byte(code)) == nil
}

func (v *PendingVerification) discard(now time.Time) {
	v.discarded = true
	v.updatedAt = now.UTC()
}

func (v *PendingVerification) ID() ID {
	if v == nil {
		return ID{}
	}
	return v.id
}

func (v *PendingVerification) Email() string {
	if v == nil {
		return ""
	}
	return v.email
}

func (v *PendingVerification) Purpose() Purpose {
	if v == nil {
		return ""
	}
	return v.purpose
}

func (v *PendingVerification) CodeHash() []byte {
	if v == nil {
		return nil
	}
	return v.codeHash
}

func (v *PendingVerification) ExpiresAt() time.Time {
	if v == nil {
		return time.Time{}
	}
	return v.expiresAt
}

func (v *PendingVerification) IsVerified() bool {
	if v == nil {
		return false
	}
	return v.verified
}

func (v *PendingVerification) Draft() *account.Draft {
	if v == nil {
		return nil
	}
	return v.draft
}

// IsDiscarded tells the repository to delete the record instead of updating it.
func (v *PendingVerification) IsDiscarded() bool {
	if v == nil {
		return false
	}
	return v.discarded
}

func (v *PendingVerification) CreatedAt() time.Time {
	if v == nil {
		return time.Time{}
	}
	return v.createdAt
}

func (v *PendingVerification) UpdatedAt() time.Time {
	if v == nil {
		return time.Time{}
	}
	return v.updatedAt
}
