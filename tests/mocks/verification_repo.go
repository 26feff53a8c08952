package mocks

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"

	"gitlab.com/souqly/auth-backend/internal/domain/verification"
	"gitlab.com/souqly/auth-backend/pkg/errorx"
)

type verificationKey struct {
	email   string
	purpose verification.Purpose
}

// VerificationRepo keeps copies of the records, so a failed update leaves the stored state untouched
// the same way a rolled back transaction would.
type VerificationRepo struct {
	db        map[verificationKey]*verification.PendingVerification
	mu        sync.Mutex
	saveErr   error
	deleteErr error
}

func NewVerificationRepo() *VerificationRepo {
	return &VerificationRepo{
		db: make(map[verificationKey]*verification.PendingVerification),
	}
}

func (r *VerificationRepo) SaveVerification(ctx context.Context, v *verification.PendingVerification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v == nil {
		return errors.New("verification cannot be nil")
	}
	if r.saveErr != nil {
		return r.saveErr
	}

	r.db[verificationKey{email: v.Email(), purpose: v.Purpose()}] = cloneVerification(v)
	return nil
}

func (r *VerificationRepo) DeleteVerification(ctx context.Context, id verification.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.deleteErr != nil {
		return r.deleteErr
	}

	for k, v := range r.db {
		if v.ID() == id {
			delete(r.db, k)
		}
	}
	return nil
}

func (r *VerificationRepo) UpdateVerification(
	ctx context.Context,
	email string,
	purpose verification.Purpose,
	fn func(context.Context, *verification.PendingVerification) error,
) error {
	if fn == nil {
		return errors.New("update function cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := verificationKey{email: email, purpose: purpose}
	stored, exists := r.db[key]
	if !exists {
		return verification.NotFoundFor(purpose)
	}

	v := cloneVerification(stored)
	fnerr := fn(ctx, v)
	if fnerr != nil && !errorx.IsPersistable(fnerr) {
		return fmt.Errorf("failed to apply update function: %w", fnerr)
	}

	if v.IsDiscarded() {
		delete(r.db, key)
	} else {
		r.db[key] = cloneVerification(v)
	}

	if fnerr != nil {
		return fmt.Errorf("failed to apply update function: %w", fnerr)
	}
	return nil
}

// FailSaveWith makes every following SaveVerification call fail with err.
func (r *VerificationRepo) FailSaveWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saveErr = err
}

func (r *VerificationRepo) FailDeleteWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleteErr = err
}

func (r *VerificationRepo) SeedVerification(t *testing.T, v *verification.PendingVerification) {
	t.Helper()

	r.mu.Lock()
	defer r.mu.Unlock()

	key := verificationKey{email: v.Email(), purpose: v.Purpose()}
	if _, exists := r.db[key]; exists {
		t.Fatalf("verification for %s/%s already exists", v.Email(), v.Purpose())
	}
	r.db[key] = cloneVerification(v)
}

func (r *VerificationRepo) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.db)
}

func (r *VerificationRepo) AssertVerificationExists(
	t *testing.T,
	email string,
	purpose verification.Purpose,
) *verification.Assertion {
	t.Helper()

	r.mu.Lock()
	defer r.mu.Unlock()

	v, exists := r.db[verificationKey{email: email, purpose: purpose}]
	if !exists {
		t.Fatalf("expected verification for %s/%s to exist, but it does not", email, purpose)
		return nil
	}
	return verification.NewAssertion(cloneVerification(v))
}

func (r *VerificationRepo) AssertVerificationNotExists(t *testing.T, email string, purpose verification.Purpose) *VerificationRepo {
	t.Helper()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.db[verificationKey{email: email, purpose: purpose}]; exists {
		t.Errorf("expected verification for %s/%s to not exist, but it does", email, purpose)
	}
	return r
}

func cloneVerification(v *verification.PendingVerification) *verification.PendingVerification {
	return verification.Rehydrate(verification.RehydrateArgs{
		ID:        v.ID(),
		Email:     v.Email(),
		Purpose:   v.Purpose(),
		CodeHash:  slices.Clone(v.CodeHash()),
		ExpiresAt: v.ExpiresAt(),
		Verified:  v.IsVerified(),
		Draft:     v.Draft(),
		CreatedAt: v.CreatedAt(),
		UpdatedAt: v.UpdatedAt(),
	})
}
