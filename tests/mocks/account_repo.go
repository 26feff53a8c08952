package mocks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"gitlab.com/souqly/auth-backend/internal/domain/account"
	"gitlab.com/souqly/auth-backend/pkg/errorx"
)

type AccountRepo struct {
	*EventRepo
	dbbyID    map[account.ID]*account.Account
	dbbyEmail map[string]account.ID
	mu        sync.Mutex
}

func NewAccountRepo() *AccountRepo {
	return &AccountRepo{
		EventRepo: NewEventRepo(),
		dbbyID:    make(map[account.ID]*account.Account),
		dbbyEmail: make(map[string]account.ID),
	}
}

func (r *AccountRepo) GetAccountByID(ctx context.Context, id account.ID) (*account.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a, ok := r.dbbyID[id]; ok {
		return cloneAccount(a), nil
	}
	return nil, account.ErrAccountNotFound
}

func (r *AccountRepo) GetAccountByEmail(ctx context.Context, email string) (*account.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.dbbyEmail[email]; ok {
		return cloneAccount(r.dbbyID[id]), nil
	}
	return nil, account.ErrAccountNotFound
}

func (r *AccountRepo) SaveAccount(ctx context.Context, a *account.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a == nil {
		return errors.New("account cannot be nil")
	}
	if _, exists := r.dbbyEmail[a.Email()]; exists {
		return account.ErrEmailTaken
	}
	if _, exists := r.dbbyID[a.ID()]; exists {
		return errorx.NewConflict()
	}

	r.dbbyID[a.ID()] = cloneAccount(a)
	r.dbbyEmail[a.Email()] = a.ID()

	r.appendEvents(a.GetUncommittedEvents()...)
	a.MarkEventsAsCommitted()
	return nil
}

func (r *AccountRepo) UpdateAccount(ctx context.Context, id account.ID, fn func(context.Context, *account.Account) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.dbbyID[id]
	if !ok {
		return account.ErrAccountNotFound
	}
	return r.update(ctx, stored, fn)
}

func (r *AccountRepo) UpdateAccountByEmail(ctx context.Context, email string, fn func(context.Context, *account.Account) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.dbbyEmail[email]
	if !ok {
		return account.ErrAccountNotFound
	}
	return r.update(ctx, r.dbbyID[id], fn)
}

func (r *AccountRepo) update(ctx context.Context, stored *account.Account, fn func(context.Context, *account.Account) error) error {
	if fn == nil {
		return errors.New("update function cannot be nil")
	}

	a := cloneAccount(stored)
	fnerr := fn(ctx, a)
	if fnerr != nil && !errorx.IsPersistable(fnerr) {
		return fmt.Errorf("failed to apply update function: %w", fnerr)
	}

	r.dbbyID[a.ID()] = cloneAccount(a)
	r.appendEvents(a.GetUncommittedEvents()...)
	a.MarkEventsAsCommitted()

	if fnerr != nil {
		return fmt.Errorf("failed to apply update function: %w", fnerr)
	}
	return nil
}

func (r *AccountRepo) SeedAccount(t *testing.T, a *account.Account) {
	t.Helper()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.dbbyID[a.ID()]; exists {
		t.Fatalf("account with ID %s already exists", a.ID())
	}
	if _, exists := r.dbbyEmail[a.Email()]; exists {
		t.Fatalf("account with email %s already exists", a.Email())
	}

	r.dbbyID[a.ID()] = cloneAccount(a)
	r.dbbyEmail[a.Email()] = a.ID()
}

func (r *AccountRepo) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.dbbyID)
}

func (r *AccountRepo) AssertAccountExistsByEmail(t *testing.T, email string) *account.Assertion {
	t.Helper()

	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.dbbyEmail[email]
	if !ok {
		t.Fatalf("expected account with email %s to exist, but it does not", email)
		return nil
	}
	return account.NewAssertion(cloneAccount(r.dbbyID[id]))
}

func (r *AccountRepo) AssertAccountNotExistsByEmail(t *testing.T, email string) *AccountRepo {
	t.Helper()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.dbbyEmail[email]; ok {
		t.Errorf("expected account with email %s to not exist, but it does", email)
	}
	return r
}

func cloneAccount(a *account.Account) *account.Account {
	return account.Rehydrate(account.RehydrateArgs{
		ID:                a.ID(),
		Email:             a.Email(),
		PassHash:          a.PassHash(),
		Role:              a.Role(),
		FirstName:         a.FirstName(),
		LastName:          a.LastName(),
		Language:          a.Language(),
		PhoneNumber:       a.PhoneNumber(),
		Profile:           a.Profile(),
		NotificationToken: a.NotificationToken(),
		PasswordChangedAt: a.PasswordChangedAt(),
		CreatedAt:         a.CreatedAt(),
		UpdatedAt:         a.UpdatedAt(),
	})
}
