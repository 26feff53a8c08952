package errorx

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errSentinelA = NewInvalidCode()
	errSentinelB = NewCodeExpired()
)

func TestI18nError_WithIsImmutable(t *testing.T) {
	t.Parallel()

	derived := errSentinelA.WithArgs(map[string]any{"a": 1}).WithHTTPCode(http.StatusTeapot)

	assert.Empty(t, errSentinelA.MessageArgs)
	assert.Equal(t, http.StatusBadRequest, errSentinelA.HTTPCode)
	assert.Equal(t, http.StatusTeapot, derived.HTTPCode)
	assert.Equal(t, 1, derived.MessageArgs["a"])
}

func TestI18nError_Is(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")

	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{name: "same sentinel", err: errSentinelA, target: errSentinelA, want: true},
		{name: "with cause", err: errSentinelA.WithCause(cause), target: errSentinelA, want: true},
		{name: "wrapped", err: Wrap(errSentinelA.WithCause(cause), "op"), target: errSentinelA, want: true},
		{name: "persistable", err: NewPersistable(errSentinelB), target: errSentinelB, want: true},
		{name: "different code", err: errSentinelA, target: errSentinelB, want: false},
		{name: "different key", err: errSentinelA.WithKey("other"), target: errSentinelA, want: false},
		{name: "cause reachable", err: errSentinelA.WithCause(cause), target: cause, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, errors.Is(tt.err, tt.target))
		})
	}
}

func TestIsCode(t *testing.T) {
	t.Parallel()

	assert.True(t, IsNotFound(Wrap(NewNotFound(), "op")))
	assert.False(t, IsNotFound(NewConflict()))
	assert.False(t, IsNotFound(nil))
	assert.False(t, IsCode(errors.New("plain"), CodeInternal))
}

func TestHTTPStatusCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, http.StatusForbidden, NewNotApproved().HTTPStatusCode())
	assert.Equal(t, http.StatusUnauthorized, NewInvalidCredentials().HTTPStatusCode())
	assert.Equal(t, http.StatusBadRequest, (&I18nError{Code: CodeEmailTaken}).HTTPStatusCode())
	assert.Equal(t, http.StatusInternalServerError, (&I18nError{Code: CodeDependencyFailure}).HTTPStatusCode())
}

func TestWrapAndPersistable(t *testing.T) {
	t.Parallel()

	require.NoError(t, Wrap(nil, "op"))
	require.NoError(t, NewPersistable(nil))

	err := Wrap(NewPersistable(NewCodeExpired()), "verification.confirm")
	assert.True(t, IsPersistable(err))
	assert.Contains(t, err.Error(), "verification.confirm")
	assert.False(t, IsPersistable(NewCodeExpired()))
}
