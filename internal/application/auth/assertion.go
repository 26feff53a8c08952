package authapp

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type JWTTokenAssertion struct {
	token    string
	jwttoken *jwt.Token
	claims   jwt.MapClaims
	t        *testing.T
}

func NewJWTTokenAssertion(t *testing.T, token string, secretkey []byte) *JWTTokenAssertion {
	t.Helper()

	jwttoken, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		return secretkey, nil
	})
	require.NoError(t, err)

	claims, ok := jwttoken.Claims.(jwt.MapClaims)
	require.True(t, ok, "jwt token claims must be type jwt.MapClaims")

	return &JWTTokenAssertion{
		t:        t,
		token:    token,
		jwttoken: jwttoken,
		claims:   claims,
	}
}

func (a *JWTTokenAssertion) AssertValid() *JWTTokenAssertion {
	a.t.Helper()
	assert.NotNil(a.t, a.jwttoken, "jwt token should not be nil")
	assert.True(a.t, a.jwttoken.Valid, "jwt token should be valid")
	return a
}

func (a *JWTTokenAssertion) AssertISS(expected string) *JWTTokenAssertion {
	a.t.Helper()
	assert.Equal(a.t, expected, a.claims["iss"])
	return a
}

func (a *JWTTokenAssertion) AssertSub(expected string) *JWTTokenAssertion {
	a.t.Helper()
	assert.Equal(a.t, expected, a.claims["sub"])
	return a
}

func (a *JWTTokenAssertion) AssertExp(expected time.Time) *JWTTokenAssertion {
	a.t.Helper()
	exp, ok := a.claims["exp"].(float64)
	require.True(a.t, ok, "exp claim must be of type float64, got %T", a.claims["exp"])
	assert.WithinDuration(a.t, expected, time.Unix(int64(exp), 0), time.Second, "exp claim")
	return a
}

func (a *JWTTokenAssertion) AssertIAT(expected time.Time) *JWTTokenAssertion {
	a.t.Helper()
	iat, ok := a.claims["iat"].(float64)
	require.True(a.t, ok, "iat claim must be of type float64, got %T", a.claims["iat"])
	assert.WithinDuration(a.t, expected, time.Unix(int64(iat), 0), time.Second, "iat claim")
	return a
}

func (a *JWTTokenAssertion) AssertUID(expected string) *JWTTokenAssertion {
	a.t.Helper()
	assert.Equal(a.t, expected, a.claims["uid"])
	return a
}

func (a *JWTTokenAssertion) AssertRole(expected string) *JWTTokenAssertion {
	a.t.Helper()
	assert.Equal(a.t, expected, a.claims["role"])
	return a
}
