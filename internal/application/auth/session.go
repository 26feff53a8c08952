package authapp

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"gitlab.com/souqly/auth-backend/internal/domain/account"
	"gitlab.com/souqly/auth-backend/internal/domain/valueobject/role"
	"gitlab.com/souqly/auth-backend/pkg/ctxs"
	"gitlab.com/souqly/auth-backend/pkg/errorx"
)

const (
	ISS                    = "souqly_auth"
	AccessSubject          = "access"
	AccessTokenExpDuration = 90 * 24 * time.Hour
)

// SessionIssuer signs and verifies HS256 access tokens bound to an account id.
type SessionIssuer struct {
	secret        []byte
	ttl           time.Duration
	signingMethod *jwt.SigningMethodHMAC
	now           func() time.Time
}

type SessionIssuerArgs struct {
	SecretKey string
	TTL       time.Duration
	Now       func() time.Time
}

func NewSessionIssuer(args SessionIssuerArgs) (*SessionIssuer, error) {
	if args.SecretKey == "" {
		return nil, errors.New("session secret key is empty")
	}
	if args.TTL == 0 {
		args.TTL = AccessTokenExpDuration
	}
	if args.Now == nil {
		args.Now = time.Now
	}
	return &SessionIssuer{
		secret:        []byte(args.SecretKey),
		ttl:           args.TTL,
		signingMethod: jwt.SigningMethodHS256,
		now:           args.Now,
	}, nil
}

func (s *SessionIssuer) TTL() time.Duration {
	return s.ttl
}

func (s *SessionIssuer) Issue(a *account.Account) (string, error) {
	if a == nil || a.ID().IsZero() {
		return "", errors.New("cannot issue session for empty account")
	}
	now := s.now()
	token := jwt.NewWithClaims(s.signingMethod, jwt.MapClaims{
		"iss":  ISS,
		"sub":  AccessSubject,
		"exp":  now.Add(s.ttl).Unix(),
		"iat":  now.Unix(),
		"uid":  a.ID().String(),
		"role": a.Role().String(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// ParseAccessToken verifies signature, issuer, subject and expiry and returns the caller.
func (s *SessionIssuer) ParseAccessToken(token string) (*ctxs.Principal, error) {
	parsed, err := jwt.Parse(token, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{s.signingMethod.Alg()}),
		jwt.WithIssuer(ISS),
		jwt.WithSubject(AccessSubject),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errorx.NewTokenExpired().WithCause(err)
		}
		return nil, errorx.NewUnauthorized().WithCause(err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errorx.NewUnauthorized().WithCause(errors.New("unexpected claims type"))
	}
	uid, _ := claims["uid"].(string)
	id, err := account.ParseID(uid)
	if err != nil {
		return nil, errorx.NewUnauthorized().WithCause(fmt.Errorf("invalid uid claim: %w", err))
	}
	r, _ := claims["role"].(string)
	if !role.IsValid(r) {
		return nil, errorx.NewUnauthorized().WithCause(fmt.Errorf("invalid role claim %q", r))
	}

	return &ctxs.Principal{ID: id, Role: role.Role(r)}, nil
}
