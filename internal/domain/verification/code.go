package verification

import (
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"gitlab.com/souqly/auth-backend/pkg/randcode"
)

const (
	CodeLength     = 6
	CodeTTL        = 10 * time.Minute
	CodeCostFactor = 12
)

// IssuedCode is a freshly generated code. Plaintext is only ever mailed; the aggregate keeps Hash.
type IssuedCode struct {
	Plaintext string
	Hash      []byte
	ExpiresAt time.Time
}

// CodeIssuer generates codes. Tests swap in a cheaper cost.
type CodeIssuer struct {
	Cost int
	TTL  time.Duration
}

var DefaultCodeIssuer = CodeIssuer{Cost: CodeCostFactor, TTL: CodeTTL}

// IssueCode returns a uniformly random 6 digit code, its bcrypt hash and an expiry of now+10m.
func IssueCode(now time.Time) (IssuedCode, error) {
	return DefaultCodeIssuer.Issue(now)
}

func (ci CodeIssuer) Issue(now time.Time) (IssuedCode, error) {
	plain, err := randcode.GenerateNumericCode(CodeLength)
	if err != nil {
		return IssuedCode{}, fmt.Errorf("failed to generate code: %w", err)
	}

	cost := ci.Cost
	if cost == 0 {
		cost = CodeCostFactor
	}
	ttl := ci.TTL
	if ttl == 0 {
		ttl = CodeTTL
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return IssuedCode{}, fmt.Errorf("failed to hash code: %w", err)
	}

	return IssuedCode{
		Plaintext: plain,
		Hash:      hash,
		ExpiresAt: now.UTC().Add(ttl),
	}, nil
}
