package randcode

import (
	"crypto/rand"
	"errors"
	"math/big"
)

const digits = "0123456789"

// GenerateNumericCode returns length uniformly random decimal digits, leading zeros included.
func GenerateNumericCode(length int) (string, error) {
	if length <= 0 {
		return "", errors.New("randcode: length must be positive")
	}

	b := make([]byte, length)
	upper := big.NewInt(int64(len(digits)))
	for i := range b {
		n, err := rand.Int(rand.Reader, upper)
		if err != nil {
			return "", err
		}
		b[i] = digits[n.Int64()]
	}

	return string(b), nil
}
