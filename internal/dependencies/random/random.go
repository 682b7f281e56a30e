package random

import (
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"
)

// Random provides id and random value generation that can be mocked for testing
type Random interface {
	// ID returns a fresh opaque unique identifier
	ID() string

	// String generates a random string of the given length from the given alphabet
	String(length int, alphabet string) string
}

// CryptoRandom implements Random using crypto/rand and UUIDs
type CryptoRandom struct{}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// ID returns a new UUID string
func (r *CryptoRandom) ID() string {
	return uuid.New().String()
}

// intn returns a cryptographically random int in [0, n)
func (r *CryptoRandom) intn(n int) int {
	if n <= 0 {
		return 0
	}
	max := big.NewInt(int64(n))
	result, err := rand.Int(rand.Reader, max)
	if err != nil {
		// Fall back to 0 on error (should never happen with crypto/rand)
		return 0
	}
	return int(result.Int64())
}

// String generates a random string of the given length from the given alphabet
func (r *CryptoRandom) String(length int, alphabet string) string {
	if length <= 0 || len(alphabet) == 0 {
		return ""
	}
	result := make([]byte, length)
	for i := 0; i < length; i++ {
		result[i] = alphabet[r.intn(len(alphabet))]
	}
	return string(result)
}

var _ Random = (*CryptoRandom)(nil)
