// Package hasher provides one-way password hashing and verification
// built on bcrypt.
package hasher

import "golang.org/x/crypto/bcrypt"

// Hasher hashes and verifies passwords with a fixed bcrypt cost factor.
type Hasher struct {
	cost int
}

// New returns a Hasher with the given bcrypt cost factor.
// Costs outside the range supported by bcrypt fall back to the library default.
func New(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	return &Hasher{cost: cost}
}

// Hash returns the salted bcrypt hash of the plaintext password.
func (h *Hasher) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// Verify reports whether the plaintext password matches the stored hash.
// A mismatch is not an error: the method simply returns false.
func (h *Hasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
