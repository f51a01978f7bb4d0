package auth

import "golang.org/x/crypto/bcrypt"

// PasswordHasher defines the interface for one-way password hashing.
type PasswordHasher interface {
	// Hash derives an irreversible hash from the plaintext password.
	// bcrypt embeds a per-password random salt, so identical passwords
	// produce different hashes.
	Hash(password string) (string, error)
}

// PasswordVerifier defines the interface for comparing passwords.
type PasswordVerifier interface {
	// Compare compares a hashed password with its possible plaintext
	// equivalent. Returns nil on match, an error otherwise.
	Compare(hashedPassword, password string) error
}

// BcryptHasher implements PasswordHasher and PasswordVerifier using bcrypt,
// the deliberately expensive adaptive hash. This is the only operation in
// the auth subsystem with a meaningful latency cost.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a BcryptHasher with the given cost. Costs below
// bcrypt.MinCost fall back to bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash implements PasswordHasher.
func (h *BcryptHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Compare implements PasswordVerifier. bcrypt's comparison is
// constant-time with respect to the hash contents.
func (h *BcryptHasher) Compare(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
