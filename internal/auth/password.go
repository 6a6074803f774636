package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/scrypt"
)

// PasswordHasher hashes and verifies passwords with scrypt. The salt is
// stored concatenated with the derived key, base64-encoded.
type PasswordHasher struct {
	saltLength int
	n          int
	r          int
	p          int
	keyLen     int
}

// NewPasswordHasher returns a hasher with interactive-login parameters.
func NewPasswordHasher() *PasswordHasher {
	return &PasswordHasher{
		saltLength: 16,
		n:          32768, // 2^15
		r:          8,
		p:          1,
		keyLen:     32,
	}
}

// Hash derives a storable credential from a password.
func (h *PasswordHasher) Hash(password string) (string, error) {
	salt := make([]byte, h.saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key, err := scrypt.Key([]byte(password), salt, h.n, h.r, h.p, h.keyLen)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	return base64.StdEncoding.EncodeToString(append(salt, key...)), nil
}

// Verify reports whether password matches the stored credential.
func (h *PasswordHasher) Verify(password, stored string) (bool, error) {
	combined, err := base64.StdEncoding.DecodeString(stored)
	if err != nil {
		return false, fmt.Errorf("decode credential: %w", err)
	}
	if len(combined) != h.saltLength+h.keyLen {
		return false, fmt.Errorf("malformed credential")
	}

	salt := combined[:h.saltLength]
	want := combined[h.saltLength:]

	key, err := scrypt.Key([]byte(password), salt, h.n, h.r, h.p, h.keyLen)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	return subtle.ConstantTimeCompare(key, want) == 1, nil
}
