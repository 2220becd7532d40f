package service

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/sha3"
)

const (
	// SaltSize is the length of a per-user salt in bytes.
	SaltSize = 32
	// DigestSize matches the SHA3-512 output width.
	DigestSize = 64
)

// PasswordHasher derives password digests with PBKDF2-HMAC-SHA3-512 over
// pepper1 || password || pepper2. The peppers never leave the process.
type PasswordHasher struct {
	pepper1    []byte
	pepper2    []byte
	iterations int
}

func NewPasswordHasher(pepper1, pepper2 []byte, iterations int) (*PasswordHasher, error) {
	if iterations < 1 {
		return nil, fmt.Errorf("pbkdf2 iterations must be positive, got %d", iterations)
	}
	if len(pepper1) == 0 || len(pepper2) == 0 {
		return nil, errors.New("both password peppers are required")
	}
	return &PasswordHasher{
		pepper1:    append([]byte(nil), pepper1...),
		pepper2:    append([]byte(nil), pepper2...),
		iterations: iterations,
	}, nil
}

// Hash returns the digest of password under salt.
func (h *PasswordHasher) Hash(password string, salt []byte) []byte {
	input := make([]byte, 0, len(h.pepper1)+len(password)+len(h.pepper2))
	input = append(input, h.pepper1...)
	input = append(input, password...)
	input = append(input, h.pepper2...)
	return pbkdf2.Key(input, salt, h.iterations, DigestSize, sha3.New512)
}

// Check recomputes the digest and compares it in constant time.
func (h *PasswordHasher) Check(candidate string, salt, hash []byte) bool {
	return subtle.ConstantTimeCompare(h.Hash(candidate, salt), hash) == 1
}

// NewSalt returns SaltSize random bytes.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}
