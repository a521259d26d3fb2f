package crypto

import (
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

const (
	// KeySize is the size of derived keys, suitable for AES-256.
	KeySize  = 32
	SaltSize = 16

	// Argon2id parameters, as recommended by RFC 9106 for memory-constrained
	// environments.
	argonTime    = 3
	argonMemory  = 64 * 1024 // KiB
	argonThreads = 4
)

// NewSalt returns a random salt for DeriveKey.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed generating salt: %w", err)
	}
	return salt, nil
}

// DeriveKey derives an encryption key of KeySize bytes from the passphrase
// using Argon2id.
func DeriveKey(passphrase string, salt []byte) ([]byte, error) {
	if passphrase == "" {
		return nil, errors.New("empty passphrase")
	}
	if len(salt) != SaltSize {
		return nil, fmt.Errorf("invalid salt size %d, expected %d", len(salt), SaltSize)
	}

	return argon2.IDKey([]byte(passphrase), salt, argonTime, argonMemory, argonThreads, KeySize), nil
}
