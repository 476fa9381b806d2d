package auth

import (
	"fmt"
	"strings"

	"github.com/alexedwards/argon2id"
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

// HashPassword hashes a password with Argon2id and returns the PHC-format
// string ($argon2id$v=19$...). The default parameters follow the argon2id
// package recommendations (64 MiB memory, 1 iteration, 32-byte key).
func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	hash, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return hash, nil
}

// VerifyPassword checks a password against a stored PHC-format hash.
// Returns (false, nil) on mismatch; an error only on malformed hashes.
func VerifyPassword(password, hash string) (bool, error) {
	if !strings.HasPrefix(hash, "$argon2id$") {
		return false, fmt.Errorf("unsupported password hash format")
	}
	match, err := argon2id.ComparePasswordAndHash(password, hash)
	if err != nil {
		return false, fmt.Errorf("failed to compare password: %w", err)
	}
	return match, nil
}
