// Package credentials provides one-way password hashing and verification.
// It has no stored state; the per-call salt lives inside the hash value.
package credentials

import "golang.org/x/crypto/bcrypt"

// Hash derives a salted bcrypt hash from plaintext. Two calls on the same
// input produce different hashes; both verify against the input.
func Hash(plaintext string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify reports whether plaintext matches hash. An empty or malformed hash
// verifies as false rather than returning an error, so callers cannot be
// tricked into treating a storage anomaly as anything but a failed login.
func Verify(plaintext, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
