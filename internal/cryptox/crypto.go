// Package cryptox groups the credential-hashing primitives: one-way password
// hashing with a per-call salt, and the digest applied to refresh tokens
// before they are persisted.
package cryptox

import (
	"crypto/sha256"
	"encoding/base64"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is the adaptive work factor. Raising it transparently upgrades
// new hashes; existing hashes keep the cost they were created with.
const bcryptCost = 12

// HashPassword derives a salted one-way digest of the plaintext. The salt is
// random per call and embedded in the digest. Failure here is fatal to the
// calling request.
func HashPassword(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// CheckPassword reports whether plaintext matches the stored digest.
// A wrong password is a false return, never an error.
func CheckPassword(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

// HashToken returns the digest stored in place of a raw refresh token:
// sha256 encoded with unpadded URL-safe base64. The raw token never touches
// the database.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
