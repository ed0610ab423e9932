// Package security provides the credential verifier used by the bank to hash and
// check account secrets.
package security

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// CredentialVerifier hashes secrets and checks them against stored digests
type CredentialVerifier interface {
	Hash(secret string) (string, error)
	Verify(digest, secret string) bool
}

// BcryptVerifier implements CredentialVerifier with bcrypt
type BcryptVerifier struct {
	cost int
}

// NewBcryptVerifier creates a verifier with the given cost
func NewBcryptVerifier(cost int) (*BcryptVerifier, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &BcryptVerifier{cost: cost}, nil
}

// Hash returns the bcrypt digest of secret
func (v *BcryptVerifier) Hash(secret string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(secret), v.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash secret: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether secret matches digest. Malformed digests never match.
func (v *BcryptVerifier) Verify(digest, secret string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(secret))
	return err == nil
}
