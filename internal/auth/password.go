package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// VerifyResult is the outcome of a password check.
type VerifyResult int

const (
	// VerifyFailed means the password does not match the stored hash.
	VerifyFailed VerifyResult = iota
	// VerifySuccess means the password matches.
	VerifySuccess
	// VerifySuccessRehash means the password matches but the hash was produced
	// with an outdated cost; callers may re-hash at their convenience. Login
	// treats this as success.
	VerifySuccessRehash
)

// HashPassword hashes a plaintext password using bcrypt. The hash embeds its
// own salt and cost, so verification needs no external state.
func HashPassword(password string) (string, error) {
	if len(password) == 0 {
		return "", errors.New("auth: password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares a plaintext password with a stored hash. The
// comparison inside bcrypt is constant-time over the derived digest.
func VerifyPassword(hash, password string) VerifyResult {
	if hash == "" {
		return VerifyFailed
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return VerifyFailed
	}
	cost, err := bcrypt.Cost([]byte(hash))
	if err == nil && cost < bcrypt.DefaultCost {
		return VerifySuccessRehash
	}
	return VerifySuccess
}
