package auth

import "errors"

var (
	// ErrNotFound signals a missing identity. Store implementations return it;
	// the session manager maps it to ErrUnauthorized on every credential path
	// so callers cannot probe which emails exist.
	ErrNotFound = errors.New("auth: not found")

	// ErrEmailTaken is returned by Register when the email is already in use.
	ErrEmailTaken = errors.New("auth: email already registered")

	// ErrUnauthorized covers every credential failure: unknown email, wrong
	// password, mismatched or expired refresh token. Deliberately
	// undifferentiated so responses do not leak which factor failed.
	ErrUnauthorized = errors.New("auth: unauthorized")

	// ErrInvalidToken indicates an access token failed verification for any
	// reason (signature, issuer, audience, expiry, malformed input).
	ErrInvalidToken = errors.New("auth: invalid token")
)
