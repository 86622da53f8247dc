package auth

import "time"

// Identity is a registered principal. RefreshToken and RefreshTokenExpiresAt
// are either both nil (no live session) or both set; they are overwritten
// together on every successful login or refresh, never accumulated.
type Identity struct {
	ID           string
	Email        string
	PasswordHash string

	RefreshToken          *string
	RefreshTokenExpiresAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasSession reports whether the identity carries a live refresh token at the
// given instant.
func (i *Identity) HasSession(now time.Time) bool {
	return i.RefreshToken != nil && i.RefreshTokenExpiresAt != nil && now.Before(*i.RefreshTokenExpiresAt)
}

// AuthResult bundles everything a successful register/login/refresh returns.
type AuthResult struct {
	UserID           string
	Email            string
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}
