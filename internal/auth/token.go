package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const refreshTokenBytes = 64

// AccessClaims are the verified claims of an access token. Email is carried
// alongside the registered claims so the profile endpoint can re-fetch the
// identity without decoding the subject.
type AccessClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenIssuer mints signed access tokens and opaque refresh tokens. All fields
// are fixed at construction; rotating the signing key invalidates every
// previously issued access token.
type TokenIssuer struct {
	secret     []byte
	issuer     string
	audience   string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// TokenIssuerOption configures a TokenIssuer.
type TokenIssuerOption func(*TokenIssuer)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) TokenIssuerOption {
	return func(t *TokenIssuer) {
		if fn != nil {
			t.now = fn
		}
	}
}

// NewTokenIssuer constructs a TokenIssuer. Secret must be at least 32 bytes;
// config.Load enforces that before this is reached.
func NewTokenIssuer(secret, issuer, audience string, accessTTL, refreshTTL time.Duration, opts ...TokenIssuerOption) *TokenIssuer {
	ti := &TokenIssuer{
		secret:     []byte(secret),
		issuer:     issuer,
		audience:   audience,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(ti)
	}
	return ti
}

// IssueAccessToken signs an HS256 token for the identity. Claims: subject =
// identity id, issuer, audience, a unique jti per call, and expiry.
func (t *TokenIssuer) IssueAccessToken(identityID, email string) (string, time.Time, error) {
	now := t.now().UTC()
	exp := now.Add(t.accessTTL)
	claims := AccessClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Audience:  jwt.ClaimStrings{t.audience},
			Subject:   identityID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// IssueRefreshToken returns 64 bytes of cryptographically secure randomness,
// base64-encoded. The token carries no identity binding; binding happens when
// the caller persists it against a specific identity.
func (t *TokenIssuer) IssueRefreshToken() (string, time.Time, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", time.Time{}, fmt.Errorf("refresh token entropy: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf), t.now().UTC().Add(t.refreshTTL), nil
}

// VerifyAccessToken checks signature, issuer, audience, and expiry. Every
// failure collapses to ErrInvalidToken so callers cannot distinguish expired
// from malformed from wrong-signer.
func (t *TokenIssuer) VerifyAccessToken(token string) (*AccessClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}
	claims := &AccessClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(tok *jwt.Token) (any, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithAudience(t.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
