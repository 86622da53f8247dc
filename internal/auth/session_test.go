package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestService(t *testing.T, clock func() time.Time) (*Service, *InMemory) {
	t.Helper()
	store := NewInMemory()
	opts := []TokenIssuerOption{}
	if clock != nil {
		opts = append(opts, WithClock(clock))
	}
	issuer := NewTokenIssuer(testTokenSecret, "creativecube", "creativecube-api",
		30*time.Minute, 14*24*time.Hour, opts...)
	svcOpts := []ServiceOption{}
	if clock != nil {
		svcOpts = append(svcOpts, WithServiceClock(clock))
	}
	return NewService(store, issuer, svcOpts...), store
}

func TestRegisterThenLogin(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	reg, err := svc.Register(ctx, "a@x.com", "Pw1!")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if reg.UserID == "" || reg.AccessToken == "" || reg.RefreshToken == "" {
		t.Fatalf("incomplete auth result: %+v", reg)
	}
	if reg.AccessToken == reg.RefreshToken {
		t.Fatal("access and refresh tokens must be distinct")
	}

	res, err := svc.Login(ctx, "a@x.com", "Pw1!")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !time.Now().Before(res.AccessExpiresAt) {
		t.Fatal("login returned an already-expired access token")
	}
	if res.UserID != reg.UserID {
		t.Fatalf("login user %s != registered user %s", res.UserID, reg.UserID)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, store := newTestService(t, nil)
	ctx := context.Background()

	reg, err := svc.Register(ctx, "a@x.com", "Pw1!")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	before, err := store.Find(ctx, reg.UserID)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}

	if _, err := svc.Register(ctx, "a@x.com", "Other9!"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	after, err := store.Find(ctx, reg.UserID)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if after.PasswordHash != before.PasswordHash {
		t.Fatal("duplicate registration altered the stored password hash")
	}
}

func TestRegisterEmailExactMatch(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "a@x.com", "Pw1!"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	// Emails are compared exactly as stored; no normalization.
	if _, err := svc.Register(ctx, "A@x.com", "Pw1!"); err != nil {
		t.Fatalf("expected case-different email to register, got %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, store := newTestService(t, nil)
	ctx := context.Background()

	reg, err := svc.Register(ctx, "a@x.com", "Pw1!")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	before, _ := store.Find(ctx, reg.UserID)

	if _, err := svc.Login(ctx, "a@x.com", "wrong"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@x.com", "Pw1!"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for unknown email, got %v", err)
	}

	after, _ := store.Find(ctx, reg.UserID)
	if *after.RefreshToken != *before.RefreshToken || !after.RefreshTokenExpiresAt.Equal(*before.RefreshTokenExpiresAt) {
		t.Fatal("failed login mutated stored refresh-token fields")
	}
}

func TestLoginOverwritesPriorSession(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	first, err := svc.Register(ctx, "a@x.com", "Pw1!")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	second, err := svc.Login(ctx, "a@x.com", "Pw1!")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if first.RefreshToken == second.RefreshToken {
		t.Fatal("login did not rotate the refresh token")
	}

	// The token from before the second login is no longer valid.
	if _, err := svc.Refresh(ctx, "a@x.com", first.RefreshToken); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected stale refresh token to be rejected, got %v", err)
	}
	if _, err := svc.Refresh(ctx, "a@x.com", second.RefreshToken); err != nil {
		t.Fatalf("expected current refresh token to work: %v", err)
	}
}

func TestRefreshRotation(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	reg, err := svc.Register(ctx, "a@x.com", "Pw1!")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	r1, err := svc.Refresh(ctx, "a@x.com", reg.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if r1.RefreshToken == reg.RefreshToken {
		t.Fatal("refresh did not rotate the token")
	}

	if _, err := svc.Refresh(ctx, "a@x.com", reg.RefreshToken); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("old token accepted after rotation: %v", err)
	}
	if _, err := svc.Refresh(ctx, "a@x.com", r1.RefreshToken); err != nil {
		t.Fatalf("new token rejected: %v", err)
	}
}

func TestRefreshExpiry(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := start
	svc, _ := newTestService(t, func() time.Time { return clock })
	ctx := context.Background()

	reg, err := svc.Register(ctx, "a@x.com", "Pw1!")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	// Exact string match is not enough once past expiry.
	clock = start.Add(15 * 24 * time.Hour)
	if _, err := svc.Refresh(ctx, "a@x.com", reg.RefreshToken); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected expired refresh token to be rejected, got %v", err)
	}
}

func TestRefreshExpiryBoundary(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := start
	svc, _ := newTestService(t, func() time.Time { return clock })
	ctx := context.Background()

	reg, err := svc.Register(ctx, "a@x.com", "Pw1!")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	// now == expiresAt counts as expired.
	clock = reg.RefreshExpiresAt
	if _, err := svc.Refresh(ctx, "a@x.com", reg.RefreshToken); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected refresh at exact expiry instant to fail, got %v", err)
	}
}

func TestRefreshWrongToken(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "a@x.com", "Pw1!"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Refresh(ctx, "a@x.com", "bogus"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := svc.Refresh(ctx, "nobody@x.com", "bogus"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for unknown email, got %v", err)
	}
}

func TestProfile(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	reg, err := svc.Register(ctx, "a@x.com", "Pw1!")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	identity, err := svc.Profile(ctx, reg.AccessToken)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if identity.ID != reg.UserID || identity.Email != "a@x.com" {
		t.Fatalf("unexpected identity: %+v", identity)
	}

	if _, err := svc.Profile(ctx, "garbage"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for invalid token, got %v", err)
	}
}

func TestProfileIdentityGone(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	// Token is valid but signed for an identity that was never stored.
	issuer := NewTokenIssuer(testTokenSecret, "creativecube", "creativecube-api",
		30*time.Minute, 14*24*time.Hour)
	token, _, err := issuer.IssueAccessToken("ghost", "ghost@x.com")
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}
	if _, err := svc.Profile(ctx, token); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for missing identity, got %v", err)
	}
}

func TestIdentityContextHelpers(t *testing.T) {
	ctx := context.Background()
	if _, ok := IdentityFromContext(ctx); ok {
		t.Fatal("empty context should carry no identity")
	}
	ctx = ContextWithIdentity(ctx, AuthenticatedIdentity{ID: "user-7", Email: "a@x.com"})
	id, ok := IdentityFromContext(ctx)
	if !ok || id.ID != "user-7" || id.Email != "a@x.com" {
		t.Fatalf("unexpected identity: %+v ok=%v", id, ok)
	}
}
