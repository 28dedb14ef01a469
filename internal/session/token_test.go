package session

import (
	"errors"
	"testing"
	"time"
)

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestTokenManagerRoundTrip(t *testing.T) {
	issuedAt := time.Unix(1700000000, 0).UTC()
	manager := NewTokenManager(TokenManagerConfig{
		SigningSecret: []byte("test-secret"),
		Issuer:        "pharmadesk",
		Audience:      "pharmadesk-api",
		TokenTTL:      time.Hour,
		Clock:         fixedClock(issuedAt),
	})

	token, expiresIn, err := manager.Issue("operator-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if expiresIn != 3600 {
		t.Fatalf("expected 3600s expiry, got %d", expiresIn)
	}

	subject, err := manager.Validate(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if subject != "operator-1" {
		t.Fatalf("expected subject operator-1, got %q", subject)
	}
}

func TestTokenManagerRejectsExpiredToken(t *testing.T) {
	issuedAt := time.Unix(1700000000, 0).UTC()
	issuing := NewTokenManager(TokenManagerConfig{
		SigningSecret: []byte("test-secret"),
		Issuer:        "pharmadesk",
		Audience:      "pharmadesk-api",
		TokenTTL:      time.Minute,
		Clock:         fixedClock(issuedAt),
	})
	token, _, err := issuing.Issue("operator-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	validating := NewTokenManager(TokenManagerConfig{
		SigningSecret: []byte("test-secret"),
		Issuer:        "pharmadesk",
		Audience:      "pharmadesk-api",
		Clock:         fixedClock(issuedAt.Add(2 * time.Minute)),
	})
	if _, err := validating.Validate(token); err == nil {
		t.Fatalf("expected validation failure for expired token")
	}
}

func TestTokenManagerRejectsForeignSignature(t *testing.T) {
	issuedAt := time.Unix(1700000000, 0).UTC()
	issuing := NewTokenManager(TokenManagerConfig{
		SigningSecret: []byte("secret-a"),
		Issuer:        "pharmadesk",
		Audience:      "pharmadesk-api",
		Clock:         fixedClock(issuedAt),
	})
	token, _, err := issuing.Issue("operator-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	validating := NewTokenManager(TokenManagerConfig{
		SigningSecret: []byte("secret-b"),
		Issuer:        "pharmadesk",
		Audience:      "pharmadesk-api",
		Clock:         fixedClock(issuedAt),
	})
	if _, err := validating.Validate(token); err == nil {
		t.Fatalf("expected validation failure for foreign signature")
	}
}

func TestTokenManagerRequiresSecretAndSubject(t *testing.T) {
	unkeyed := NewTokenManager(TokenManagerConfig{})
	if _, _, err := unkeyed.Issue("operator-1"); !errors.Is(err, ErrMissingSigningSecret) {
		t.Fatalf("expected ErrMissingSigningSecret, got %v", err)
	}

	keyed := NewTokenManager(TokenManagerConfig{SigningSecret: []byte("test-secret")})
	if _, _, err := keyed.Issue("   "); !errors.Is(err, ErrMissingSubject) {
		t.Fatalf("expected ErrMissingSubject, got %v", err)
	}
}
