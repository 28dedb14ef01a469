package session

import (
	"context"
	"errors"
	"testing"
)

func TestContextProviderResolvesAttachedUser(t *testing.T) {
	provider := NewContextProvider()

	ctx := WithUserID(context.Background(), "operator-1")
	userID, err := provider.CurrentUserID(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if userID != "operator-1" {
		t.Fatalf("expected operator-1, got %q", userID)
	}

	if _, err := provider.CurrentUserID(context.Background()); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession for bare context, got %v", err)
	}
	if _, err := provider.CurrentUserID(WithUserID(context.Background(), "  ")); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession for blank user id, got %v", err)
	}
}

func TestStaticProviderPinsOperator(t *testing.T) {
	provider, err := NewStaticProvider(" operator-1 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	userID, err := provider.CurrentUserID(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if userID != "operator-1" {
		t.Fatalf("expected trimmed operator id, got %q", userID)
	}

	if _, err := NewStaticProvider("   "); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession for blank operator, got %v", err)
	}
}
