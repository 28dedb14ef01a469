package session

import (
	"context"
	"errors"
	"strings"
)

// ErrNoSession indicates that no authenticated operator is attached to the
// current request.
var ErrNoSession = errors.New("session: no authenticated user")

// Provider exposes the identity of the operator issuing the current request.
// Identity federation itself lives outside this service; the data layer only
// consumes the opaque user identifier.
type Provider interface {
	CurrentUserID(ctx context.Context) (string, error)
}

type userIDContextKey struct{}

// WithUserID attaches the resolved operator identifier to the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey{}, userID)
}

// UserIDFromContext extracts the operator identifier attached by WithUserID.
func UserIDFromContext(ctx context.Context) (string, bool) {
	value, ok := ctx.Value(userIDContextKey{}).(string)
	if !ok || strings.TrimSpace(value) == "" {
		return "", false
	}
	return value, true
}

// ContextProvider resolves the operator from the request context populated by
// the HTTP authorization middleware.
type ContextProvider struct{}

// NewContextProvider constructs the context-backed provider.
func NewContextProvider() *ContextProvider {
	return &ContextProvider{}
}

// CurrentUserID implements Provider.
func (p *ContextProvider) CurrentUserID(ctx context.Context) (string, error) {
	userID, ok := UserIDFromContext(ctx)
	if !ok {
		return "", ErrNoSession
	}
	return userID, nil
}

// StaticProvider always resolves to one fixed operator. Used by tooling and
// tests that run outside an HTTP request.
type StaticProvider struct {
	userID string
}

// NewStaticProvider constructs a provider pinned to the given operator id.
func NewStaticProvider(userID string) (*StaticProvider, error) {
	trimmed := strings.TrimSpace(userID)
	if trimmed == "" {
		return nil, ErrNoSession
	}
	return &StaticProvider{userID: trimmed}, nil
}

// CurrentUserID implements Provider.
func (p *StaticProvider) CurrentUserID(context.Context) (string, error) {
	return p.userID, nil
}
