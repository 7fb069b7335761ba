// Package identity resolves the caller behind a request. The authenticated
// identity travels explicitly in the request context (placed there by the
// auth middleware) instead of being read from ambient global state, so
// every mutating flow can be tested with an injected Verifier fake.
package identity

import (
	"context"
	"errors"
)

// ErrNotLoggedIn is returned when no valid session backs the request.
// The message is user-facing.
var ErrNotLoggedIn = errors.New("you must be logged in to do that")

// Identity describes an authenticated caller.
type Identity struct {
	UserID      string
	Email       string
	AccountType string
}

// Verifier confirms a caller is authenticated before a mutating operation
// proceeds.
type Verifier interface {
	Verify(ctx context.Context) (Identity, error)
}

type contextKey struct{}

// NewContext returns a context carrying id.
func NewContext(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext extracts the identity placed by NewContext, if any.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}

// ContextVerifier is the production Verifier: it trusts the identity the
// JWT middleware validated and stored in the context.
type ContextVerifier struct{}

func (ContextVerifier) Verify(ctx context.Context) (Identity, error) {
	id, ok := FromContext(ctx)
	if !ok || id.UserID == "" {
		return Identity{}, ErrNotLoggedIn
	}
	return id, nil
}
