// Package session owns the credential lifecycle. A single process-scoped
// Provider reads the persisted token; it is set at login, cleared at logout,
// and threaded explicitly into every authorized call instead of being looked
// up ambiently.
package session

import (
	"context"
	"errors"
	"fmt"
)

// TokenKey is the fixed name the session token is stored under.
const TokenKey = "token"

// ErrUnauthenticated signals that no token is stored. Callers must abandon
// the in-flight operation and send the user to the login entry point; there
// is no retry and no network call on this path.
var ErrUnauthenticated = errors.New("session: unauthenticated")

// Store is the client-side persisted key-value state behind the provider.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Provider hands out the current session token.
type Provider struct {
	store Store
}

// NewProvider creates a provider backed by the given store.
func NewProvider(store Store) *Provider {
	return &Provider{store: store}
}

// Token returns the stored session token. This is purely a local
// precondition check, not an authentication attempt: an absent token yields
// ErrUnauthenticated without touching the network.
func (p *Provider) Token(ctx context.Context) (string, error) {
	value, ok, err := p.store.Get(ctx, TokenKey)
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	if !ok || value == "" {
		return "", ErrUnauthenticated
	}
	return value, nil
}

// SetToken persists a freshly issued token.
func (p *Provider) SetToken(ctx context.Context, token string) error {
	if err := p.store.Set(ctx, TokenKey, token); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	return nil
}

// Clear removes the stored token. Subsequent Token calls return
// ErrUnauthenticated.
func (p *Provider) Clear(ctx context.Context) error {
	if err := p.store.Delete(ctx, TokenKey); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}
