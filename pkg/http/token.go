package http

import (
	"context"
	"errors"
	"sync"
	"time"
)

// DefaultRefreshBuffer is how long before expiry a cached token is replaced.
const DefaultRefreshBuffer = 30 * time.Second

// ErrEmptyToken is returned when a provider yields an empty token.
var ErrEmptyToken = errors.New("token provider returned an empty token")

// TokenProvider fetches bearer tokens.
type TokenProvider interface {
	// FetchToken returns a token and its expiry. A zero expiry means the
	// token does not expire and is kept until invalidated.
	FetchToken(ctx context.Context) (token string, expiresAt time.Time, err error)
}

// TokenCache manages token storage with expiration handling.
type TokenCache struct {
	mu        sync.RWMutex
	token     string
	expiresAt time.Time
	provider  TokenProvider
	// refreshBuffer is the time before expiration to refresh the token
	refreshBuffer time.Duration
	now           func() time.Time
}

// NewTokenCache creates a new token cache with the given provider.
func NewTokenCache(provider TokenProvider, refreshBuffer time.Duration) *TokenCache {
	if refreshBuffer <= 0 {
		refreshBuffer = DefaultRefreshBuffer
	}
	return &TokenCache{
		provider:      provider,
		refreshBuffer: refreshBuffer,
		now:           time.Now,
	}
}

// GetToken returns the cached token or fetches a new one when it is missing
// or about to expire. Concurrent callers share a single fetch.
func (tc *TokenCache) GetToken(ctx context.Context) (string, error) {
	tc.mu.RLock()
	if tc.fresh() {
		token := tc.token
		tc.mu.RUnlock()
		return token, nil
	}
	tc.mu.RUnlock()

	return tc.refreshToken(ctx)
}

// fresh must be called with tc.mu held.
func (tc *TokenCache) fresh() bool {
	if tc.token == "" {
		return false
	}
	if tc.expiresAt.IsZero() {
		return true
	}
	return tc.now().Before(tc.expiresAt.Add(-tc.refreshBuffer))
}

func (tc *TokenCache) refreshToken(ctx context.Context) (string, error) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	// another goroutine may have refreshed it
	if tc.fresh() {
		return tc.token, nil
	}

	token, expiresAt, err := tc.provider.FetchToken(ctx)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", ErrEmptyToken
	}

	tc.token = token
	tc.expiresAt = expiresAt
	return token, nil
}

// Invalidate clears the cached token, forcing a refresh on next GetToken call.
func (tc *TokenCache) Invalidate() {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.token = ""
	tc.expiresAt = time.Time{}
}

// IsValid reports whether a cached token can be used without fetching.
func (tc *TokenCache) IsValid() bool {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.fresh()
}

// ExpiresAt returns the expiry of the cached token, zero if none or non-expiring.
func (tc *TokenCache) ExpiresAt() time.Time {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.expiresAt
}
