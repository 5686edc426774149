// internal/adapters/backend/session.go
package backend

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/phamduc/swapmart/internal/core/ports"
)

// RefreshFunc exchanges a refresh token for a new token pair. The
// returned refresh token may be empty when the server chose not to
// rotate it.
type RefreshFunc func(ctx context.Context, refreshToken string) (access, refresh string, err error)

// AuthSession owns the in-memory token cache mirrored to a durable
// TokenStore. Lifecycle: create -> Hydrate -> use -> Clear. It is the
// only component allowed to read or write tokens; the single-flight
// refresh invariant depends on that.
type AuthSession struct {
	store  ports.TokenStore
	logger *slog.Logger

	mu       sync.RWMutex
	tokens   ports.TokenPair
	hydrated bool

	refresh singleflight.Group
}

// NewAuthSession creates a session backed by the given store.
func NewAuthSession(store ports.TokenStore, logger *slog.Logger) *AuthSession {
	return &AuthSession{
		store:  store,
		logger: logger.With(slog.String("component", "auth_session")),
	}
}

// Hydrate loads the persisted token pair into memory. It is idempotent:
// once a load succeeds, subsequent calls are no-ops.
func (s *AuthSession) Hydrate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hydrated {
		return nil
	}

	pair, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to hydrate tokens: %w", err)
	}

	s.tokens = pair
	s.hydrated = true

	s.logger.DebugContext(ctx, "session hydrated",
		slog.Bool("has_access_token", pair.AccessToken != ""),
		slog.Bool("has_refresh_token", pair.RefreshToken != ""))

	return nil
}

// AccessToken returns the current access token, empty when the session
// is unauthenticated.
func (s *AuthSession) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens.AccessToken
}

// RefreshToken returns the current refresh token.
func (s *AuthSession) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens.RefreshToken
}

// SetTokens updates the in-memory pair and persists it. An empty
// refresh argument retains the previously stored refresh token; the
// server only returns one when it rotates it.
func (s *AuthSession) SetTokens(ctx context.Context, access, refresh string) error {
	s.mu.Lock()
	s.tokens.AccessToken = access
	if refresh != "" {
		s.tokens.RefreshToken = refresh
	}
	pair := s.tokens
	s.hydrated = true
	s.mu.Unlock()

	if err := s.store.Save(ctx, pair); err != nil {
		return fmt.Errorf("failed to persist tokens: %w", err)
	}
	return nil
}

// Clear wipes both the in-memory cache and the persisted pair.
func (s *AuthSession) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.tokens = ports.TokenPair{}
	s.hydrated = true
	s.mu.Unlock()

	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear tokens: %w", err)
	}
	return nil
}

// RefreshAccess obtains a fresh access token via fn. Concurrent callers
// within the same refresh window share one in-flight call; the
// single-flight key is released once the call settles, success or
// failure, so a later 401 can attempt a fresh refresh.
//
// A missing refresh token fails fast without a network round-trip. Any
// failure clears all tokens and surfaces ErrAuthExpired; a refresh is
// never retried on behalf of the same original request.
func (s *AuthSession) RefreshAccess(ctx context.Context, fn RefreshFunc) (string, error) {
	v, err, _ := s.refresh.Do("refresh", func() (interface{}, error) {
		refreshToken := s.RefreshToken()
		if refreshToken == "" {
			if cerr := s.Clear(ctx); cerr != nil {
				s.logger.WarnContext(ctx, "failed to clear tokens", slog.String("error", cerr.Error()))
			}
			return nil, authError("no refresh token available")
		}

		access, refresh, err := fn(ctx, refreshToken)
		if err != nil {
			if cerr := s.Clear(ctx); cerr != nil {
				s.logger.WarnContext(ctx, "failed to clear tokens", slog.String("error", cerr.Error()))
			}
			s.logger.WarnContext(ctx, "token refresh failed", slog.String("error", err.Error()))
			return nil, authError(fmt.Sprintf("token refresh failed: %s", err.Error()))
		}

		if err := s.SetTokens(ctx, access, refresh); err != nil {
			s.logger.WarnContext(ctx, "failed to persist refreshed tokens", slog.String("error", err.Error()))
		}

		s.logger.DebugContext(ctx, "access token refreshed", slog.Bool("refresh_rotated", refresh != ""))
		return access, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}
