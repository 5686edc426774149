// internal/core/ports/token_store.go
package ports

import "context"

// TokenPair holds the bearer tokens for an authenticated session. Either
// field may be empty; an empty access token means requests go out
// unauthenticated.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// TokenStore defines the durable persistence port for auth tokens.
// It stands in for the device secure store; implementations must be safe
// for concurrent use. All token reads and writes go through the auth
// session so the single-flight refresh invariant holds -- no other
// component touches the store directly.
type TokenStore interface {
	Load(ctx context.Context) (TokenPair, error)
	Save(ctx context.Context, pair TokenPair) error
	Clear(ctx context.Context) error
}
