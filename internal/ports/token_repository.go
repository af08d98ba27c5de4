package ports

import (
	"context"
	"time"
)

// TokenRepository tracks revoked access tokens between logout and expiry.
// Callers pass the token's hash, never the raw token, and Revoke entries may
// be forgotten once the expiration has passed.
type TokenRepository interface {
	IsRevoked(ctx context.Context, tokenHash string) (bool, error)
	Revoke(ctx context.Context, tokenHash string, expiration time.Duration) error
}
