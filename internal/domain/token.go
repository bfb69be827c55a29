package domain

import (
	"context"
	"time"
)

// RevokedToken records a bearer token invalidated by logout, identified
// by its jti claim. Rows past ExpiresAt are eligible for purging since
// the token would no longer verify anyway.
type RevokedToken struct {
	JTI       string
	UserID    int64
	ExpiresAt time.Time
	RevokedAt time.Time
}

// TokenRepository defines persistence operations for the token
// revocation list.
type TokenRepository interface {
	Revoke(ctx context.Context, token *RevokedToken) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
