package session

import (
	"context"
	"errors"
	"time"
)

// Store maps bearer tokens to user ids for the lifetime of a session.
// A token missing from the store is treated as signed out, whatever
// its JWT expiry says, which is what makes logout immediate.
type Store interface {
	Put(ctx context.Context, token, userID string, ttl time.Duration) error

	// Get returns the user id a token belongs to, or
	// ErrSessionNotFound when the token is unknown or expired.
	Get(ctx context.Context, token string) (string, error)

	Delete(ctx context.Context, token string) error
}

var ErrSessionNotFound = errors.New("session not found")
