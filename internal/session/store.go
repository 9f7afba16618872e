// Package session persists the single bearer token issued by the Calmora backend.
//
// A Store holds at most one token under a fixed key. Its presence is the only
// "logged in" signal; nothing here validates, refreshes or expires it.
package session

import (
	"context"
	"errors"
)

// Key is the fixed name the token is stored under.
const Key = "token"

var (
	ErrNoToken    = errors.New("no session token")
	ErrEmptyToken = errors.New("session token must not be empty")
)

// Store is the session storage capability injected into the API layer.
type Store interface {
	// Get returns the stored token, or ErrNoToken when there is none.
	Get(ctx context.Context) (string, error)
	// Set replaces the stored token.
	Set(ctx context.Context, token string) error
	// Clear removes the stored token. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}

// Authenticated reports whether s currently holds a token.
func Authenticated(ctx context.Context, s Store) (bool, error) {
	_, err := s.Get(ctx)
	if errors.Is(err, ErrNoToken) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
