package interfaces

import (
	"context"
	"errors"
)

// ErrIdentityNotFound is returned by an IdentityResolver when a token does
// not belong to any known user.
var ErrIdentityNotFound = errors.New("identity not found")

// Identity is the caller resolved from an API token. It is resolved on every
// request and never cached.
type Identity struct {
	Username string
	Token    string
}

// IdentityResolver maps a raw API token to a caller identity.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (*Identity, error)
}

// SeededRelease is a single release a keeper reports as seeding.
type SeededRelease struct {
	// ID is the release identifier, the topic id on the forum.
	ID uint32 `json:"id"`
	// Hash is the torrent info hash.
	Hash string `json:"hash"`
}
