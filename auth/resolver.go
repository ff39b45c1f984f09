package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/tidvatten/tidvatten/interfaces"
)

// StubResolver accepts every token and attributes it to a fixed username.
// It stands in until the forum exposes a token lookup API.
type StubResolver struct {
	Username string
}

// NewStubResolver returns a resolver mapping every token to username "test".
func NewStubResolver() *StubResolver {
	return &StubResolver{Username: "test"}
}

func (s *StubResolver) Resolve(_ context.Context, token string) (*interfaces.Identity, error) {
	return &interfaces.Identity{Username: s.Username, Token: token}, nil
}

// StaticResolver resolves tokens from a fixed token to username table.
type StaticResolver struct {
	users map[string]string
}

// NewStaticResolver returns a resolver over a copy of tokens (token -> username).
func NewStaticResolver(tokens map[string]string) *StaticResolver {
	users := make(map[string]string, len(tokens))
	for token, username := range tokens {
		users[token] = username
	}
	return &StaticResolver{users: users}
}

func (s *StaticResolver) Resolve(_ context.Context, token string) (*interfaces.Identity, error) {
	username, ok := s.users[token]
	if !ok {
		return nil, interfaces.ErrIdentityNotFound
	}
	return &interfaces.Identity{Username: username, Token: token}, nil
}

// LoadTokens reads a token table from JSON of the form
//
//	{"keepers": [{"username": "alice", "token": "abc123"}]}
func LoadTokens(r io.Reader) (map[string]string, error) {
	var data struct {
		Keepers []struct {
			Username string `json:"username"`
			Token    string `json:"token"`
		} `json:"keepers"`
	}

	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode tokens JSON: %w", err)
	}

	result := make(map[string]string, len(data.Keepers))
	for _, keeper := range data.Keepers {
		if keeper.Username == "" || keeper.Token == "" {
			return nil, fmt.Errorf("token entry for %q is incomplete", keeper.Username)
		}
		if _, dup := result[keeper.Token]; dup {
			return nil, fmt.Errorf("duplicate token for %s", keeper.Username)
		}
		result[keeper.Token] = keeper.Username
	}

	return result, nil
}

var (
	_ interfaces.IdentityResolver = (*StubResolver)(nil)
	_ interfaces.IdentityResolver = (*StaticResolver)(nil)
)
