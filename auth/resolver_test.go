package auth

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidvatten/tidvatten/interfaces"
)

func TestStubResolver(t *testing.T) {
	identity, err := NewStubResolver().Resolve(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, &interfaces.Identity{Username: "test", Token: "anything"}, identity)
}

func TestStaticResolver(t *testing.T) {
	tokens := map[string]string{"abc123": "alice"}
	resolver := NewStaticResolver(tokens)
	tokens["evil"] = "mallory"

	identity, err := resolver.Resolve(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "alice", identity.Username)

	_, err = resolver.Resolve(context.Background(), "evil")
	assert.ErrorIs(t, err, interfaces.ErrIdentityNotFound)
}

func TestLoadTokens(t *testing.T) {
	tokens, err := LoadTokens(strings.NewReader(`{"keepers": [
		{"username": "alice", "token": "abc123"},
		{"username": "bob", "token": "def456"}
	]}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"abc123": "alice", "def456": "bob"}, tokens)
}

func TestLoadTokens_Invalid(t *testing.T) {
	tests := map[string]string{
		"not json":        `keepers`,
		"empty token":     `{"keepers": [{"username": "alice", "token": ""}]}`,
		"empty username":  `{"keepers": [{"username": "", "token": "abc"}]}`,
		"duplicate token": `{"keepers": [{"username": "alice", "token": "abc"}, {"username": "bob", "token": "abc"}]}`,
	}

	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadTokens(strings.NewReader(input))
			assert.Error(t, err)
		})
	}
}
