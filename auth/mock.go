package auth

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/tidvatten/tidvatten/interfaces"
)

// MockResolver mocks the interfaces.IdentityResolver interface
type MockResolver struct {
	mock.Mock
}

// Resolve mocks the Resolve method
func (m *MockResolver) Resolve(ctx context.Context, token string) (*interfaces.Identity, error) {
	args := m.Called(ctx, token)
	identity, _ := args.Get(0).(*interfaces.Identity)
	return identity, args.Error(1)
}
