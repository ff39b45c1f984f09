package keepers

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/tidvatten/tidvatten/interfaces"
)

// MockSource mocks the interfaces.KeeperSource interface
type MockSource struct {
	mock.Mock
}

// Fetch mocks the Fetch method
func (m *MockSource) Fetch(ctx context.Context) (*interfaces.KeeperSnapshot, error) {
	args := m.Called(ctx)
	snapshot, _ := args.Get(0).(*interfaces.KeeperSnapshot)
	return snapshot, args.Error(1)
}
