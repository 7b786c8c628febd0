package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/brandforge/brandforge/pkg/provider"
)

// MockProviderClient is a mock implementation of the provider.Client
// interface.
type MockProviderClient struct {
	mock.Mock
}

func (m *MockProviderClient) Name() string {
	args := m.Called()

	return args.String(0)
}

func (m *MockProviderClient) Generate(ctx context.Context, req provider.Request) (*provider.Result, error) {
	args := m.Called(ctx, req)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*provider.Result), args.Error(1)
}
