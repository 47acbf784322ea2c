package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"facturas/internal/port"
)

// MockCompletionService is a mock implementation of port.CompletionService.
type MockCompletionService struct {
	mock.Mock
	ProviderName string
}

func (m *MockCompletionService) Complete(ctx context.Context, req port.CompletionRequest) (*port.CompletionResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.CompletionResponse), args.Error(1)
}

func (m *MockCompletionService) Name() string {
	if m.ProviderName == "" {
		return "mock"
	}
	return m.ProviderName
}
