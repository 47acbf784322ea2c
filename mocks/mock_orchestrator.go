package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"facturas/internal/domain"
)

// MockOrchestrator is a mock implementation of port.Orchestrator.
type MockOrchestrator struct {
	mock.Mock
}

func (m *MockOrchestrator) Process(ctx context.Context, s3Key string) (*domain.ProcessResult, error) {
	args := m.Called(ctx, s3Key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProcessResult), args.Error(1)
}
