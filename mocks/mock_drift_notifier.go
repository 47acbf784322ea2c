package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"facturas/internal/port"
)

// MockDriftNotifier is a mock implementation of port.DriftNotifier.
type MockDriftNotifier struct {
	mock.Mock
}

func (m *MockDriftNotifier) NotifyMalformedOutput(ctx context.Context, alert port.DriftAlert) error {
	args := m.Called(ctx, alert)
	return args.Error(0)
}
