package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"facturas/internal/domain"
)

// MockInvoiceNormalizer is a mock implementation of port.InvoiceNormalizer.
type MockInvoiceNormalizer struct {
	mock.Mock
}

func (m *MockInvoiceNormalizer) Normalize(ctx context.Context, rawText string) (*domain.InvoiceRecord, error) {
	args := m.Called(ctx, rawText)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InvoiceRecord), args.Error(1)
}
