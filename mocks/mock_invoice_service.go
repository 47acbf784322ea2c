package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"facturas/internal/domain"
)

// MockInvoiceService is a mock implementation of service.InvoiceService.
type MockInvoiceService struct {
	mock.Mock
}

func (m *MockInvoiceService) ExtractText(ctx context.Context, pdf []byte) (*domain.ExtractedText, error) {
	args := m.Called(ctx, pdf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExtractedText), args.Error(1)
}

func (m *MockInvoiceService) ExtractInvoice(ctx context.Context, text string) (*domain.InvoiceRecord, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InvoiceRecord), args.Error(1)
}

func (m *MockInvoiceService) ProcessPDF(ctx context.Context, pdf []byte) (*domain.ProcessResult, error) {
	args := m.Called(ctx, pdf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProcessResult), args.Error(1)
}

func (m *MockInvoiceService) ProcessStored(ctx context.Context, s3Key string) (*domain.ProcessResult, error) {
	args := m.Called(ctx, s3Key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProcessResult), args.Error(1)
}
