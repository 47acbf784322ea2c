package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"facturas/internal/service"
)

// MockUploadService is a mock implementation of service.UploadService.
type MockUploadService struct {
	mock.Mock
}

func (m *MockUploadService) Upload(ctx context.Context, input service.UploadInput) (string, error) {
	args := m.Called(ctx, input)
	return args.String(0), args.Error(1)
}

func (m *MockUploadService) PresignUpload(ctx context.Context, fileName, contentType string) (*service.PresignResult, error) {
	args := m.Called(ctx, fileName, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PresignResult), args.Error(1)
}

func (m *MockUploadService) Submit(ctx context.Context, input service.UploadInput) (*service.SubmitResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SubmitResult), args.Error(1)
}
