package port

import (
	"context"

	"facturas/internal/domain"
)

// Orchestrator hands a stored document to an external processing endpoint.
type Orchestrator interface {
	Process(ctx context.Context, s3Key string) (*domain.ProcessResult, error)
}
