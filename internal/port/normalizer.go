package port

import (
	"context"

	"facturas/internal/domain"
)

// InvoiceNormalizer turns extracted invoice text into an InvoiceRecord.
// Failures are *domain.ExtractionError values.
type InvoiceNormalizer interface {
	Normalize(ctx context.Context, rawText string) (*domain.InvoiceRecord, error)
}
