package port

import (
	"context"

	"facturas/internal/domain"
)

// TextExtractor converts PDF bytes into plain text.
// Implementations return domain.ErrInvalidPDF for input that is not a parseable PDF.
type TextExtractor interface {
	Extract(ctx context.Context, pdf []byte) (*domain.ExtractedText, error)
}
