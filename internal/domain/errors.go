package domain

import "errors"

var (
	ErrNotFound             = errors.New("resource not found")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrUnsupportedFileType  = errors.New("unsupported file type")
	ErrFileTooLarge         = errors.New("file exceeds maximum allowed size")
	ErrUploadFailed         = errors.New("file upload to storage failed")
	ErrStorageNotConfigured = errors.New("object storage is not configured")
	ErrInvalidPDF           = errors.New("input is not a parseable PDF")
	ErrNoTextExtracted      = errors.New("no text could be extracted from the PDF")
	ErrOrchestratorFailed   = errors.New("processing endpoint failed")

	errOutOfRange = errors.New("is outside the supported numeric range")
	errNegative   = errors.New("is negative")

	// Extraction error kinds. *ExtractionError matches these with errors.Is.
	ErrEmptyInput           = errors.New("input text is empty")
	ErrServiceUnavailable   = errors.New("completion service unavailable")
	ErrRateLimited          = errors.New("completion service rate limited or quota exhausted")
	ErrMalformedModelOutput = errors.New("model output is not valid JSON")
)
