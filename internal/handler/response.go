package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"facturas/internal/domain"
	"facturas/internal/middleware"
)

// APIResponse is the envelope for error responses.
type APIResponse struct {
	Success bool      `json:"success"`
	Error   *APIError `json:"error,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// RawContent carries the literal model output for MALFORMED_MODEL_OUTPUT.
	RawContent *string `json:"raw_content,omitempty"`
}

// RespondOK sends a 200 response with data as the body.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	if extErr, ok := domain.AsExtractionError(err); ok {
		return mapExtractionError(extErr)
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized"
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "unsupported file type; allowed: pdf"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size"
	case errors.Is(err, domain.ErrInvalidPDF):
		return http.StatusUnprocessableEntity, "INVALID_PDF", "the file is not a readable PDF"
	case errors.Is(err, domain.ErrNoTextExtracted):
		return http.StatusUnprocessableEntity, "NO_TEXT_EXTRACTED", "no text could be extracted from the PDF; scanned documents need OCR first"
	case errors.Is(err, domain.ErrUploadFailed):
		return http.StatusInternalServerError, "UPLOAD_FAILED", "file upload to storage failed"
	case errors.Is(err, domain.ErrStorageNotConfigured):
		return http.StatusServiceUnavailable, "STORAGE_NOT_CONFIGURED", "object storage is not configured"
	case errors.Is(err, domain.ErrOrchestratorFailed):
		return http.StatusBadGateway, "PROCESSING_FAILED", "the processing endpoint failed"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

func mapExtractionError(e *domain.ExtractionError) (status int, code, msg string) {
	switch {
	case e.Kind == domain.KindEmptyInput:
		return http.StatusBadRequest, "EMPTY_INPUT", "invoice text is required"
	case e.Kind == domain.KindMalformedModelOutput:
		return http.StatusUnprocessableEntity, "MALFORMED_MODEL_OUTPUT", "the model response could not be parsed as invoice JSON"
	case e.QuotaExhausted:
		return http.StatusTooManyRequests, "QUOTA_EXHAUSTED", "completion service quota exhausted; check the provider plan and billing"
	case e.RateLimited:
		return http.StatusTooManyRequests, "RATE_LIMITED", "completion service rate limit reached; retry later"
	default:
		return http.StatusInternalServerError, "SERVICE_UNAVAILABLE", "completion service is unavailable; retry later"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
// Malformed model output is returned verbatim in raw_content.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)

	entry := log.Warn()
	if status >= 500 {
		entry = log.Error()
	}
	entry.Err(err).Str("request_id", middleware.GetRequestID(c)).Str("code", code).Msg("request failed")

	body := APIResponse{Success: false, Error: &APIError{Code: code, Message: msg}}
	if extErr, ok := domain.AsExtractionError(err); ok {
		if extErr.Kind == domain.KindMalformedModelOutput {
			raw := extErr.RawOutput
			body.Error.RawContent = &raw
		}
		if extErr.RetryAfter > 0 {
			c.Header("Retry-After", strconv.Itoa(int(extErr.RetryAfter.Seconds())))
		}
	}
	c.JSON(status, body)
}
