package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"facturas/internal/service"
)

// UploadHandler handles upload endpoints.
type UploadHandler struct {
	uploads service.UploadService
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(uploads service.UploadService) *UploadHandler {
	return &UploadHandler{uploads: uploads}
}

// Upload handles POST /api/v1/upload
// @Summary Upload an invoice PDF
// @Description Stores a PDF in object storage and returns its key.
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Invoice PDF"
// @Success 200 {object} UploadResponse
// @Failure 400 {object} ErrorResponseBody "Missing file or unsupported type"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Failure 500 {object} ErrorResponseBody "Upload failed"
// @Security BearerAuth
// @Router /upload [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	input, closeFile, ok := formUpload(c)
	if !ok {
		return
	}
	defer closeFile()

	key, err := h.uploads.Upload(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, UploadResponse{S3Key: key})
}

// PresignedURL handles POST /api/v1/presigned-url
// @Summary Get a browser upload URL
// @Description Returns a presigned PUT URL valid for the configured expiry and the key the object will have.
// @Tags uploads
// @Accept json
// @Produce json
// @Param request body PresignRequest true "File name and content type"
// @Success 200 {object} service.PresignResult
// @Failure 400 {object} ErrorResponseBody "Missing name or unsupported type"
// @Security BearerAuth
// @Router /presigned-url [post]
func (h *UploadHandler) PresignedURL(c *gin.Context) {
	var req PresignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "fileName and contentType are required")
		return
	}
	result, err := h.uploads.PresignUpload(c.Request.Context(), req.FileName, req.ContentType)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, result)
}

// Submit handles POST /api/v1/invoices/submit
// @Summary Upload and process an invoice PDF
// @Description Stores the PDF, then extracts and normalizes it in-process or through the processing endpoint.
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Invoice PDF"
// @Success 200 {object} service.SubmitResult
// @Failure 400 {object} ErrorResponseBody "Missing file or unsupported type"
// @Failure 422 {object} ErrorResponseBody "Invalid PDF, no text or malformed model output"
// @Failure 429 {object} ErrorResponseBody "Rate limited or quota exhausted"
// @Failure 502 {object} ErrorResponseBody "Processing endpoint failed"
// @Security BearerAuth
// @Router /invoices/submit [post]
func (h *UploadHandler) Submit(c *gin.Context) {
	input, closeFile, ok := formUpload(c)
	if !ok {
		return
	}
	defer closeFile()

	result, err := h.uploads.Submit(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, result)
}

func formUpload(c *gin.Context) (service.UploadInput, func(), bool) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return service.UploadInput{}, nil, false
	}
	input := service.UploadInput{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		File:        file,
	}
	return input, func() { _ = file.Close() }, true
}
