package handler

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"facturas/internal/domain"
	"facturas/internal/export"
	"facturas/internal/service"
)

// InvoiceHandler handles text and invoice extraction endpoints.
type InvoiceHandler struct {
	invoices service.InvoiceService
	maxBytes int64
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(invoices service.InvoiceService, maxFileSizeMB int64) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices, maxBytes: maxFileSizeMB * 1024 * 1024}
}

// ExtractPDF handles POST /api/v1/extract-pdf
// @Summary Extract text from a PDF
// @Description Returns the plain text of an uploaded PDF. Pages are separated by a blank line.
// @Tags extraction
// @Accept multipart/form-data
// @Produce json
// @Param pdf formData file true "Invoice PDF"
// @Success 200 {object} domain.ExtractedText
// @Failure 400 {object} ErrorResponseBody "Missing file"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Failure 422 {object} ErrorResponseBody "Invalid PDF or no text"
// @Security BearerAuth
// @Router /extract-pdf [post]
func (h *InvoiceHandler) ExtractPDF(c *gin.Context) {
	data, ok := h.readFormPDF(c, "pdf")
	if !ok {
		return
	}
	extracted, err := h.invoices.ExtractText(c.Request.Context(), data)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, extracted)
}

// ExtractInvoiceData handles POST /api/v1/extract-invoice-data
// @Summary Normalize invoice text
// @Description Sends the invoice text to the completion model and returns the normalized invoice.
// @Tags extraction
// @Accept json
// @Produce json
// @Param request body ExtractInvoiceRequest true "Invoice text"
// @Success 200 {object} InvoiceRecordBody
// @Failure 400 {object} ErrorResponseBody "Missing or empty text"
// @Failure 422 {object} ErrorResponseBody "Model output was not valid JSON; raw_content holds it"
// @Failure 429 {object} ErrorResponseBody "Rate limited or quota exhausted"
// @Failure 500 {object} ErrorResponseBody "Completion service unavailable"
// @Security BearerAuth
// @Router /extract-invoice-data [post]
func (h *InvoiceHandler) ExtractInvoiceData(c *gin.Context) {
	var req ExtractInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "body must be JSON with a text field")
		return
	}
	record, err := h.invoices.ExtractInvoice(c.Request.Context(), req.Text)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, record)
}

// ProcessStored handles POST /api/v1/invoice
// @Summary Process a stored PDF
// @Description Downloads a previously uploaded PDF, extracts its text and normalizes the invoice.
// @Tags extraction
// @Accept json
// @Produce json
// @Param request body ProcessStoredRequest true "Object key"
// @Success 200 {object} ProcessResultBody
// @Failure 400 {object} ErrorResponseBody "Missing key"
// @Failure 404 {object} ErrorResponseBody "Object not found"
// @Failure 422 {object} ErrorResponseBody "Invalid PDF, no text or malformed model output"
// @Failure 429 {object} ErrorResponseBody "Rate limited or quota exhausted"
// @Security BearerAuth
// @Router /invoice [post]
func (h *InvoiceHandler) ProcessStored(c *gin.Context) {
	var req ProcessStoredRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.S3Key == "" {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "s3Key is required")
		return
	}
	result, err := h.invoices.ProcessStored(c.Request.Context(), req.S3Key)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, result)
}

// Export handles POST /api/v1/invoices/export
// @Summary Export an invoice as a spreadsheet
// @Description Renders a normalized invoice as XLSX (sheets Factura and Expediciones) or CSV.
// @Tags export
// @Accept json
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce text/csv
// @Param format query string false "xlsx (default) or csv"
// @Param request body InvoiceRecordBody true "Invoice"
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponseBody "Invalid body or format"
// @Security BearerAuth
// @Router /invoices/export [post]
func (h *InvoiceHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", "xlsx")
	if format != "xlsx" && format != "csv" {
		RespondError(c, http.StatusBadRequest, "INVALID_FORMAT", "format must be xlsx or csv")
		return
	}

	var record domain.InvoiceRecord
	if err := c.ShouldBindJSON(&record); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "body must be an invoice record")
		return
	}
	if err := record.Validate(); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	var buf bytes.Buffer
	contentType := "text/csv; charset=utf-8"
	var err error
	if format == "xlsx" {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		err = export.WriteXLSX(&buf, &record)
	} else {
		err = export.WriteCSV(&buf, &record)
	}
	if err != nil {
		HandleError(c, err)
		return
	}

	filename := export.BuildFilename(record.InvoiceNumber, format, time.Now())
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// readFormPDF reads the named multipart file, enforcing the size limit.
// It writes the error response itself and returns false on failure.
func (h *InvoiceHandler) readFormPDF(c *gin.Context, field string) ([]byte, bool) {
	file, header, err := c.Request.FormFile(field)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", field+" field is required")
		return nil, false
	}
	defer func() { _ = file.Close() }()

	if header.Size > h.maxBytes {
		HandleError(c, domain.ErrFileTooLarge)
		return nil, false
	}
	data, err := io.ReadAll(io.LimitReader(file, h.maxBytes+1))
	if err != nil {
		HandleError(c, err)
		return nil, false
	}
	if int64(len(data)) > h.maxBytes {
		HandleError(c, domain.ErrFileTooLarge)
		return nil, false
	}
	return data, true
}
