package handler_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"facturas/internal/domain"
	"facturas/internal/handler"
	"facturas/internal/service"
	"facturas/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func strPtr(s string) *string { return &s }

type errorBody struct {
	Success bool `json:"success"`
	Error   struct {
		Code       string  `json:"code"`
		Message    string  `json:"message"`
		RawContent *string `json:"raw_content"`
	} `json:"error"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	return body
}

func jsonRequest(t *testing.T, c *gin.Context, path string, body interface{}) {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	c.Request, _ = http.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	c.Request.Header.Set("Content-Type", "application/json")
}

func multipartRequest(c *gin.Context, path, field, filename string, content []byte) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, _ := writer.CreateFormFile(field, filename)
	_, _ = part.Write(content)
	_ = writer.Close()

	c.Request, _ = http.NewRequest(http.MethodPost, path, body)
	c.Request.Header.Set("Content-Type", writer.FormDataContentType())
}

func TestExtractInvoiceData_Success(t *testing.T) {
	svc := new(mocks.MockInvoiceService)
	h := handler.NewInvoiceHandler(svc, 20)

	total := decimal.RequireFromString("12.50")
	record := &domain.InvoiceRecord{InvoiceNumber: strPtr("F1"), TotalAmount: &total, Shipments: []domain.ShipmentRecord{}}
	svc.On("ExtractInvoice", mock.Anything, "FACTURA F1").Return(record, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	jsonRequest(t, c, "/api/v1/extract-invoice-data", map[string]string{"text": "FACTURA F1"})

	h.ExtractInvoiceData(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"invoiceNumber":"F1","date":null,"clientCode":null,"totalAmount":12.50,"currency":null,"shipments":[]}`, w.Body.String())
}

func TestExtractInvoiceData_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		code     string
		contains string
	}{
		{"empty input", domain.NewEmptyInputError(), http.StatusBadRequest, "EMPTY_INPUT", "required"},
		{"malformed", domain.NewMalformedOutputError("not json", errors.New("invalid character")), http.StatusUnprocessableEntity, "MALFORMED_MODEL_OUTPUT", "could not be parsed"},
		{"quota", domain.NewRateLimitedError(errors.New("429"), true, 0), http.StatusTooManyRequests, "QUOTA_EXHAUSTED", "quota"},
		{"rate limited", domain.NewRateLimitedError(errors.New("429"), false, 30*time.Second), http.StatusTooManyRequests, "RATE_LIMITED", "rate limit"},
		{"unavailable", domain.NewServiceUnavailableError(errors.New("dial tcp")), http.StatusInternalServerError, "SERVICE_UNAVAILABLE", "unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mocks.MockInvoiceService)
			h := handler.NewInvoiceHandler(svc, 20)
			svc.On("ExtractInvoice", mock.Anything, mock.Anything).Return(nil, tt.err)

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			jsonRequest(t, c, "/api/v1/extract-invoice-data", map[string]string{"text": "x"})

			h.ExtractInvoiceData(c)

			assert.Equal(t, tt.status, w.Code)
			body := decodeError(t, w)
			assert.Equal(t, tt.code, body.Error.Code)
			assert.Contains(t, body.Error.Message, tt.contains)
		})
	}
}

func TestExtractInvoiceData_MalformedIncludesRawContent(t *testing.T) {
	svc := new(mocks.MockInvoiceService)
	h := handler.NewInvoiceHandler(svc, 20)
	svc.On("ExtractInvoice", mock.Anything, mock.Anything).
		Return(nil, domain.NewMalformedOutputError("not json", errors.New("invalid character 'o'")))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	jsonRequest(t, c, "/api/v1/extract-invoice-data", map[string]string{"text": "x"})

	h.ExtractInvoiceData(c)

	body := decodeError(t, w)
	require.NotNil(t, body.Error.RawContent)
	assert.Equal(t, "not json", *body.Error.RawContent)
}

func TestExtractInvoiceData_RetryAfterHeader(t *testing.T) {
	svc := new(mocks.MockInvoiceService)
	h := handler.NewInvoiceHandler(svc, 20)
	svc.On("ExtractInvoice", mock.Anything, mock.Anything).
		Return(nil, domain.NewRateLimitedError(errors.New("429"), false, 30*time.Second))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	jsonRequest(t, c, "/api/v1/extract-invoice-data", map[string]string{"text": "x"})

	h.ExtractInvoiceData(c)

	assert.Equal(t, "30", w.Header().Get("Retry-After"))
	assert.Nil(t, decodeError(t, w).Error.RawContent)
}

func TestExtractInvoiceData_InvalidJSON(t *testing.T) {
	h := handler.NewInvoiceHandler(new(mocks.MockInvoiceService), 20)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/extract-invoice-data", bytes.NewBufferString("{"))
	c.Request.Header.Set("Content-Type", "application/json")

	h.ExtractInvoiceData(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExtractPDF_Success(t *testing.T) {
	svc := new(mocks.MockInvoiceService)
	h := handler.NewInvoiceHandler(svc, 20)
	pdf := []byte("%PDF-1.4 content")
	svc.On("ExtractText", mock.Anything, pdf).
		Return(&domain.ExtractedText{Text: "FACTURA", Pages: 1, Method: domain.ExtractionMethodPDFText}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	multipartRequest(c, "/api/v1/extract-pdf", "pdf", "factura.pdf", pdf)

	h.ExtractPDF(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"text":"FACTURA","pages":1,"method":"pdf-text"}`, w.Body.String())
}

func TestExtractPDF_MissingFile(t *testing.T) {
	h := handler.NewInvoiceHandler(new(mocks.MockInvoiceService), 20)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	multipartRequest(c, "/api/v1/extract-pdf", "file", "factura.pdf", []byte("%PDF"))

	h.ExtractPDF(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "MISSING_FILE", decodeError(t, w).Error.Code)
}

func TestExtractPDF_InvalidPDF(t *testing.T) {
	svc := new(mocks.MockInvoiceService)
	h := handler.NewInvoiceHandler(svc, 20)
	svc.On("ExtractText", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("%w: no header", domain.ErrInvalidPDF))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	multipartRequest(c, "/api/v1/extract-pdf", "pdf", "factura.pdf", []byte("hello"))

	h.ExtractPDF(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "INVALID_PDF", decodeError(t, w).Error.Code)
}

func TestExtractPDF_TooLarge(t *testing.T) {
	svc := new(mocks.MockInvoiceService)
	h := handler.NewInvoiceHandler(svc, 1)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	multipartRequest(c, "/api/v1/extract-pdf", "pdf", "big.pdf", bytes.Repeat([]byte("a"), 1<<20+10))

	h.ExtractPDF(c)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	svc.AssertNotCalled(t, "ExtractText", mock.Anything, mock.Anything)
}

func TestProcessStored(t *testing.T) {
	svc := new(mocks.MockInvoiceService)
	h := handler.NewInvoiceHandler(svc, 20)
	svc.On("ProcessStored", mock.Anything, "uploads/k.pdf").
		Return(&domain.ProcessResult{Text: "FACTURA", Invoice: &domain.InvoiceRecord{Shipments: []domain.ShipmentRecord{}}}, nil)
	svc.On("ProcessStored", mock.Anything, "uploads/missing.pdf").Return(nil, domain.ErrNotFound)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	jsonRequest(t, c, "/api/v1/invoice", map[string]string{"s3Key": "uploads/k.pdf"})
	h.ProcessStored(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"text":"FACTURA"`)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	jsonRequest(t, c, "/api/v1/invoice", map[string]string{"s3Key": "uploads/missing.pdf"})
	h.ProcessStored(c)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	jsonRequest(t, c, "/api/v1/invoice", map[string]string{})
	h.ProcessStored(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExport(t *testing.T) {
	h := handler.NewInvoiceHandler(new(mocks.MockInvoiceService), 20)
	record := map[string]interface{}{
		"invoiceNumber": "F43289956",
		"totalAmount":   2980.07,
		"shipments":     []map[string]interface{}{{"shipmentId": "43/1", "packageCount": 2}},
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	jsonRequest(t, c, "/api/v1/invoices/export?format=csv", record)
	h.Export(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "factura_F43289956_")
	assert.Contains(t, w.Body.String(), "F43289956")
	assert.Contains(t, w.Body.String(), "43/1")

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	jsonRequest(t, c, "/api/v1/invoices/export", record)
	h.Export(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	jsonRequest(t, c, "/api/v1/invoices/export?format=pdf", record)
	h.Export(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExport_RejectsOutOfRangeNumbers(t *testing.T) {
	h := handler.NewInvoiceHandler(new(mocks.MockInvoiceService), 20)
	for _, body := range []map[string]interface{}{
		{"invoiceNumber": "F1", "totalAmount": json.RawMessage("1e99999999")},
		{"invoiceNumber": "F1", "shipments": []map[string]interface{}{{"weight": json.RawMessage("1e-99999999")}}},
		{"invoiceNumber": "F1", "shipments": []map[string]interface{}{{"volume": -0.5}}},
	} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		jsonRequest(t, c, "/api/v1/invoices/export?format=csv", body)

		done := make(chan struct{})
		go func() {
			defer close(done)
			h.Export(c)
		}()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("Export did not return")
		}

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_REQUEST", decodeError(t, w).Error.Code)
	}
}

func TestUpload(t *testing.T) {
	svc := new(mocks.MockUploadService)
	h := handler.NewUploadHandler(svc)
	svc.On("Upload", mock.Anything, mock.MatchedBy(func(in service.UploadInput) bool {
		return in.FileName == "factura.pdf" && in.Size > 0
	})).Return("uploads/1-abcdefgh-factura.pdf", nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	multipartRequest(c, "/api/v1/upload", "file", "factura.pdf", []byte("%PDF-1.4"))

	h.Upload(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"s3Key":"uploads/1-abcdefgh-factura.pdf"}`, w.Body.String())
}

func TestUpload_UnsupportedType(t *testing.T) {
	svc := new(mocks.MockUploadService)
	h := handler.NewUploadHandler(svc)
	svc.On("Upload", mock.Anything, mock.Anything).Return("", domain.ErrUnsupportedFileType)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	multipartRequest(c, "/api/v1/upload", "file", "foto.png", []byte("png"))

	h.Upload(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "UNSUPPORTED_FILE_TYPE", decodeError(t, w).Error.Code)
}

func TestPresignedURL(t *testing.T) {
	svc := new(mocks.MockUploadService)
	h := handler.NewUploadHandler(svc)
	svc.On("PresignUpload", mock.Anything, "factura.pdf", "application/pdf").
		Return(&service.PresignResult{URL: "https://s3/presigned", S3Key: "uploads/k.pdf"}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	jsonRequest(t, c, "/api/v1/presigned-url", map[string]string{"fileName": "factura.pdf", "contentType": "application/pdf"})
	h.PresignedURL(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"presignedUrl":"https://s3/presigned","s3Key":"uploads/k.pdf"}`, w.Body.String())

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	jsonRequest(t, c, "/api/v1/presigned-url", map[string]string{"fileName": "factura.pdf"})
	h.PresignedURL(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmit_OrchestratorFailure(t *testing.T) {
	svc := new(mocks.MockUploadService)
	h := handler.NewUploadHandler(svc)
	svc.On("Submit", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("%w: status 500", domain.ErrOrchestratorFailed))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	multipartRequest(c, "/api/v1/invoices/submit", "file", "factura.pdf", []byte("%PDF-1.4"))

	h.Submit(c)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "PROCESSING_FAILED", decodeError(t, w).Error.Code)
}

func TestHealth(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	storage.On("Ping", mock.Anything, "bucket").Return(errors.New("no route")).Once()
	storage.On("Ping", mock.Anything, "bucket").Return(nil)
	h := handler.NewHealthHandler(storage, "bucket")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/readyz", http.NoBody)
	h.Readiness(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/readyz", http.NoBody)
	h.Readiness(c)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/healthz", http.NoBody)
	handler.NewHealthHandler(nil, "").Liveness(c)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestMapDomainError_Default(t *testing.T) {
	status, code, _ := handler.MapDomainError(errors.New("something odd"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "INTERNAL_ERROR", code)
}
