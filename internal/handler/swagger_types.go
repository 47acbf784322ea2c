package handler

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// ExtractInvoiceRequest is the body of POST /extract-invoice-data.
type ExtractInvoiceRequest struct {
	Text string `json:"text" example:"FACTURA F43289956 Fecha 29/11/2024 ..."`
}

// ProcessStoredRequest is the body of POST /invoice.
type ProcessStoredRequest struct {
	S3Key string `json:"s3Key" example:"uploads/1732870000000-a1b2c3d4-factura.pdf"`
}

// PresignRequest is the body of POST /presigned-url.
type PresignRequest struct {
	FileName    string `json:"fileName" binding:"required" example:"factura.pdf"`
	ContentType string `json:"contentType" binding:"required" example:"application/pdf"`
}

// UploadResponse is returned by POST /upload.
type UploadResponse struct {
	S3Key string `json:"s3Key" example:"uploads/1732870000000-a1b2c3d4-factura.pdf"`
}

// ShipmentBody documents one shipment row of an invoice.
type ShipmentBody struct {
	ShipmentID   *string  `json:"shipmentId" example:"43/4262436/4"`
	Date         *string  `json:"date" example:"15/11/2024"`
	Sender       *string  `json:"sender"`
	Recipient    *string  `json:"recipient" example:"JISO ILUMINACION, S."`
	PackageCount *int64   `json:"packageCount" example:"2"`
	Weight       *float64 `json:"weight" example:"340"`
	Volume       *float64 `json:"volume" example:"2.88"`
}

// InvoiceRecordBody documents the normalized invoice. Absent values are null.
type InvoiceRecordBody struct {
	InvoiceNumber *string        `json:"invoiceNumber" example:"F43289956"`
	Date          *string        `json:"date" example:"29/11/2024"`
	ClientCode    *string        `json:"clientCode" example:"375986"`
	TotalAmount   *float64       `json:"totalAmount" example:"2980.07"`
	Currency      *string        `json:"currency" example:"EUR"`
	Shipments     []ShipmentBody `json:"shipments"`
	// Diagnostic notes about the model output. Not part of the invoice record;
	// clients must not depend on its presence or wording.
	Warnings      []string       `json:"warnings,omitempty" example:"importeTotal: expected a number"`
}

// ProcessResultBody documents POST /invoice.
type ProcessResultBody struct {
	Text    string            `json:"text"`
	Invoice InvoiceRecordBody `json:"invoice"`
}

// ErrorDetail documents the error object.
type ErrorDetail struct {
	Code       string  `json:"code" example:"MALFORMED_MODEL_OUTPUT"`
	Message    string  `json:"message" example:"the model response could not be parsed as invoice JSON"`
	RawContent *string `json:"raw_content,omitempty"`
}

// ErrorResponseBody documents the error envelope.
type ErrorResponseBody struct {
	Success bool        `json:"success" example:"false"`
	Error   ErrorDetail `json:"error"`
}
