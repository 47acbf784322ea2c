package domain

// FileType represents the allowed file types for upload.
type FileType string

const (
	FileTypePDF FileType = "pdf"
)

// AllowedFileTypes maps FileType to its MIME content type.
var AllowedFileTypes = map[FileType]string{
	FileTypePDF: "application/pdf",
}

// AllowedContentTypes maps MIME content types back to FileType.
var AllowedContentTypes = map[string]FileType{
	"application/pdf": FileTypePDF,
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf": FileTypePDF,
}

// ExtractionMethod names the strategy that produced a document's text.
type ExtractionMethod string

const (
	ExtractionMethodPDFText   ExtractionMethod = "pdf-text"
	ExtractionMethodPdftotext ExtractionMethod = "pdftotext"
)

// ExtractionErrorKind classifies a failed invoice normalization.
type ExtractionErrorKind string

const (
	KindEmptyInput           ExtractionErrorKind = "EMPTY_INPUT"
	KindServiceUnavailable   ExtractionErrorKind = "SERVICE_UNAVAILABLE"
	KindMalformedModelOutput ExtractionErrorKind = "MALFORMED_MODEL_OUTPUT"
)
