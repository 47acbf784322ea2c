package service

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"facturas/internal/config"
	"facturas/internal/domain"
	"facturas/internal/port"
)

// UploadInput is the DTO for file upload requests.
type UploadInput struct {
	FileName    string
	ContentType string
	Size        int64
	File        io.ReadSeeker
}

// PresignResult holds a browser upload URL and the key the object will land under.
type PresignResult struct {
	URL   string `json:"presignedUrl"`
	S3Key string `json:"s3Key"`
}

// SubmitResult is the outcome of uploading and processing one invoice.
type SubmitResult struct {
	S3Key   string                `json:"s3Key"`
	Text    string                `json:"text"`
	Invoice *domain.InvoiceRecord `json:"invoice"`
}

// UploadService defines the upload contract.
type UploadService interface {
	Upload(ctx context.Context, input UploadInput) (string, error)
	PresignUpload(ctx context.Context, fileName, contentType string) (*PresignResult, error)
	Submit(ctx context.Context, input UploadInput) (*SubmitResult, error)
}

type uploadService struct {
	storage      port.ObjectStorage
	orchestrator port.Orchestrator
	invoices     InvoiceService
	s3           *config.S3Config
	maxBytes     int64
	log          zerolog.Logger
	now          func() time.Time
}

// NewUploadService creates a new UploadService implementation. storage may be nil
// when no bucket is configured. orchestrator may be nil, in which case Submit
// processes the document in-process.
func NewUploadService(
	storage port.ObjectStorage,
	orchestrator port.Orchestrator,
	invoices InvoiceService,
	s3Cfg *config.S3Config,
	pdfCfg *config.PDFConfig,
	log zerolog.Logger,
) UploadService {
	return &uploadService{
		storage:      storage,
		orchestrator: orchestrator,
		invoices:     invoices,
		s3:           s3Cfg,
		maxBytes:     pdfCfg.MaxFileSizeMB * 1024 * 1024,
		log:          log,
		now:          time.Now,
	}
}

func (s *uploadService) Upload(ctx context.Context, input UploadInput) (string, error) {
	if err := s.requireStorage(); err != nil {
		return "", err
	}
	if err := checkPDFName(input.FileName, input.ContentType); err != nil {
		return "", err
	}
	if input.Size > s.maxBytes {
		return "", domain.ErrFileTooLarge
	}

	// Read first 512 bytes for magic-byte content type detection
	buf := make([]byte, 512)
	n, err := io.ReadFull(input.File, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", fmt.Errorf("reading file header: %w", err)
	}
	detectedType := http.DetectContentType(buf[:n])
	if _, ok := domain.AllowedContentTypes[detectedType]; !ok {
		return "", domain.ErrUnsupportedFileType
	}

	// Seek back to beginning for upload
	if _, err := input.File.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("seeking file: %w", err)
	}

	key := s.objectKey(input.FileName)
	contentType := domain.AllowedFileTypes[domain.FileTypePDF]

	s.log.Info().Str("file", input.FileName).Int64("size", input.Size).Str("s3_key", key).Msg("uploading file")

	_, err = s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.s3.Bucket,
		Key:         key,
		Body:        input.File,
		ContentType: contentType,
		Size:        input.Size,
	})
	if err != nil {
		s.log.Error().Err(err).Str("s3_key", key).Msg("S3 upload failed")
		return "", domain.ErrUploadFailed
	}
	return key, nil
}

func (s *uploadService) PresignUpload(ctx context.Context, fileName, contentType string) (*PresignResult, error) {
	if err := s.requireStorage(); err != nil {
		return nil, err
	}
	if err := checkPDFName(fileName, contentType); err != nil {
		return nil, err
	}

	key := s.objectKey(fileName)
	url, err := s.storage.PresignPut(ctx, s.s3.Bucket, key, domain.AllowedFileTypes[domain.FileTypePDF], s.s3.PresignExpiry)
	if err != nil {
		return nil, fmt.Errorf("presigning upload: %w", err)
	}
	return &PresignResult{URL: url, S3Key: key}, nil
}

// Submit uploads the file and then processes it, either through the configured
// remote endpoint or in-process.
func (s *uploadService) Submit(ctx context.Context, input UploadInput) (*SubmitResult, error) {
	key, err := s.Upload(ctx, input)
	if err != nil {
		return nil, err
	}

	if s.orchestrator != nil {
		result, err := s.orchestrator.Process(ctx, key)
		if err != nil {
			return nil, err
		}
		return &SubmitResult{S3Key: key, Text: result.Text, Invoice: result.Invoice}, nil
	}

	if _, err := input.File.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seeking file: %w", err)
	}
	data, err := io.ReadAll(io.LimitReader(input.File, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	result, err := s.invoices.ProcessPDF(ctx, data)
	if err != nil {
		return nil, err
	}
	return &SubmitResult{S3Key: key, Text: result.Text, Invoice: result.Invoice}, nil
}

func (s *uploadService) requireStorage() error {
	if s.storage == nil || s.s3.Bucket == "" {
		return domain.ErrStorageNotConfigured
	}
	return nil
}

// objectKey builds <prefix><unix-ms>-<8 random chars>-<sanitised name>.
func (s *uploadService) objectKey(fileName string) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s%d-%s-%s", s.s3.UploadPrefix, s.now().UnixMilli(), random, sanitizeObjectName(fileName))
}

// checkPDFName validates the file extension and, when present, the declared content type.
func checkPDFName(fileName, contentType string) error {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
	if _, ok := domain.AllowedExtensions[ext]; !ok {
		return domain.ErrUnsupportedFileType
	}
	if contentType == "" || contentType == "application/octet-stream" {
		return nil
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return domain.ErrUnsupportedFileType
	}
	if _, ok := domain.AllowedContentTypes[mediaType]; !ok {
		return domain.ErrUnsupportedFileType
	}
	return nil
}

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// sanitizeObjectName drops any path and replaces characters that are awkward in object keys.
func sanitizeObjectName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	name = unsafeKeyChars.ReplaceAllString(name, "_")
	if name == "" || name == "." || name == "_" {
		return "document.pdf"
	}
	return name
}
