package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"facturas/internal/domain"
	"facturas/internal/port"
)

// InvoiceService defines the invoice extraction contract.
type InvoiceService interface {
	ExtractText(ctx context.Context, pdf []byte) (*domain.ExtractedText, error)
	ExtractInvoice(ctx context.Context, text string) (*domain.InvoiceRecord, error)
	ProcessPDF(ctx context.Context, pdf []byte) (*domain.ProcessResult, error)
	ProcessStored(ctx context.Context, s3Key string) (*domain.ProcessResult, error)
}

type invoiceService struct {
	extractor  port.TextExtractor
	normalizer port.InvoiceNormalizer
	storage    port.ObjectStorage
	notifier   port.DriftNotifier
	bucket     string
	provider   string
	log        zerolog.Logger
}

// NewInvoiceService creates a new InvoiceService implementation.
// storage may be nil when no bucket is configured; ProcessStored then fails
// with domain.ErrStorageNotConfigured.
func NewInvoiceService(
	extractor port.TextExtractor,
	normalizer port.InvoiceNormalizer,
	storage port.ObjectStorage,
	notifier port.DriftNotifier,
	bucket string,
	provider string,
	log zerolog.Logger,
) InvoiceService {
	return &invoiceService{
		extractor:  extractor,
		normalizer: normalizer,
		storage:    storage,
		notifier:   notifier,
		bucket:     bucket,
		provider:   provider,
		log:        log,
	}
}

func (s *invoiceService) ExtractText(ctx context.Context, pdf []byte) (*domain.ExtractedText, error) {
	return s.extractor.Extract(ctx, pdf)
}

func (s *invoiceService) ExtractInvoice(ctx context.Context, text string) (*domain.InvoiceRecord, error) {
	record, err := s.normalizer.Normalize(ctx, text)
	if err != nil {
		s.reportDrift(ctx, err, len(text))
		return nil, err
	}
	return record, nil
}

func (s *invoiceService) ProcessPDF(ctx context.Context, pdf []byte) (*domain.ProcessResult, error) {
	extracted, err := s.extractor.Extract(ctx, pdf)
	if err != nil {
		return nil, err
	}
	record, err := s.ExtractInvoice(ctx, extracted.Text)
	if err != nil {
		return nil, err
	}
	return &domain.ProcessResult{Text: extracted.Text, Invoice: record}, nil
}

func (s *invoiceService) ProcessStored(ctx context.Context, s3Key string) (*domain.ProcessResult, error) {
	if s.storage == nil || s.bucket == "" {
		return nil, domain.ErrStorageNotConfigured
	}

	start := time.Now()
	data, err := s.storage.Download(ctx, s.bucket, s3Key)
	if err != nil {
		s.log.Warn().Err(err).Str("s3_key", s3Key).Msg("download failed")
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("downloading %s: %w", s3Key, err)
	}
	s.log.Info().Str("s3_key", s3Key).Int("bytes", len(data)).Dur("elapsed", time.Since(start)).Msg("object downloaded")

	return s.ProcessPDF(ctx, data)
}

// reportDrift tells operators about unusable model output. Notifier failures are
// logged and never change the result of the request.
func (s *invoiceService) reportDrift(ctx context.Context, err error, textLen int) {
	extErr, ok := domain.AsExtractionError(err)
	if !ok || extErr.Kind != domain.KindMalformedModelOutput || s.notifier == nil {
		return
	}
	alert := port.DriftAlert{
		Provider:  s.provider,
		Model:     extErr.Model,
		Reason:    errorReason(extErr),
		RawOutput: extErr.RawOutput,
		TextLen:   textLen,
	}
	if nerr := s.notifier.NotifyMalformedOutput(ctx, alert); nerr != nil {
		s.log.Error().Err(nerr).Str("provider", s.provider).Msg("drift alert failed")
	}
}

func errorReason(e *domain.ExtractionError) string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}
