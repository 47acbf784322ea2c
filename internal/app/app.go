// Package app wires configuration into the concrete adapters and services
// shared by the server and the command line tool.
package app

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"facturas/internal/completion"
	"facturas/internal/completion/claude"
	"facturas/internal/completion/gemini"
	"facturas/internal/completion/openai"
	"facturas/internal/config"
	"facturas/internal/email/noop"
	"facturas/internal/email/ses"
	"facturas/internal/logger"
	"facturas/internal/normalizer"
	"facturas/internal/orchestrator"
	"facturas/internal/pdftext"
	"facturas/internal/port"
	"facturas/internal/service"
	s3storage "facturas/internal/storage/s3"
)

var registerOnce sync.Once

// RegisterProviders registers the built-in completion providers.
func RegisterProviders() {
	registerOnce.Do(func() {
		completion.RegisterProvider("openai", func(cfg *config.ParserProviderConfig) (port.CompletionService, error) {
			return openai.NewClient(cfg), nil
		})
		completion.RegisterProvider("claude", func(cfg *config.ParserProviderConfig) (port.CompletionService, error) {
			return claude.NewClient(cfg), nil
		})
		completion.RegisterProvider("gemini", func(cfg *config.ParserProviderConfig) (port.CompletionService, error) {
			return gemini.NewClient(cfg), nil
		})
	})
}

// Components holds the wired services. Storage and Orchestrator are nil when
// not configured.
type Components struct {
	Storage      port.ObjectStorage
	Orchestrator port.Orchestrator
	Invoices     service.InvoiceService
	Uploads      service.UploadService
}

// Build constructs every adapter and service from cfg.
func Build(cfg *config.Config, log zerolog.Logger) (*Components, error) {
	RegisterProviders()

	llm, err := completion.FromConfig(&cfg.Parser, completion.WithLogger(logger.Component(log, "completion")))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize completion provider: %w", err)
	}

	norm, err := normalizer.New(llm, cfg.Extraction, normalizer.WithLogger(logger.Component(log, "normalizer")))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize normalizer: %w", err)
	}

	extractor := pdftext.New(cfg.PDF, pdftext.WithLogger(logger.Component(log, "pdftext")))

	var storage port.ObjectStorage
	if cfg.S3.Bucket != "" {
		storage, err = s3storage.NewS3Client(&cfg.S3, cfg.PDF.MaxFileSizeMB*1024*1024)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 client: %w", err)
		}
	}

	notifier, err := newNotifier(cfg, log)
	if err != nil {
		return nil, err
	}

	var orch port.Orchestrator
	if cfg.Orchestrator.Endpoint != "" {
		orch = orchestrator.NewClient(&cfg.Orchestrator)
	}

	invoices := service.NewInvoiceService(extractor, norm, storage, notifier, cfg.S3.Bucket, llm.Name(),
		logger.Component(log, "invoice_service"))
	uploads := service.NewUploadService(storage, orch, invoices, &cfg.S3, &cfg.PDF,
		logger.Component(log, "upload_service"))

	return &Components{
		Storage:      storage,
		Orchestrator: orch,
		Invoices:     invoices,
		Uploads:      uploads,
	}, nil
}

func newNotifier(cfg *config.Config, log zerolog.Logger) (port.DriftNotifier, error) {
	switch cfg.Alerts.Provider {
	case "ses":
		sender, err := ses.NewSESSender(&cfg.Alerts)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SES sender: %w", err)
		}
		return sender, nil
	default:
		return noop.NewNoopSender(logger.Component(log, "drift")), nil
	}
}
