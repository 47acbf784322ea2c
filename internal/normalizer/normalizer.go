package normalizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"facturas/internal/completion"
	"facturas/internal/config"
	"facturas/internal/domain"
	"facturas/internal/port"
)

var (
	errTruncatedOutput = errors.New("model output truncated at the provider token limit")
	errEmptyResponse   = errors.New("completion service returned no response")
)

// Normalizer turns extracted invoice text into an InvoiceRecord through a single
// completion call. It holds no per-call state and is safe for concurrent use.
type Normalizer struct {
	completion  port.CompletionService
	temperature float64
	timeout     time.Duration
	jsonMode    bool
	schema      *schemaChecker
	log         zerolog.Logger
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(n *Normalizer) { n.log = l }
}

// New creates a Normalizer backed by svc.
func New(svc port.CompletionService, cfg config.ExtractionConfig, opts ...Option) (*Normalizer, error) {
	n := &Normalizer{
		completion:  svc,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout(),
		jsonMode:    cfg.JSONMode,
		log:         zerolog.Nop(),
	}
	if cfg.SchemaCheck {
		checker, err := newSchemaChecker()
		if err != nil {
			return nil, fmt.Errorf("invoice schema: %w", err)
		}
		n.schema = checker
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

// Normalize sends rawText to the completion service and coerces the answer into an
// InvoiceRecord. Every failure is a *domain.ExtractionError. Empty input fails
// before any outbound call.
func (n *Normalizer) Normalize(ctx context.Context, rawText string) (*domain.InvoiceRecord, error) {
	if strings.TrimSpace(rawText) == "" {
		return nil, domain.NewEmptyInputError()
	}

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	start := time.Now()
	resp, err := n.completion.Complete(ctx, port.CompletionRequest{
		SystemPrompt: SystemPrompt,
		UserText:     rawText,
		Temperature:  n.temperature,
		JSONMode:     n.jsonMode,
	})
	if err != nil {
		extErr := n.classify(ctx, err)
		n.log.Warn().Err(err).
			Str("provider", n.completion.Name()).
			Bool("rate_limited", extErr.RateLimited).
			Dur("elapsed", time.Since(start)).
			Msg("completion call failed")
		return nil, extErr
	}
	if resp == nil {
		return nil, domain.NewServiceUnavailableError(errEmptyResponse)
	}

	if resp.Truncated {
		n.log.Warn().Str("model", resp.Model).Int("output_len", len(resp.Text)).Msg("model output truncated")
		return nil, malformed(resp, errTruncatedOutput)
	}

	values, err := decodeDocuments(resp.Text)
	if err != nil {
		n.log.Warn().Err(err).Str("model", resp.Model).Int("output_len", len(resp.Text)).Msg("model output is not valid JSON")
		return nil, malformed(resp, err)
	}

	record, objects := buildRecord(values, n.schema)

	n.log.Info().
		Str("model", resp.Model).
		Str("prompt_version", PromptVersion).
		Int("text_len", len(rawText)).
		Int("objects", objects).
		Int("shipments", len(record.Shipments)).
		Int("warnings", len(record.Warnings)).
		Dur("elapsed", time.Since(start)).
		Msg("invoice normalized")
	return record, nil
}

// Coerce maps an invoice document produced elsewhere, such as by a remote
// processing endpoint, onto an InvoiceRecord with the same key aliases and value
// rules as Normalize. Only invalid JSON is an error.
func Coerce(raw []byte) (*domain.InvoiceRecord, error) {
	values, err := decodeDocuments(string(raw))
	if err != nil {
		return nil, err
	}
	record, _ := buildRecord(values, nil)
	return record, nil
}

// buildRecord coerces and merges every invoice object found in values.
// It returns the record and the number of objects it was built from.
func buildRecord(values []interface{}, schema *schemaChecker) (*domain.InvoiceRecord, int) {
	objects, warnings := flattenObjects(values)
	if len(objects) == 0 {
		warnings = append(warnings, "response holds no invoice object; all fields are null")
	}

	records := make([]*domain.InvoiceRecord, 0, len(objects))
	for i, obj := range objects {
		if schema != nil {
			for _, w := range schema.check(obj) {
				if len(objects) > 1 {
					w = fmt.Sprintf("object %d: %s", i, w)
				}
				warnings = append(warnings, w)
			}
		}
		records = append(records, coerceInvoice(obj))
	}

	record, mergeWarnings := mergeRecords(records)
	warnings = append(warnings, mergeWarnings...)
	if len(warnings) > 0 {
		record.Warnings = warnings
	}
	return record, len(objects)
}

func malformed(resp *port.CompletionResponse, err error) *domain.ExtractionError {
	e := domain.NewMalformedOutputError(resp.Text, err)
	e.Model = resp.Model
	return e
}

// classify maps a completion failure onto a ServiceUnavailable extraction error.
func (n *Normalizer) classify(ctx context.Context, err error) *domain.ExtractionError {
	var rlErr *completion.RateLimitError
	if errors.As(err, &rlErr) {
		return domain.NewRateLimitedError(err, rlErr.Quota, rlErr.RetryAfter)
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return domain.NewServiceUnavailableError(fmt.Errorf("completion timed out after %s: %w", n.timeout, err))
	}
	return domain.NewServiceUnavailableError(err)
}
