// Package pdftext renders the text layer of invoice PDFs.
//
// The document is first validated with pdfcpu, then read with the pure Go
// ledongthuc/pdf reader. When that yields too little text the pdftotext binary
// (poppler-utils) is tried and the longer result wins.
package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/rs/zerolog"

	"facturas/internal/config"
	"facturas/internal/domain"
)

var disableConfigDir sync.Once

// Extractor implements port.TextExtractor.
type Extractor struct {
	minTextChars int
	pdftotext    string
	runner       Runner
	log          zerolog.Logger

	pageCount func(data []byte) (int, error)
	readText  func(data []byte) (string, error)
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithRunner replaces the command runner used for pdftotext.
func WithRunner(r Runner) Option {
	return func(e *Extractor) { e.runner = r }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Extractor) { e.log = l }
}

// New creates an Extractor. An empty PdftotextPath disables the fallback.
func New(cfg config.PDFConfig, opts ...Option) *Extractor {
	disableConfigDir.Do(api.DisableConfigDir)

	e := &Extractor{
		minTextChars: cfg.MinTextChars,
		pdftotext:    cfg.PdftotextPath,
		log:          zerolog.Nop(),
		pageCount:    pdfcpuPageCount,
		readText:     readPlainText,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.runner == nil {
		e.runner = execRunner{log: e.log}
	}
	return e
}

// Extract returns the plain text of data with pages separated by a blank line.
func (e *Extractor) Extract(ctx context.Context, data []byte) (*domain.ExtractedText, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty document", domain.ErrInvalidPDF)
	}
	pages, err := e.pageCount(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPDF, err)
	}

	text, err := e.readText(data)
	if err != nil {
		e.log.Warn().Err(err).Int("pages", pages).Msg("embedded text read failed")
		text = ""
	}
	best := &domain.ExtractedText{Text: text, Pages: pages, Method: domain.ExtractionMethodPDFText}

	if e.pdftotext != "" && utf8.RuneCountInString(text) < e.minTextChars {
		alt, err := e.runPdftotext(ctx, data)
		switch {
		case err != nil:
			e.log.Warn().Err(err).Msg("pdftotext fallback failed")
		case utf8.RuneCountInString(alt) > utf8.RuneCountInString(text):
			best = &domain.ExtractedText{Text: alt, Pages: pages, Method: domain.ExtractionMethodPdftotext}
		}
	}

	if best.Text == "" {
		return nil, domain.ErrNoTextExtracted
	}

	e.log.Debug().
		Int("pages", best.Pages).
		Int("chars", len(best.Text)).
		Str("method", string(best.Method)).
		Msg("pdf text extracted")
	return best, nil
}

func (e *Extractor) runPdftotext(ctx context.Context, data []byte) (string, error) {
	f, err := os.CreateTemp("", "facturas-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(f.Name())

	if _, err := f.Write(data); err != nil {
		f.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}

	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, stderr, err := e.runner.Run(ctx, e.pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", f.Name(), "-")
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w: %s", err, truncate(strings.TrimSpace(string(stderr)), 512))
	}
	return joinPages(strings.Split(string(out), "\f")), nil
}

func pdfcpuPageCount(data []byte) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return api.PageCount(bytes.NewReader(data), conf)
}

// readPlainText reads the text layer page by page. The reader panics on some
// malformed content streams, so a panic is turned into an error.
func readPlainText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	pages := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		t, err := page.GetPlainText(nil)
		if err != nil {
			continue // unreadable page
		}
		pages = append(pages, t)
	}
	return joinPages(pages), nil
}

// joinPages trims each page and separates non-empty pages with a blank line.
func joinPages(pages []string) string {
	var b strings.Builder
	for _, p := range pages {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(p)
	}
	return b.String()
}
