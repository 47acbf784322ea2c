// Package orchestrator hands stored invoice PDFs to a remote processing endpoint.
package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"facturas/internal/config"
	"facturas/internal/domain"
	"facturas/internal/normalizer"
)

// maxResponseBytes bounds how much of an upstream response body is read.
const maxResponseBytes = 16 << 20

// Client implements port.Orchestrator over HTTP.
type Client struct {
	endpoint string
	client   *http.Client
}

// NewClient creates a client for cfg.Endpoint.
func NewClient(cfg *config.OrchestratorConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 90 * time.Second
	}
	return &Client{
		endpoint: cfg.Endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

type processResponse struct {
	Text    string          `json:"text"`
	Invoice json.RawMessage `json:"invoice"`
	Error   json.RawMessage `json:"error"`
}

// Process posts {"s3Key": key} to the endpoint and returns the extracted text and invoice.
func (c *Client) Process(ctx context.Context, s3Key string) (*domain.ProcessResult, error) {
	bodyBytes, err := json.Marshal(map[string]string{"s3Key": s3Key})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrOrchestratorFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", domain.ErrOrchestratorFailed, err)
	}

	var out processResponse
	decodeErr := json.Unmarshal(respBody, &out)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := upstreamMessage(out.Error)
		if decodeErr != nil || msg == "" {
			msg = strings.TrimSpace(string(respBody))
		}
		if resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, msg)
		}
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrOrchestratorFailed, resp.StatusCode, msg)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", domain.ErrOrchestratorFailed, decodeErr)
	}
	if msg := upstreamMessage(out.Error); msg != "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrOrchestratorFailed, msg)
	}

	result := &domain.ProcessResult{Text: out.Text}
	if len(out.Invoice) > 0 && string(out.Invoice) != "null" {
		invoice, err := normalizer.Coerce(out.Invoice)
		if err != nil {
			return nil, fmt.Errorf("%w: decoding invoice: %v", domain.ErrOrchestratorFailed, err)
		}
		result.Invoice = invoice
	}
	return result, nil
}

// upstreamMessage reads either {"error": "msg"} or {"error": {"message": "msg"}}.
func upstreamMessage(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var obj struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &obj) == nil {
		return obj.Message
	}
	return string(raw)
}
