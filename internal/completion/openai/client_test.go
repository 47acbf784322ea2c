package openai_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facturas/internal/completion"
	"facturas/internal/completion/openai"
	"facturas/internal/config"
	"facturas/internal/port"
)

func newTestClient(serverURL string) *openai.Client {
	cfg := &config.ParserProviderConfig{
		Provider:     "openai",
		APIKey:       "test-openai-key",
		DefaultModel: "gpt-3.5-turbo",
		TimeoutSecs:  30,
	}
	return openai.NewClientWithEndpoint(cfg, serverURL)
}

func successResponse(content, finishReason string) map[string]interface{} {
	return map[string]interface{}{
		"model": "gpt-3.5-turbo-0125",
		"choices": []map[string]interface{}{
			{
				"message": map[string]interface{}{
					"role":    "assistant",
					"content": content,
				},
				"finish_reason": finishReason,
			},
		},
	}
}

func TestClient_Complete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-openai-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var reqBody map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		assert.Equal(t, "gpt-3.5-turbo", reqBody["model"])
		assert.InDelta(t, 0.1, reqBody["temperature"], 1e-9)

		messages := reqBody["messages"].([]interface{})
		assert.Len(t, messages, 2)
		system := messages[0].(map[string]interface{})
		assert.Equal(t, "system", system["role"])
		assert.Equal(t, "extract invoices", system["content"])
		user := messages[1].(map[string]interface{})
		assert.Equal(t, "user", user["role"])
		assert.Equal(t, "Factura Nº F1", user["content"])

		format := reqBody["response_format"].(map[string]interface{})
		assert.Equal(t, "json_object", format["type"])

		_ = json.NewEncoder(w).Encode(successResponse(`{"numeroFactura":"F1"}`, "stop"))
	}))
	defer server.Close()

	resp, err := newTestClient(server.URL).Complete(context.Background(), port.CompletionRequest{
		SystemPrompt: "extract invoices",
		UserText:     "Factura Nº F1",
		Temperature:  0.1,
		JSONMode:     true,
	})

	require.NoError(t, err)
	assert.Equal(t, `{"numeroFactura":"F1"}`, resp.Text)
	assert.Equal(t, "gpt-3.5-turbo-0125", resp.Model)
	assert.Equal(t, "openai", resp.Provider)
	assert.False(t, resp.Truncated)
}

func TestClient_Complete_NoJSONModeOmitsResponseFormat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var reqBody map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		_, ok := reqBody["response_format"]
		assert.False(t, ok)
		_ = json.NewEncoder(w).Encode(successResponse("{}", "stop"))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Complete(context.Background(), port.CompletionRequest{UserText: "x"})
	require.NoError(t, err)
}

func TestClient_Complete_TruncatedOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(successResponse(`{"expediciones":[{"expedicion":"43/1`, "length"))
	}))
	defer server.Close()

	resp, err := newTestClient(server.URL).Complete(context.Background(), port.CompletionRequest{UserText: "x"})
	require.NoError(t, err)
	assert.True(t, resp.Truncated)
}

func TestClient_Complete_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "20")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"Rate limit reached","type":"requests","code":"rate_limit_exceeded"}}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Complete(context.Background(), port.CompletionRequest{UserText: "x"})

	var rlErr *completion.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, "openai", rlErr.Provider)
	assert.Equal(t, 20*time.Second, rlErr.RetryAfter)
	assert.False(t, rlErr.Quota)
}

func TestClient_Complete_QuotaExhausted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"You exceeded your current quota","type":"insufficient_quota","code":"insufficient_quota"}}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Complete(context.Background(), port.CompletionRequest{UserText: "x"})

	var rlErr *completion.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.True(t, rlErr.Quota)
	assert.Equal(t, 60*time.Second, rlErr.RetryAfter)
}

func TestClient_Complete_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom"}}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Complete(context.Background(), port.CompletionRequest{UserText: "x"})

	require.Error(t, err)
	var rlErr *completion.RateLimitError
	assert.False(t, errors.As(err, &rlErr))
	assert.Contains(t, err.Error(), "status 500")
}

func TestClient_Complete_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Complete(context.Background(), port.CompletionRequest{UserText: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestClient_Name(t *testing.T) {
	assert.Equal(t, "openai", openai.NewClient(&config.ParserProviderConfig{}).Name())
}
