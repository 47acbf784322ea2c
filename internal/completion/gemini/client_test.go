package gemini_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facturas/internal/completion"
	"facturas/internal/completion/gemini"
	"facturas/internal/config"
	"facturas/internal/port"
)

func newTestClient(serverURL string) *gemini.Client {
	cfg := &config.ParserProviderConfig{
		Provider:    "gemini",
		APIKey:      "test-gemini-key",
		TimeoutSecs: 30,
	}
	return gemini.NewClientWithEndpoint(cfg, serverURL)
}

func TestClient_Complete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-gemini-key", r.Header.Get("x-goog-api-key"))

		var reqBody map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))

		sys := reqBody["systemInstruction"].(map[string]interface{})
		sysParts := sys["parts"].([]interface{})
		assert.Equal(t, "system prompt", sysParts[0].(map[string]interface{})["text"])

		contents := reqBody["contents"].([]interface{})
		assert.Len(t, contents, 1)
		parts := contents[0].(map[string]interface{})["parts"].([]interface{})
		assert.Equal(t, "invoice text", parts[0].(map[string]interface{})["text"])

		genCfg := reqBody["generationConfig"].(map[string]interface{})
		assert.Equal(t, "application/json", genCfg["responseMimeType"])
		assert.InDelta(t, 0.1, genCfg["temperature"], 1e-9)

		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"numeroFactura\":\"G1\"}"}]},"finishReason":"STOP"}],"modelVersion":"gemini-2.0-flash-001"}`))
	}))
	defer server.Close()

	resp, err := newTestClient(server.URL).Complete(context.Background(), port.CompletionRequest{
		SystemPrompt: "system prompt",
		UserText:     "invoice text",
		Temperature:  0.1,
		JSONMode:     true,
	})

	require.NoError(t, err)
	assert.Equal(t, `{"numeroFactura":"G1"}`, resp.Text)
	assert.Equal(t, "gemini-2.0-flash-001", resp.Model)
	assert.Equal(t, "gemini", resp.Provider)
}

func TestClient_Complete_QuotaExhausted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"You exceeded your current quota","status":"RESOURCE_EXHAUSTED"}}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Complete(context.Background(), port.CompletionRequest{UserText: "x"})

	var rlErr *completion.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.True(t, rlErr.Quota)
}

func TestClient_Complete_MaxTokens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{"}]},"finishReason":"MAX_TOKENS"}]}`))
	}))
	defer server.Close()

	resp, err := newTestClient(server.URL).Complete(context.Background(), port.CompletionRequest{UserText: "x"})
	require.NoError(t, err)
	assert.True(t, resp.Truncated)
}

func TestClient_Complete_NoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Complete(context.Background(), port.CompletionRequest{UserText: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no candidates")
}
