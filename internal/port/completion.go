package port

import "context"

// CompletionRequest is a single system+user exchange with a text completion model.
type CompletionRequest struct {
	SystemPrompt string
	UserText     string
	Temperature  float64
	// JSONMode asks providers that support it to constrain output to JSON.
	JSONMode bool
}

// CompletionResponse carries the model's raw text output.
type CompletionResponse struct {
	Text     string
	Model    string
	Provider string
	// Truncated is set when the provider stopped at its output token limit.
	Truncated bool
}

// CompletionService abstracts an LLM text completion endpoint.
type CompletionService interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	Name() string
}
