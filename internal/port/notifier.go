package port

import "context"

// DriftNotifier alerts operators when the completion model returns unusable output.
type DriftNotifier interface {
	NotifyMalformedOutput(ctx context.Context, alert DriftAlert) error
}

// DriftAlert describes one unusable model response.
type DriftAlert struct {
	Provider  string
	Model     string
	Reason    string
	RawOutput string
	TextLen   int
}
