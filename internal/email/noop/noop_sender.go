package noop

import (
	"context"

	"github.com/rs/zerolog"

	"facturas/internal/port"
)

type noopSender struct {
	log zerolog.Logger
}

// NewNoopSender creates a DriftNotifier that only logs the alert.
func NewNoopSender(log zerolog.Logger) port.DriftNotifier {
	return &noopSender{log: log}
}

func (s *noopSender) NotifyMalformedOutput(_ context.Context, alert port.DriftAlert) error {
	s.log.Warn().
		Str("provider", alert.Provider).
		Str("model", alert.Model).
		Str("reason", alert.Reason).
		Int("raw_output_len", len(alert.RawOutput)).
		Int("text_len", alert.TextLen).
		Msg("[NOOP ALERT] unusable model output")
	return nil
}
