package noop

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facturas/internal/port"
)

func TestNotifyMalformedOutput_Logs(t *testing.T) {
	var buf bytes.Buffer
	n := NewNoopSender(zerolog.New(&buf))

	err := n.NotifyMalformedOutput(context.Background(), port.DriftAlert{Provider: "claude", RawOutput: "oops"})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), `"provider":"claude"`)
	assert.Contains(t, buf.String(), `"raw_output_len":4`)
}
