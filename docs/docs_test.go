package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadDoc_WarningsMarkedDiagnostic(t *testing.T) {
	var doc struct {
		Definitions map[string]struct {
			Properties map[string]struct {
				Description string `json:"description"`
			} `json:"properties"`
		} `json:"definitions"`
	}
	require.NoError(t, json.Unmarshal([]byte(SwaggerInfo.ReadDoc()), &doc))

	record, ok := doc.Definitions["handler.InvoiceRecordBody"]
	require.True(t, ok)
	warnings, ok := record.Properties["warnings"]
	require.True(t, ok)
	assert.Contains(t, warnings.Description, "Not part of the invoice record")
}
