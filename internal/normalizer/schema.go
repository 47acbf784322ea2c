package normalizer

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// invoiceSchema describes the shape the prompt asks for. It is only used to report
// drift; coercion decides what ends up in the record.
const invoiceSchema = `{
  "type": "object",
  "properties": {
    "numeroFactura": {"type": ["string", "null"]},
    "fecha":         {"type": ["string", "null"], "pattern": "^\\d{2}/\\d{2}/\\d{4}$"},
    "cliente":       {"type": ["string", "null"]},
    "importeTotal":  {"type": ["number", "null"]},
    "moneda":        {"type": ["string", "null"]},
    "expediciones": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "expedicion":   {"type": ["string", "null"]},
          "fecha":        {"type": ["string", "null"], "pattern": "^\\d{2}/\\d{2}/\\d{4}$"},
          "remitente":    {"type": ["string", "null"]},
          "destinatario": {"type": ["string", "null"]},
          "bultos":       {"type": ["integer", "null"], "minimum": 0},
          "peso":         {"type": ["number", "null"], "minimum": 0},
          "volumen":      {"type": ["number", "null"], "minimum": 0}
        }
      }
    }
  },
  "required": ["numeroFactura", "fecha", "cliente", "importeTotal", "moneda", "expediciones"]
}`

// maxSchemaWarnings caps how many findings are reported per object.
const maxSchemaWarnings = 20

type schemaChecker struct {
	schema *jsonschema.Schema
}

func newSchemaChecker() (*schemaChecker, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("invoice.json", strings.NewReader(invoiceSchema)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("invoice.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &schemaChecker{schema: schema}, nil
}

// check validates one decoded object and returns its findings as sorted warnings.
func (c *schemaChecker) check(obj map[string]interface{}) []string {
	// Round-trip so the validator sees plain float64 numbers.
	b, err := json.Marshal(obj)
	if err != nil {
		return []string{fmt.Sprintf("schema check skipped: %v", err)}
	}
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return []string{fmt.Sprintf("schema check skipped: %v", err)}
	}

	err = c.schema.Validate(v)
	if err == nil {
		return nil
	}
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []string{fmt.Sprintf("schema check failed: %v", err)}
	}

	var out []string
	collectLeaves(verr, &out)
	sort.Strings(out)
	if len(out) > maxSchemaWarnings {
		out = append(out[:maxSchemaWarnings], fmt.Sprintf("%d more schema findings omitted", len(out)-maxSchemaWarnings))
	}
	return out
}

func collectLeaves(e *jsonschema.ValidationError, out *[]string) {
	if len(e.Causes) == 0 {
		loc := e.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		*out = append(*out, fmt.Sprintf("schema: %s: %s", loc, e.Message))
		return
	}
	for _, c := range e.Causes {
		collectLeaves(c, out)
	}
}
