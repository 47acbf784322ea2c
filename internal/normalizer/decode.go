package normalizer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

var errNoJSONValue = errors.New("response contains no JSON value")

// decodeDocuments strictly parses the model output. The output may hold one object,
// an array of objects, or several JSON values back to back. Anything that is not
// valid JSON from start to end is an error.
func decodeDocuments(raw string) ([]interface{}, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var values []interface{}
	for {
		var v interface{}
		err := dec.Decode(&v)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return nil, errNoJSONValue
	}
	return values, nil
}

// flattenObjects collects the invoice objects out of the decoded values.
// Values that cannot be an invoice are reported as warnings.
func flattenObjects(values []interface{}) ([]map[string]interface{}, []string) {
	var objects []map[string]interface{}
	var warnings []string
	for i, v := range values {
		switch t := v.(type) {
		case map[string]interface{}:
			objects = append(objects, t)
		case []interface{}:
			for j, elem := range t {
				if obj, ok := elem.(map[string]interface{}); ok {
					objects = append(objects, obj)
					continue
				}
				warnings = append(warnings, fmt.Sprintf("value %d element %d is %s, not an invoice object; ignored", i, j, jsonKind(elem)))
			}
		default:
			warnings = append(warnings, fmt.Sprintf("value %d is %s, not an invoice object; ignored", i, jsonKind(v)))
		}
	}
	return objects, warnings
}

func jsonKind(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "a boolean"
	case json.Number:
		return "a number"
	case string:
		return "a string"
	case []interface{}:
		return "an array"
	case map[string]interface{}:
		return "an object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
