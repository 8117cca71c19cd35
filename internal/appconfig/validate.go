// internal/appconfig/validate.go
package appconfig

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mwiater/ollabench/internal/benchmark"
	"github.com/xeipuuv/gojsonschema"
)

const tasksSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["name", "prompt"],
    "additionalProperties": false,
    "properties": {
      "name": {"type": "string", "minLength": 1},
      "prompt": {"type": "string"},
      "max_tokens": {"type": "integer", "minimum": 1}
    }
  }
}`

var tasksSchemaLoader = gojsonschema.NewStringLoader(tasksSchema)

// ValidateTasks checks tasks against the task schema.
func ValidateTasks(tasks []benchmark.Task) error {
	raw, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("marshal tasks for validation: %w", err)
	}
	return validateTaskDocument(raw)
}

func validateTaskDocument(raw []byte) error {
	result, err := gojsonschema.Validate(tasksSchemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}
	var details []string
	for _, desc := range result.Errors() {
		details = append(details, desc.String())
	}
	return fmt.Errorf("tasks failed validation: %s", strings.Join(details, "; "))
}
