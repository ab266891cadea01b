package config

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Schema is the JSON schema every loaded config must satisfy.
const Schema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "name":    {"type": "string", "minLength": 1},
    "metrics": {"type": "boolean"},
    "tracing": {"type": "boolean"},
    "retry": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "attempts":    {"type": "integer", "minimum": 1},
        "backoff":     {"type": ["string", "number"]},
        "max_backoff": {"type": ["string", "number"]},
        "factor":      {"type": "number", "minimum": 1},
        "jitter":      {"type": "number", "minimum": 0, "maximum": 1}
      }
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(Schema)

// ValidationError lists every schema violation found in a config.
type ValidationError struct {
	Details []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid config: %s", strings.Join(e.Details, "; "))
}

// Validate checks cfg against Schema.
func Validate(cfg Config) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(cfg.Raw()))
	if err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return &ValidationError{Details: details}
	}
	return nil
}
