// Package validation checks task-descriptor payloads at the worker boundary
// before a submission run is admitted.
package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// taskSchema mirrors the external task-descriptor contract: the queue hands
// the worker a fully-resolved task, so everything the engine needs must be
// present up front.
const taskSchema = `{
	"type": "object",
	"required": ["applicationId", "userId", "jobUrl", "resumeFilePath", "applicantProfile"],
	"properties": {
		"applicationId": {"type": "integer", "minimum": 1},
		"userId": {"type": "string", "minLength": 1},
		"jobUrl": {"type": "string", "format": "uri", "minLength": 1},
		"resumeFilePath": {"type": "string", "minLength": 1},
		"applicantProfile": {
			"type": "object",
			"additionalProperties": {"type": "string"}
		},
		"credentials": {
			"type": "object",
			"additionalProperties": {"type": "string"}
		}
	}
}`

// ValidateTask validates a raw task descriptor against the contract schema.
func ValidateTask(raw []byte) error {
	schemaLoader := gojsonschema.NewStringLoader(taskSchema)
	documentLoader := gojsonschema.NewBytesLoader(raw)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("task schema validation: %w", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	return fmt.Errorf("invalid task descriptor: %s", strings.Join(msgs, "; "))
}
