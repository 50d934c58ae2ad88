package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ValidateJSONAgainstSchema checks a repaired structure literal against the
// expected document schema before the typed decode runs. The schema is built
// per call; both document schemas are small enough that compilation cost is
// negligible next to the completion round-trip.
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal document schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("document.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add document schema: %w", err)
	}
	schema, err := compiler.Compile("document.json")
	if err != nil {
		return fmt.Errorf("compile document schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("decode repaired literal: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("literal does not match document schema: %w", err)
	}
	return nil
}
