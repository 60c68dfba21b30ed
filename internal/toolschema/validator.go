package toolschema

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/pandu992003/weather-project-copy2/internal/domain"
)

// Validate checks args against a tool's input schema. A schema that cannot
// be parsed or resolved is not checked here; the Tool Host still validates
// the call.
func Validate(inputSchema json.RawMessage, args map[string]any) error {
	resolved := resolve(inputSchema)
	if resolved == nil {
		return nil
	}

	instance, err := plainJSON(args)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidArguments, err)
	}
	if err := resolved.Validate(instance); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidArguments, err)
	}
	return nil
}

func resolve(inputSchema json.RawMessage) *jsonschema.Resolved {
	if len(inputSchema) == 0 {
		return nil
	}
	var schema jsonschema.Schema
	if err := json.Unmarshal(inputSchema, &schema); err != nil {
		return nil
	}
	// Hosts often declare older drafts; the keywords used by tool schemas
	// validate the same under 2020-12.
	schema.Schema = ""
	resolved, err := schema.Resolve(nil)
	if err != nil {
		return nil
	}
	return resolved
}

// plainJSON re-decodes args without UseNumber. The validator types values
// by reflection, so json.Number would read as a string.
func plainJSON(args map[string]any) (map[string]any, error) {
	if args == nil {
		return map[string]any{}, nil
	}
	data, err := json.Marshal(args)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
