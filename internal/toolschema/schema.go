// Package toolschema translates between Tool Host descriptors and the
// completion endpoint's function-calling convention.
package toolschema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pandu992003/weather-project-copy2/internal/domain"
)

var emptyObjectSchema = json.RawMessage(`{"type":"object","properties":{}}`)

// ToCallingSchema maps descriptors one-to-one, in order, onto function
// declarations. Name collisions are passed through untouched.
func ToCallingSchema(descriptors []domain.ToolDescriptor) []domain.FunctionSpec {
	specs := make([]domain.FunctionSpec, 0, len(descriptors))
	for _, d := range descriptors {
		params := d.InputSchema
		if len(bytes.TrimSpace(params)) == 0 || bytes.Equal(bytes.TrimSpace(params), []byte("null")) {
			params = emptyObjectSchema
		}
		specs = append(specs, domain.FunctionSpec{
			Name:        d.Name,
			Description: d.Description,
			Parameters:  params,
		})
	}
	return specs
}

// ParseInvocation parses the argument text the model produced for one
// tool call. Blank text is an empty argument object. Numbers are kept as
// json.Number so integers survive the round trip unchanged.
func ParseInvocation(raw string) (map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		return map[string]any{}, nil
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedArguments, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: unexpected data after JSON value", domain.ErrMalformedArguments)
	}

	switch v := value.(type) {
	case map[string]any:
		return v, nil
	case nil:
		return map[string]any{}, nil
	default:
		return nil, fmt.Errorf("%w: arguments must be a JSON object, got %s", domain.ErrMalformedArguments, jsonKind(v))
	}
}

func jsonKind(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	case nil:
		return "null"
	}
	return fmt.Sprintf("%T", v)
}
