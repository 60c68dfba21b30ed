package policy

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/open-policy-agent/opa/rego"
)

// Decisions returned by the policy.
const (
	DecisionAllow = "allow"
	DecisionBlock = "block"
)

// Input is the document a tool call is evaluated against.
type Input struct {
	ToolName    string         `json:"tool_name"`
	Args        map[string]any `json:"args"`
	SessionID   string         `json:"session_id,omitempty"`
	TurnID      string         `json:"turn_id,omitempty"`
	DeniedTools []string       `json:"denied_tools"`
}

// Engine is the OPA policy engine.
type Engine struct {
	query       rego.PreparedEvalQuery
	deniedTools []string
}

// NewEngine creates a new policy engine with the given policy content.
// deniedTools is passed to every evaluation as input.denied_tools.
func NewEngine(ctx context.Context, policyContent string, deniedTools []string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.tool_policy.result"),
		rego.Module("tool_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	if deniedTools == nil {
		deniedTools = []string{}
	}
	return &Engine{query: query, deniedTools: deniedTools}, nil
}

// Evaluate checks the tool policy.
// Returns: decision (allow, block), reason (optional), error
func (e *Engine) Evaluate(ctx context.Context, input Input) (string, string, error) {
	if input.DeniedTools == nil {
		input.DeniedTools = e.deniedTools
	}
	if input.Args == nil {
		input.Args = map[string]any{}
	}

	doc, err := toDocument(input)
	if err != nil {
		return "", "", fmt.Errorf("failed to build policy input: %w", err)
	}

	results, err := e.query.Eval(ctx, rego.EvalInput(doc))
	if err != nil {
		return "", "", fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return DecisionAllow, "default", nil
	}

	switch val := results[0].Expressions[0].Value.(type) {
	case string:
		return val, "", nil
	case map[string]interface{}:
		decision, _ := val["decision"].(string)
		reason, _ := val["reason"].(string)
		if decision == "" {
			return DecisionAllow, "policy returned no decision", nil
		}
		return decision, reason, nil
	}
	return DecisionAllow, "unexpected return type", nil
}

// toDocument round-trips the input through JSON so numbers and nested
// values reach rego as plain JSON types.
func toDocument(input Input) (interface{}, error) {
	data, err := json.Marshal(input)
	if err != nil {
		return nil, err
	}
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// DefaultPolicy is the default policy content.
const DefaultPolicy = `
package tool_policy

default result = {"decision": "allow", "reason": ""}

# Tools listed in DENIED_TOOLS are never invoked.
result = {"decision": "block", "reason": msg} {
	input.denied_tools[_] == input.tool_name
	msg := sprintf("tool %s is disabled by policy", [input.tool_name])
}
`
