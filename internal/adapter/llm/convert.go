package llm

import (
	"github.com/pandu992003/weather-project-copy2/internal/domain"
)

// ToChatMessages converts conversation history into wire messages.
func ToChatMessages(history []domain.Message) []ChatMessage {
	out := make([]ChatMessage, 0, len(history))
	for _, m := range history {
		wire := ChatMessage{
			Role:       string(m.Role),
			ToolCallID: m.ToolCallID,
		}
		content := m.Content
		if m.Role != domain.RoleAssistant || content != "" || len(m.ToolCalls) == 0 {
			wire.Content = &content
		}
		for _, tc := range m.ToolCalls {
			wire.ToolCalls = append(wire.ToolCalls, ToolCall{
				ID:   tc.ID,
				Type: "function",
				Function: ToolCallFunction{
					Name:      tc.Name,
					Arguments: tc.Arguments,
				},
			})
		}
		out = append(out, wire)
	}
	return out
}

// FromChatMessage converts an assistant wire message into a domain message.
func FromChatMessage(msg *ChatMessage) domain.Message {
	out := domain.AssistantMessage(msg.Text(), nil)
	for _, tc := range msg.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, domain.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return out
}

// ToTools wraps function declarations into the wire tool shape.
func ToTools(specs []domain.FunctionSpec) []Tool {
	if len(specs) == 0 {
		return nil
	}
	tools := make([]Tool, 0, len(specs))
	for _, spec := range specs {
		tools = append(tools, Tool{
			Type: "function",
			Function: ToolFunction{
				Name:        spec.Name,
				Description: spec.Description,
				Parameters:  spec.Parameters,
			},
		})
	}
	return tools
}
