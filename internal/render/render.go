// Package render turns conversation history into styled terminal text.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pandu992003/weather-project-copy2/internal/domain"
)

// Kind classifies a visible transcript entry.
type Kind string

const (
	KindUser        Kind = "user"
	KindAssistant   Kind = "assistant"
	KindPlaceholder Kind = "placeholder"
	KindToolOutput  Kind = "tool_output"
)

// Entry is one visible item of the transcript.
type Entry struct {
	Kind Kind
	Text string
}

// Placeholder is shown for an assistant message that only requests tools.
func Placeholder(toolNames []string) string {
	return fmt.Sprintf("[Calling tools: %s...]", strings.Join(toolNames, ", "))
}

// Entries applies the display rules to a history. Messages with nothing to
// show are dropped; tool-only assistant messages become a placeholder.
func Entries(msgs []domain.Message) []Entry {
	out := make([]Entry, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case domain.RoleTool:
			out = append(out, Entry{Kind: KindToolOutput, Text: m.Content})
		case domain.RoleAssistant:
			switch {
			case m.Content != "":
				out = append(out, Entry{Kind: KindAssistant, Text: m.Content})
			case m.HasToolCalls():
				out = append(out, Entry{Kind: KindPlaceholder, Text: Placeholder(m.ToolCallNames())})
			}
		default:
			if m.Content != "" {
				out = append(out, Entry{Kind: KindUser, Text: m.Content})
			}
		}
	}
	return out
}

// Theme holds the styles of the chat transcript.
type Theme struct {
	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	Body           lipgloss.Style
	Placeholder    lipgloss.Style
	ToolBox        lipgloss.Style
	ToolTitle      lipgloss.Style
	Failure        lipgloss.Style
}

// DefaultTheme returns the default colour scheme.
func DefaultTheme() Theme {
	mint := lipgloss.Color("#05ffa1")
	blue := lipgloss.Color("#01cdfe")
	pink := lipgloss.Color("#ff71ce")
	muted := lipgloss.Color("#9ca3d8")

	return Theme{
		UserLabel:      lipgloss.NewStyle().Foreground(mint).Bold(true),
		AssistantLabel: lipgloss.NewStyle().Foreground(blue).Bold(true),
		Body:           lipgloss.NewStyle().PaddingLeft(2),
		Placeholder:    lipgloss.NewStyle().Foreground(muted).Italic(true).PaddingLeft(2),
		ToolBox: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(blue).
			Padding(0, 1).
			MarginLeft(2),
		ToolTitle: lipgloss.NewStyle().Foreground(blue).Bold(true),
		Failure:   lipgloss.NewStyle().Foreground(pink).Bold(true),
	}
}

// Entry renders one entry. A positive width wraps the body.
func (t Theme) Entry(e Entry, width int) string {
	body := t.Body
	if width > 4 {
		body = body.Width(width - 2)
	}
	switch e.Kind {
	case KindUser:
		return t.UserLabel.Render("You") + "\n" + body.Render(e.Text)
	case KindPlaceholder:
		return t.AssistantLabel.Render("Assistant") + "\n" + t.Placeholder.Render(e.Text)
	case KindToolOutput:
		box := t.ToolBox
		if width > 8 {
			box = box.Width(width - 6)
		}
		return t.AssistantLabel.Render("Assistant") + "\n" + box.Render(t.ToolTitle.Render("Tool Output")+"\n\n"+e.Text)
	default:
		return t.AssistantLabel.Render("Assistant") + "\n" + body.Render(e.Text)
	}
}

// Transcript renders a whole history, one blank line between entries.
func (t Theme) Transcript(msgs []domain.Message, width int) string {
	entries := Entries(msgs)
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, t.Entry(e, width))
	}
	return strings.Join(parts, "\n\n")
}

// FailureLine renders a visible turn failure.
func (t Theme) FailureLine(code, message string) string {
	if code == "" {
		return t.Failure.Render("Error: " + message)
	}
	return t.Failure.Render(fmt.Sprintf("Error (%s): %s", code, message))
}
