package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pandu992003/weather-project-copy2/internal/domain"
	"github.com/pandu992003/weather-project-copy2/internal/protocol"
	"github.com/pandu992003/weather-project-copy2/internal/render"
)

type connClosedMsg struct{ err error }

type sendDoneMsg struct{ err error }

// sender delivers user input to the agent.
type sender interface {
	SendInput(content string) error
}

// line is one transcript item: a message or a failure notice.
type line struct {
	msg     *domain.Message
	failure string
}

type model struct {
	client    sender
	inbound   <-chan any
	sessionID string

	theme    render.Theme
	header   lipgloss.Style
	status   lipgloss.Style
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	lines         []line
	rendered      int
	renderedWidth int

	busy   bool
	closed bool
	width  int
	height int
}

func newModel(client sender, inbound <-chan any, sessionID string, history []domain.Message) model {
	input := textinput.New()
	input.Prompt = "❯ "
	input.Placeholder = "Ask about the weather..."
	input.CharLimit = 4000
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Points
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#05ffa1"))

	m := model{
		client:    client,
		inbound:   inbound,
		sessionID: sessionID,
		theme:     render.DefaultTheme(),
		header: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#01cdfe")).
			Padding(0, 1).
			Bold(true),
		status:   lipgloss.NewStyle().Foreground(lipgloss.Color("#9ca3d8")),
		input:    input,
		viewport: viewport.New(80, 20),
		spinner:  sp,
	}
	m.appendMessages(history)
	m.renderTranscript()
	return m
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, waitInbound(m.inbound))
}

func waitInbound(ch <-chan any) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return connClosedMsg{}
		}
		return msg
	}
}

func (m model) sendCmd(content string) tea.Cmd {
	return func() tea.Msg {
		return sendDoneMsg{err: m.client.SendInput(content)}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "pgup":
			m.viewport.LineUp(max(m.viewport.Height/2, 1))
		case "pgdown":
			m.viewport.LineDown(max(m.viewport.Height/2, 1))
		case "enter":
			content := strings.TrimSpace(m.input.Value())
			if content == "" || m.busy || m.closed {
				break
			}
			if content == "/quit" {
				return m, tea.Quit
			}
			m.input.Reset()
			m.busy = true
			cmds = append(cmds, m.sendCmd(content))
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
	case sendDoneMsg:
		if msg.err != nil {
			m.busy = false
			m.addFailure("", "send failed: "+msg.err.Error())
		}
	case *protocol.TurnStartedMessage:
		m.busy = true
		cmds = append(cmds, waitInbound(m.inbound))
	case *protocol.TurnResultMessage:
		m.busy = false
		m.appendMessages(msg.Messages)
		if msg.Error != nil {
			m.addFailure(msg.Error.Code, msg.Error.Message)
		}
		cmds = append(cmds, waitInbound(m.inbound))
	case *protocol.ErrorMessage:
		if msg.Code != protocol.ErrorCodeTurnInFlight {
			m.busy = false
		}
		m.addFailure(msg.Code, msg.Message)
		cmds = append(cmds, waitInbound(m.inbound))
	case *protocol.HelloAckMessage:
		cmds = append(cmds, waitInbound(m.inbound))
	case connClosedMsg:
		m.closed = true
		m.busy = false
		reason := "connection closed"
		if msg.err != nil {
			reason = msg.err.Error()
		}
		m.addFailure("disconnected", reason)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	if _, isKey := msg.(tea.KeyMsg); !isKey {
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	if len(m.lines) != m.rendered || m.width != m.renderedWidth {
		m.renderTranscript()
	}
	return m, tea.Batch(cmds...)
}

func (m *model) appendMessages(msgs []domain.Message) {
	for i := range msgs {
		msg := msgs[i]
		m.lines = append(m.lines, line{msg: &msg})
	}
}

func (m *model) addFailure(code, message string) {
	m.lines = append(m.lines, line{failure: m.theme.FailureLine(code, message)})
}

func (m *model) resize() {
	headerHeight := 3
	inputHeight := 2
	m.viewport.Width = m.width
	m.viewport.Height = max(m.height-headerHeight-inputHeight, 3)
	m.input.Width = max(m.width-4, 10)
}

// transcript renders messages with the chat rules; failures are kept in
// their place between messages.
func (m *model) transcript() string {
	var parts []string
	var pending []domain.Message
	flush := func() {
		if len(pending) > 0 {
			if text := m.theme.Transcript(pending, m.width); text != "" {
				parts = append(parts, text)
			}
			pending = nil
		}
	}
	for _, l := range m.lines {
		if l.msg != nil {
			pending = append(pending, *l.msg)
			continue
		}
		flush()
		parts = append(parts, l.failure)
	}
	flush()
	return strings.Join(parts, "\n\n")
}

func (m *model) renderTranscript() {
	m.viewport.SetContent(m.transcript())
	m.viewport.GotoBottom()
	m.rendered = len(m.lines)
	m.renderedWidth = m.width
}

func (m model) View() string {
	title := m.header.Render(fmt.Sprintf("Weather Agent · session %s", m.sessionID))
	status := m.status.Render("enter to send · esc to quit")
	if m.busy {
		status = m.spinner.View() + " " + m.status.Render("thinking...")
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		m.viewport.View(),
		m.input.View(),
		status,
	)
}
