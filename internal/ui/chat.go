// Package ui renders the interactive chat console.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/helmdeck/helmdeck/internal/bus"
	"github.com/helmdeck/helmdeck/internal/chat"
)

var (
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)
	taskStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	statusConnected    = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("2")).Padding(0, 1)
	statusConnecting   = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("3")).Padding(0, 1)
	statusDisconnected = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("1")).Padding(0, 1)
)

// BusEventMsg wraps a bus event for the tea runtime. The CLI subscribes to
// the bus and forwards each event with Program.Send.
type BusEventMsg struct {
	Event *bus.Event
}

// Model is the chat console's tea model.
type Model struct {
	session *chat.Session

	viewport viewport.Model
	input    textinput.Model

	state          chat.State
	conversationID string
	notice         string
	ready          bool
	width          int
}

// NewModel creates the console model for an opened session.
func NewModel(session *chat.Session, conversationID string) Model {
	ti := textinput.New()
	ti.Placeholder = "Type a message..."
	ti.Focus()
	ti.CharLimit = 4000

	return Model{
		session:        session,
		input:          ti,
		conversationID: conversationID,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		vpHeight := msg.Height - 4
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = vpHeight
		}
		m.refreshTimeline()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.session.Close()
			return m, tea.Quit
		case tea.KeyEnter:
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			if !m.session.Send(text) {
				m.notice = "not connected, message not sent"
				return m, nil
			}
			m.notice = ""
			m.input.Reset()
			m.refreshTimeline()
			return m, nil
		}

	case BusEventMsg:
		switch msg.Event.Type {
		case bus.EventStateChanged:
			m.state = m.session.State()
		case bus.EventTimelineUpdated:
			m.refreshTimeline()
		case bus.EventConversationMinted:
			m.conversationID = msg.Event.ConversationID
		}
		return m, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "starting..."
	}
	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusBar())
	b.WriteString("\n")
	b.WriteString(m.input.View())
	if m.notice != "" {
		b.WriteString("\n" + dimStyle.Render(m.notice))
	}
	return b.String()
}

func (m *Model) refreshTimeline() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(RenderTimeline(m.session.Timeline().Snapshot(), m.viewport.Width))
	m.viewport.GotoBottom()
}

func (m Model) statusBar() string {
	conv := m.conversationID
	if conv == "" {
		conv = "new conversation"
	}
	label := fmt.Sprintf(" %s | %s ", m.state, conv)
	switch m.state {
	case chat.StateConnected:
		return statusConnected.Render(label)
	case chat.StateConnecting:
		return statusConnecting.Render(label)
	default:
		return statusDisconnected.Render(label)
	}
}

// RenderTimeline formats timeline entries for display, one block per message,
// wrapped to the given width.
func RenderTimeline(msgs []chat.Message, width int) string {
	if len(msgs) == 0 {
		return dimStyle.Render("No messages yet.")
	}
	if width <= 0 {
		width = 80
	}
	var b strings.Builder
	for i, msg := range msgs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		label := userStyle.Render("you")
		if msg.Role == chat.RoleAssistant {
			label = assistantStyle.Render("assistant")
			if msg.TaskResult {
				label += " " + taskStyle.Render("[task]")
			}
		}
		stamp := ""
		if !msg.Timestamp.IsZero() {
			stamp = " " + dimStyle.Render(msg.Timestamp.Format("15:04:05"))
		}
		b.WriteString(label + stamp + "\n")
		b.WriteString(lipgloss.NewStyle().Width(width).Render(msg.Content))
	}
	return b.String()
}
