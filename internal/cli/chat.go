package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/duhenri9/solo-in-public/internal/assistant"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat with the Pro-founder Agent",
	RunE:  runChat,
}

// chatTheme holds the color scheme for the chat display.
type chatTheme struct {
	User      lipgloss.Color
	Assistant lipgloss.Color
	Meta      lipgloss.Color
	Error     lipgloss.Color
}

var defaultChatTheme = chatTheme{
	User:      lipgloss.Color("#5FAFD7"), // light blue
	Assistant: lipgloss.Color("#00D787"), // green
	Meta:      lipgloss.Color("#6C6C6C"), // dim gray
	Error:     lipgloss.Color("#FF005F"), // red
}

func (t chatTheme) userStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.User).Bold(true)
}

func (t chatTheme) assistantStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Assistant)
}

func (t chatTheme) metaStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Meta).Italic(true)
}

func (t chatTheme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

// chatLine is one rendered exchange entry.
type chatLine struct {
	author string
	text   string
	meta   string
}

// replyMsg carries the assistant response back into the update loop.
type replyMsg struct {
	resp assistant.Response
	err  error
}

// chatModel is the bubbletea model for the interactive chat.
type chatModel struct {
	input    textinput.Model
	lines    []chatLine
	theme    chatTheme
	waiting  bool
	quitting bool
	err      error
}

func newChatModel() chatModel {
	input := textinput.New()
	input.Placeholder = "Escreva sua mensagem..."
	input.CharLimit = 2000
	input.Focus()

	return chatModel{
		input: input,
		theme: defaultChatTheme,
	}
}

func (m chatModel) Init() tea.Cmd {
	return nil
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			message := strings.TrimSpace(m.input.Value())
			if m.waiting || message == "" {
				return m, nil
			}
			m.lines = append(m.lines, chatLine{author: "you", text: message})
			m.input.SetValue("")
			m.waiting = true
			return m, sendChat(message)
		}

	case replyMsg:
		m.waiting = false
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		line := chatLine{
			author: "agent",
			text:   msg.resp.Message,
			meta:   fmt.Sprintf("model %s", msg.resp.Model),
		}
		if msg.resp.HandoverTriggered {
			line.meta += ", handover queued"
		}
		m.lines = append(m.lines, line)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m chatModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

func (m chatModel) renderContent() string {
	var b strings.Builder

	b.WriteString(m.theme.metaStyle().Render(fmt.Sprintf("session %s (esc to quit)", sessionID)))
	b.WriteString("\n\n")

	for _, line := range m.lines {
		if line.author == "you" {
			b.WriteString(m.theme.userStyle().Render("você: "))
		} else {
			b.WriteString(m.theme.assistantStyle().Render("agent: "))
		}
		b.WriteString(line.text)
		b.WriteString("\n")
		if line.meta != "" {
			b.WriteString(m.theme.metaStyle().Render("  [" + line.meta + "]"))
			b.WriteString("\n")
		}
	}

	if m.err != nil {
		b.WriteString(m.theme.errorStyle().Render(fmt.Sprintf("\n✗ %s\n", m.err)))
		return b.String()
	}

	if m.waiting {
		b.WriteString(m.theme.metaStyle().Render("\npensando...\n"))
	} else {
		b.WriteString("\n" + m.input.View() + "\n")
	}
	return b.String()
}

// sendChat posts the message in a command so Update never blocks.
func sendChat(message string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		resp, err := api.Chat(ctx, sessionID, message, locale)
		return replyMsg{resp: resp, err: err}
	}
}

func runChat(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("chat needs an interactive terminal, use 'solo ask' instead")
	}

	p := tea.NewProgram(newChatModel())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chat ui: %w", err)
	}
	return nil
}
