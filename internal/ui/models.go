// internal/ui/models.go

package ui

import (
	"fmt"
	"strings"

	"ixexplorer/internal/ui/messages"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// Evaluator runs one Tcl command on the server.
type Evaluator interface {
	Call(format string, args ...any) (string, error)
}

// KeyMap holds the console key bindings.
type KeyMap struct {
	Enter    key.Binding
	Quit     key.Binding
	Previous key.Binding
	Next     key.Binding
}

// DefaultKeyMap returns the default console bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "run"),
		),
		Quit: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("esc", "quit"),
		),
		Previous: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "previous"),
		),
		Next: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "next"),
		),
	}
}

// Model is an interactive Tcl console bound to one server.
type Model struct {
	keys     KeyMap
	eval     Evaluator
	title    string
	input    textinput.Model
	output   viewport.Model
	lines    []string
	history  []string
	histPos  int
	busy     bool
	ready    bool
	quitting bool
	width    int
	height   int
}

// NewModel returns a console that sends commands to eval.
func NewModel(eval Evaluator, title string) Model {
	ti := textinput.New()
	ti.Prompt = "% "
	ti.Placeholder = "Tcl command, q to quit"
	ti.Focus()
	return Model{
		keys:  DefaultKeyMap(),
		eval:  eval,
		title: title,
		input: ti,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Enter):
			return m.submit()
		case key.Matches(msg, m.keys.Previous):
			m.recall(-1)
			return m, nil
		case key.Matches(msg, m.keys.Next):
			m.recall(1)
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		h := msg.Height - 6
		if h < 1 {
			h = 1
		}
		if !m.ready {
			m.output = viewport.New(msg.Width-4, h)
			m.ready = true
		} else {
			m.output.Width = msg.Width - 4
			m.output.Height = h
		}
		m.refresh()
		return m, nil

	case messages.ResultMsg:
		m.busy = false
		if msg.Result != "" {
			m.appendLine(ResultStyle.Render(msg.Result))
		}
		return m, nil

	case messages.ErrorMsg:
		m.busy = false
		m.appendLine(ErrorStyle.Render("ERROR: " + msg.Err.Error()))
		return m, nil
	}

	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	line := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")
	if line == "" || m.busy {
		return m, nil
	}
	if line == "q" || line == "quit" || line == "exit" {
		m.quitting = true
		return m, tea.Quit
	}
	m.history = append(m.history, line)
	m.histPos = len(m.history)
	m.appendLine(CommandStyle.Render("% " + line))
	m.busy = true
	return m, m.run(line)
}

func (m Model) run(line string) tea.Cmd {
	eval := m.eval
	return func() tea.Msg {
		result, err := eval.Call(line)
		if err != nil {
			return messages.ErrorMsg{Command: line, Err: err}
		}
		return messages.ResultMsg{Command: line, Result: result}
	}
}

func (m *Model) recall(step int) {
	if len(m.history) == 0 {
		return
	}
	pos := m.histPos + step
	if pos < 0 {
		pos = 0
	}
	if pos >= len(m.history) {
		m.histPos = len(m.history)
		m.input.SetValue("")
		return
	}
	m.histPos = pos
	m.input.SetValue(m.history[pos])
	m.input.CursorEnd()
}

func (m *Model) appendLine(line string) {
	m.lines = append(m.lines, line)
	m.refresh()
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.output.SetContent(strings.Join(m.lines, "\n"))
	m.output.GotoBottom()
}

// Lines returns the scrollback.
func (m Model) Lines() []string {
	return m.lines
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString(TitleStyle.Render(m.title))
	b.WriteString("\n")
	if m.ready {
		b.WriteString(WindowStyle.Render(m.output.View()))
	} else {
		b.WriteString(strings.Join(m.lines, "\n"))
	}
	b.WriteString("\n")
	b.WriteString(InputStyle.Render(m.input.View()))
	status := fmt.Sprintf("%d commands", len(m.history))
	if m.busy {
		status = "running..."
	}
	b.WriteString("\n")
	b.WriteString(DescriptionStyle.Render(status + "  enter: run  ↑/↓: history  esc: quit"))
	return b.String()
}
