package ui

import (
	"errors"
	"strings"
	"testing"

	"ixexplorer/internal/ui/messages"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"
)

type fakeEval struct {
	calls  []string
	result string
	err    error
}

func (f *fakeEval) Call(format string, args ...any) (string, error) {
	f.calls = append(f.calls, format)
	return f.result, f.err
}

func typeLine(m Model, line string) Model {
	for _, r := range line {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(Model)
	}
	return m
}

func TestSubmitRunsCommand(t *testing.T) {
	eval := &fakeEval{result: "9.10"}
	m := typeLine(NewModel(eval, "lab"), "version cget -ixTclHALVersion")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	if cmd == nil {
		t.Fatal("enter returned no command")
	}
	msg := cmd()
	if diff := cmp.Diff(messages.ResultMsg{Command: "version cget -ixTclHALVersion", Result: "9.10"}, msg); diff != "" {
		t.Errorf("message mismatch (-want +got):\n%s", diff)
	}
	next, _ = m.Update(msg)
	m = next.(Model)

	if diff := cmp.Diff([]string{"version cget -ixTclHALVersion"}, eval.calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
	lines := m.Lines()
	if len(lines) != 2 || !strings.Contains(lines[1], "9.10") {
		t.Errorf("Lines() = %q", lines)
	}
}

func TestErrorIsShown(t *testing.T) {
	m := NewModel(&fakeEval{}, "lab")
	next, _ := m.Update(messages.ErrorMsg{Command: "bad", Err: errors.New("invalid command name")})
	lines := next.(Model).Lines()
	if len(lines) != 1 || !strings.Contains(lines[0], "ERROR: invalid command name") {
		t.Errorf("Lines() = %q", lines)
	}
}

func TestQuitCommand(t *testing.T) {
	eval := &fakeEval{}
	m := typeLine(NewModel(eval, "lab"), "q")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
	if len(eval.calls) != 0 {
		t.Errorf("q reached the server: %v", eval.calls)
	}
}

func TestHistoryRecall(t *testing.T) {
	m := NewModel(&fakeEval{}, "lab")
	for _, line := range []string{"set a 1", "set b 2"} {
		m = typeLine(m, line)
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		next, _ = next.Update(messages.ResultMsg{Command: line})
		m = next.(Model)
	}
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = next.(Model)
	if got := m.input.Value(); got != "set b 2" {
		t.Errorf("first recall = %q", got)
	}
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = next.(Model)
	if got := m.input.Value(); got != "set a 1" {
		t.Errorf("second recall = %q", got)
	}
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyDown})
	if got := next.(Model).input.Value(); got != "" {
		t.Errorf("past end = %q, want empty", got)
	}
}
