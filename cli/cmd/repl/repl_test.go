package repl

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/fncall/log"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

func newTestModel(t *testing.T) model {
	t.Helper()

	history := NewHistory(filepath.Join(t.TempDir(), baseHistory))

	return newModel(t.Context(), NewSession(log.Logger{}), history, log.Logger{})
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func key(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

func press(m model, msgs ...tea.Msg) model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(model)
	}

	return m
}

func TestModel_Evaluate(t *testing.T) {
	m := newTestModel(t)

	m = press(m, runes(`function greet() { println("hi"); }`), key(tea.KeyEnter))

	if m.input.Value() != "" {
		t.Errorf("expected input cleared, got %q", m.input.Value())
	}

	if names := m.session.Names(); len(names) != 1 || names[0] != "greet" {
		t.Errorf("unexpected session names %q", names)
	}

	if m.history.Len() != 1 {
		t.Errorf("expected 1 history entry, got %d", m.history.Len())
	}
}

func TestModel_TabCompletion(t *testing.T) {
	m := newTestModel(t)

	if _, err := m.session.Eval(t.Context(), `function greet() {} function green() {}`); err != nil {
		t.Fatal(err)
	}

	m = press(m, runes("gre"))

	if len(m.matches) != 2 {
		t.Fatalf("expected 2 matches, got %v", m.matches)
	}

	m = press(m, key(tea.KeyTab))
	first := m.input.Value()

	m = press(m, key(tea.KeyTab))
	second := m.input.Value()

	if first == second || !strings.HasPrefix(first, "gre") || !strings.HasPrefix(second, "gre") {
		t.Errorf("expected to cycle between candidates, got %q then %q", first, second)
	}

	m = press(m, key(tea.KeyShiftTab))
	if m.input.Value() != first {
		t.Errorf("expected Shift+Tab to return to %q, got %q", first, m.input.Value())
	}

	m = press(m, key(tea.KeyEsc))
	if m.input.Value() != "gre" || m.tabActive {
		t.Errorf("expected Esc to restore %q, got %q", "gre", m.input.Value())
	}
}

func TestModel_SoleCandidate(t *testing.T) {
	m := newTestModel(t)

	m = press(m, runes("prin"), key(tea.KeyTab))

	if m.input.Value() != "println" {
		t.Errorf("got %q", m.input.Value())
	}

	if m.matches != nil {
		t.Errorf("expected completion to be accepted, got %v", m.matches)
	}
}

func TestModel_NoCompletionInString(t *testing.T) {
	m := newTestModel(t)

	m = press(m, runes(`println("pri`))

	if len(m.matches) != 0 {
		t.Errorf("expected no completions in a string literal, got %v", m.matches)
	}
}

func TestModel_Commands(t *testing.T) {
	m := newTestModel(t)

	if _, err := m.session.Eval(t.Context(), `function f() {}`); err != nil {
		t.Fatal(err)
	}

	m = press(m, key(tea.KeyEsc))
	if m.mode != modeCtrl {
		t.Fatal("expected command mode")
	}

	if !strings.Contains(m.listFunctions(), "f() { }") {
		t.Errorf("unexpected list %q", m.listFunctions())
	}

	if !strings.Contains(m.dumpFunctions(), "FunctionDecl f") {
		t.Errorf("unexpected dump %q", m.dumpFunctions())
	}

	m = press(m, runes("reset"), key(tea.KeyEnter))
	if m.session.Len() != 0 {
		t.Error("expected reset to clear the session")
	}

	m = press(m, runes("quit"), key(tea.KeyEnter))
	if !m.quitting || m.View() != "" {
		t.Error("expected quit")
	}
}

func TestModel_Help(t *testing.T) {
	if strings.HasSuffix(helpMessage, "\n") {
		t.Error("help text must not end with a newline; tea.Println adds one")
	}

	m := newTestModel(t)

	m, cmd := m.executeCommand("help")
	if cmd == nil || m.quitting {
		t.Error("expected help to print without quitting")
	}
}

func TestModel_ModeKeepsInput(t *testing.T) {
	m := newTestModel(t)

	m = press(m, runes("abc"), key(tea.KeyEsc), runes("he"), key(tea.KeyEsc))

	if m.mode != modeEval || m.input.Value() != "abc" {
		t.Errorf("expected eval input restored, got mode %d %q", m.mode, m.input.Value())
	}

	m = press(m, key(tea.KeyEsc))
	if m.input.Value() != "he" {
		t.Errorf("expected command input restored, got %q", m.input.Value())
	}
}

func TestModel_History(t *testing.T) {
	m := newTestModel(t)

	m = press(m,
		runes(`println("one");`), key(tea.KeyEnter),
		key(tea.KeyEsc), runes("list"), key(tea.KeyEnter),
		key(tea.KeyEsc), runes(`println("two");`), key(tea.KeyEnter),
	)

	if m.history.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", m.history.Len())
	}

	m = press(m, key(tea.KeyUp))
	if m.input.Value() != `println("two");` || m.mode != modeEval {
		t.Errorf("got %q in mode %d", m.input.Value(), m.mode)
	}

	m = press(m, key(tea.KeyUp))
	if m.input.Value() != "list" || m.mode != modeCtrl {
		t.Errorf("expected mode to follow the entry, got %q in mode %d", m.input.Value(), m.mode)
	}

	m = press(m, key(tea.KeyDown), key(tea.KeyDown))
	if m.input.Value() != "" || m.historyIdx != m.history.Len() {
		t.Errorf("expected to step past the newest entry, got %q", m.input.Value())
	}

	m = press(m, key(tea.KeyShiftUp), key(tea.KeyShiftUp))
	if m.input.Value() != `println("one");` {
		t.Errorf("expected same-mode history, got %q", m.input.Value())
	}
}

func TestModel_AltHistory(t *testing.T) {
	m := newTestModel(t)

	m = press(m,
		key(tea.KeyEsc), runes("list"), key(tea.KeyEnter),
		key(tea.KeyEsc), runes(`f();`), key(tea.KeyEnter),
		runes("draft"),
	)

	m = press(m, tea.KeyMsg{Type: tea.KeyUp, Alt: true})
	if m.input.Value() != "list" || m.mode != modeCtrl {
		t.Errorf("got %q in mode %d", m.input.Value(), m.mode)
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyDown, Alt: true})
	if m.input.Value() != "draft" || m.mode != modeEval {
		t.Errorf("expected original input restored, got %q in mode %d", m.input.Value(), m.mode)
	}
}

func TestModel_View(t *testing.T) {
	m := newTestModel(t)

	if !strings.Contains(m.View(), "Enter statements") {
		t.Errorf("expected eval hint in %q", m.View())
	}

	m = press(m, key(tea.KeyEsc))
	if !strings.Contains(m.View(), "help, list, dump, reset, clear, quit") {
		t.Errorf("expected command hint in %q", m.View())
	}

	m = press(m, runes("du"))
	if !strings.Contains(m.View(), "dump\n") {
		t.Errorf("expected completion bar in %q", m.View())
	}
}
