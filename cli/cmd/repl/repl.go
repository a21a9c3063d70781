package repl

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/fncall/lang"
	"github.com/ardnew/fncall/log"
)

const (
	evalPrompt = "➜ "
	ctrlPrompt = " :"
)

const helpMessage = `
: Commands (press Esc to toggle mode):

  help     Print this message
  list     List declared functions
  dump     Print the syntax tree of the declared functions
  reset    Forget every declared function
  clear    Clear screen
  quit     Exit REPL

Usage:
  Enter statements to evaluate them, e.g. println("hi");
  Declarations are kept for the rest of the session
  A declaration replaces an earlier one with the same name
  Press Tab / Shift-Tab to cycle through completions
  Press Esc to toggle between eval and command modes
  Use Up/Down arrows for history navigation (mode switches automatically)
  Use Shift+Up/Shift+Down for history navigation within the current mode
  Use Alt+Up/Alt+Down to browse command history only
  Press Ctrl+C on empty line or Ctrl+D to exit`

// inputMode selects how a submitted line is interpreted.
type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
)

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	matchStyle      = lipgloss.NewStyle().
			Foreground(lipgloss.Color("4")).
			Bold(true)
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
	selectedMatchStyle = selectedStyle.Bold(true)
)

func echo(mode inputMode, input string) tea.Cmd {
	if mode == modeCtrl {
		return tea.Println(ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(input))
	}

	return tea.Println(promptStyle.Render(evalPrompt) + inputStyle.Render(input))
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctx        context.Context
	input      textinput.Model
	session    *Session
	logger     log.Logger
	history    *History
	historyIdx int

	matches   fuzzy.Matches // ranked completions of the current word
	wordStart int
	wordEnd   int
	suggIdx   int // selected completion while tab-cycling
	tabActive bool
	preTab    textState // input before tab-cycling began

	altNav     bool // browsing command history with Alt+Up/Down
	altNavMode inputMode
	altNavText textState

	width    int
	quitting bool
	mode     inputMode
	saved    [2]textState // per-mode input kept across mode toggles
}

// textState is an input line and its cursor position.
type textState struct {
	text   string
	cursor int
}

// Run starts an interactive session. History is kept under cacheDir and
// opts are applied to every evaluated line.
func Run(
	ctx context.Context,
	cacheDir string,
	logger log.Logger,
	opts ...lang.Option,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	history := NewHistory(filepath.Join(cacheDir, baseHistory))
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "could not load history",
			slog.String("file", history.path),
			slog.Any("error", err))
	}

	logger.TraceContext(ctx, "repl start",
		slog.String("cache_dir", cacheDir),
		slog.Int("history", history.Len()))

	m := newModel(ctx, NewSession(logger, opts...), history, logger)

	_, err = tea.NewProgram(m, tea.WithContext(ctx)).Run()

	return err
}

const defaultWidth = 80

func newModel(
	ctx context.Context,
	session *Session,
	history *History,
	logger log.Logger,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(evalPrompt)
	ti.Focus()
	ti.CharLimit = 4096
	ti.Width = defaultWidth

	return model{
		ctx:        ctx,
		input:      ti,
		session:    session,
		logger:     logger,
		history:    history,
		historyIdx: history.Len(),
		suggIdx:    -1,
		width:      defaultWidth,
		mode:       modeEval,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(evalPrompt) - 2

		return m, nil
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")

	switch {
	case m.historyIdx < m.history.Len():
		pos := lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx + 1))
		b.WriteString(hintStyle.Render(fmt.Sprintf("%s/%d", pos, m.history.Len())))

	case strings.TrimSpace(m.input.Value()) == "":
		hint := "Enter statements or press Esc for commands"
		if m.mode == modeCtrl {
			hint = "Type: " + strings.Join(ctrlCommands, ", ") + " (press Esc to return)"
		}

		b.WriteString(hintStyle.Render(hint))

	default:
		suffix := "()"
		if m.mode == modeCtrl {
			suffix = ""
		}

		b.WriteString(renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width, suffix))
	}

	b.WriteString("\n")

	return b.String()
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(m.ctx, "repl keypress",
		slog.String("key", msg.String()))

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.tabActive = false
		m.altNav = false
		m.historyIdx = m.history.Len()
		refreshMatches(&m, false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		m.altNav = false

		if !m.tabActive || len(m.matches) == 0 {
			return m.executeInput()
		}

		// Lock in the current candidate without executing.
		m.tabActive = false
		refreshMatches(&m, true)

		return m, nil

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		if msg.Alt {
			return m.historyCtrl(-1), nil
		}

		return m.historyStep(-1, false), nil

	case tea.KeyDown:
		if msg.Alt {
			return m.historyCtrl(1), nil
		}

		return m.historyStep(1, false), nil

	case tea.KeyShiftUp:
		return m.historyStep(-1, true), nil

	case tea.KeyShiftDown:
		return m.historyStep(1, true), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.setText(m.preTab)
			refreshMatches(&m, false)

			return m, nil
		}

		m.altNav = false

		if m.mode == modeEval {
			return m.switchToMode(modeCtrl), nil
		}

		return m.switchToMode(modeEval), nil

	case tea.KeyRunes, tea.KeySpace:
		if m.tabActive && msg.String() == " " {
			m.tabActive = false
		}

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		refreshMatches(&m, true)

		return m, cmd
	}

	// Deletion and cursor movement never auto-confirm a completion.
	var cmd tea.Cmd

	m.tabActive = false
	m.altNav = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	refreshMatches(&m, false)

	return m, cmd
}

// cycle selects the next (dir > 0) or previous completion. A sole
// candidate is accepted immediately.
func (m model) cycle(dir int) model {
	n := len(m.matches)
	if n == 0 {
		return m
	}

	if n == 1 {
		replaceCurrentWord(&m, m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m
	}

	switch {
	case m.tabActive:
		m.suggIdx = (m.suggIdx + dir + n) % n
	case dir > 0:
		m.tabActive = true
		m.preTab = m.text()
		m.suggIdx = 0
	default:
		m.tabActive = true
		m.preTab = m.text()
		m.suggIdx = n - 1
	}

	replaceCurrentWord(&m, m.matches[m.suggIdx].Str)

	return m
}

// replaceCurrentWord substitutes replacement for the current word and moves
// the cursor to its end.
func replaceCurrentWord(m *model, replacement string) {
	input := m.input.Value()
	cursor := m.wordStart + len(replacement)

	m.input.SetValue(input[:m.wordStart] + replacement + input[m.wordEnd:])
	m.input.SetCursor(cursor)

	m.wordEnd = cursor
}

// refreshMatches recomputes completions for the current input. With
// autoConfirm a word that already equals its sole candidate is accepted.
func refreshMatches(m *model, autoConfirm bool) {
	m.matches, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	if m.input.Value()[m.wordStart:m.wordEnd] == m.matches[0].Str {
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil
	}
}

func (m model) executeInput() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	m.saved = [2]textState{}
	m.input.SetValue("")

	if err := m.history.Add(input, m.mode); err != nil {
		m.logger.WarnContext(m.ctx, "could not save history",
			slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()
	refreshMatches(&m, false)

	if m.mode == modeCtrl {
		return m.executeCommand(input)
	}

	m.logger.TraceContext(m.ctx, "repl eval", slog.String("input", input))

	out, err := m.session.Eval(m.ctx, input)

	cmds := []tea.Cmd{echo(modeEval, input)}

	if out != "" {
		cmds = append(cmds, tea.Println(resultStyle.Render(strings.TrimSuffix(out, "\n"))))
	}

	if err != nil {
		cmds = append(cmds, tea.Println(errorStyle.Render(err.Error())))
	}

	return m, tea.Sequence(cmds...)
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}

	m.logger.TraceContext(m.ctx, "repl command",
		slog.String("command", parts[0]),
		slog.Any("args", parts[1:]))

	echoed := echo(modeCtrl, input)

	switch parts[0] {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echoed, tea.Quit)

	case "h", "help":
		return m, tea.Sequence(echoed, tea.Println(helpMessage))

	case "l", "list":
		return m, tea.Sequence(echoed, tea.Println(m.listFunctions()))

	case "d", "dump":
		return m, tea.Sequence(echoed, tea.Println(m.dumpFunctions()))

	case "r", "reset":
		m.session.Reset()

		return m, tea.Sequence(echoed,
			tea.Println(resultStyle.Render("session reset")))

	case "c", "clear":
		return m, tea.ClearScreen

	default:
		return m, tea.Sequence(echoed, tea.Println(
			errorStyle.Render("unknown command: "+parts[0]+" (try 'help')")))
	}
}

func (m model) listFunctions() string {
	if m.session.Len() == 0 {
		return hintStyle.Render("  no functions declared")
	}

	var b strings.Builder

	for _, name := range m.session.Names() {
		decl, _ := m.session.Lookup(name)
		fmt.Fprintf(&b, "  %s() %s\n", name, hintStyle.Render(preview(decl)))
	}

	return strings.TrimSuffix(b.String(), "\n")
}

func (m model) dumpFunctions() string {
	prog, err := m.session.Program(m.ctx)
	if err != nil {
		return errorStyle.Render(err.Error())
	}

	var b strings.Builder

	if err := prog.Dump(&b, ""); err != nil {
		return errorStyle.Render(err.Error())
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// historyStep moves dir entries through history. With sameMode only entries
// of the current mode are visited; otherwise the mode follows the entry.
// Stepping past the newest entry clears the input.
func (m model) historyStep(dir int, sameMode bool) model {
	for i := m.historyIdx + dir; i >= 0 && i < m.history.Len(); i += dir {
		entry, err := m.history.Entry(i)
		if err != nil || (sameMode && entry.Mode != m.mode) {
			continue
		}

		if entry.Mode != m.mode {
			m = m.switchToMode(entry.Mode)
		}

		m.historyIdx = i
		m.setText(textState{entry.Line, len(entry.Line)})
		refreshMatches(&m, false)

		return m
	}

	if dir > 0 && m.historyIdx < m.history.Len() {
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
		refreshMatches(&m, false)
	}

	return m
}

// historyCtrl browses command-mode history. The input and mode in effect
// when browsing began are restored once either end is passed.
func (m model) historyCtrl(dir int) model {
	if !m.altNav {
		m.altNav = true
		m.altNavMode = m.mode
		m.altNavText = m.text()

		if m.mode != modeCtrl {
			m = m.switchToMode(modeCtrl)
		}
	}

	for i := m.historyIdx + dir; i >= 0 && i < m.history.Len(); i += dir {
		entry, err := m.history.Entry(i)
		if err != nil || entry.Mode != modeCtrl {
			continue
		}

		m.historyIdx = i
		m.setText(textState{entry.Line, len(entry.Line)})
		refreshMatches(&m, false)

		return m
	}

	m.altNav = false

	if m.altNavMode != m.mode {
		m = m.switchToMode(m.altNavMode)
	}

	m.setText(m.altNavText)
	m.historyIdx = m.history.Len()
	refreshMatches(&m, false)

	return m
}

func (m model) text() textState {
	return textState{m.input.Value(), m.input.Position()}
}

func (m *model) setText(s textState) {
	m.input.SetValue(s.text)
	m.input.SetCursor(s.cursor)
}

// switchToMode changes the input mode. Each mode keeps its own unsubmitted
// input.
func (m model) switchToMode(mode inputMode) model {
	m.saved[m.mode] = m.text()
	m.mode = mode

	if mode == modeEval {
		m.input.Prompt = promptStyle.Render(evalPrompt)
	} else {
		m.input.Prompt = ctrlPromptStyle.Render(ctrlPrompt)
	}

	m.setText(m.saved[mode])
	refreshMatches(&m, false)

	return m
}
