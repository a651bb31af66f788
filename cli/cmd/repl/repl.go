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

	"github.com/ardnew/micron/lang"
	"github.com/ardnew/micron/log"
)

const (
	evalPrompt = "µ> "
	ctrlPrompt = " :"
)

func helpMessage() string {
	return `
: Commands (press Esc to toggle mode):

  help           Print this cruft
  vars           List variables of every scope, innermost first
  dump [FORMAT]  Print the environment as yaml (default) or json
  push [NAME]    Push a new scope
  pop            Pop the innermost scope
  clear          Clear screen
  quit           Exit REPL

Usage:
  Type statements to execute them, e.g. x = 2 ** 100; x.as_string()
  Completions appear automatically for variables, dict keys,
    .methods and $modifiers
  Press Tab / Shift-Tab to cycle through candidates
  Press Space to accept the current candidate
  Press Esc to toggle between eval and command modes
  Use Up/Down arrows for history navigation (mode switches automatically)
  Use Shift+Up/Shift+Down for history navigation within current mode only
  Press Ctrl+C on empty line or Ctrl+D to exit
`
}

// inputMode represents the current input mode.
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
	scopeStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	matchStyle      = suggestionStyle.Bold(true).Underline(true)
	selectedStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
	selectedMatchStyle = selectedStyle.Bold(true)
)

// formatCommand formats the command echo line with prompt and input styled.
func formatCommand(input string) string {
	return promptStyle.Render(evalPrompt) + inputStyle.Render(input)
}

// formatCtrlCommand formats the control command echo line with prompt and input
// styled.
func formatCtrlCommand(input string) string {
	return ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(input)
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctx          func() context.Context
	input        textinput.Model
	in           *lang.Interpreter
	logger       log.Logger
	history      *History
	historyIdx   int
	matches      fuzzy.Matches // current fuzzy match results
	word         completion    // word under the cursor
	suggIdx      int           // selected candidate index
	tabActive    bool          // whether user is tab-cycling
	preTabText   string        // input text before tab-cycling began
	preTabCursor int           // cursor position before tab-cycling began
	width        int           // terminal width for ellipsization
	pushed       int           // scopes pushed without a name
	quitting     bool
	mode         inputMode
	evalText     string
	evalCursor   int
	ctrlText     string
	ctrlCursor   int
}

// Run starts an interactive session on the environment of in. History is
// persisted in cacheDir, or kept in memory when cacheDir is empty.
func Run(
	ctx context.Context,
	in *lang.Interpreter,
	cacheDir string,
	logger log.Logger,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger.TraceContext(ctx, "repl start", slog.String("cache_dir", cacheDir))

	var path string
	if cacheDir != "" {
		path = filepath.Join(cacheDir, baseHistory)
	}

	history := NewHistory(path)
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "could not load history",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
	}

	logger.TraceContext(
		ctx,
		"repl history loaded",
		slog.Int("entry_count", history.Len()),
	)

	p := tea.NewProgram(newModel(ctx, in, history, logger), tea.WithContext(ctx))
	_, err = p.Run()

	return err
}

const defaultWidth = 80

func newModel(
	ctx context.Context,
	in *lang.Interpreter,
	history *History,
	logger log.Logger,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(evalPrompt)
	ti.Focus()
	ti.CharLimit = 4096
	ti.Width = defaultWidth

	return model{
		ctx:        func() context.Context { return ctx },
		input:      ti,
		in:         in,
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

	input := m.input.Value()

	c, inCall := detectCall(input, m.cursor())

	var hint string

	switch {
	case m.historyIdx < m.history.Len():
		hint = hintStyle.Render(fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len()))

	case strings.TrimSpace(input) == "":
		if m.mode == modeEval {
			hint = "Type a statement or press Esc for commands"
		} else {
			hint = "Type: " + strings.Join(ctrlCommands, ", ") + " (press Esc to return)"
		}

		hint = hintStyle.Render(hint)

	case len(m.matches) > 0:
		hint = renderCandidateBar(
			m.matches, m.suggIdx, m.tabActive, m.width, candidateSuffix(m.word.kind),
		)

	case inCall && m.mode == modeEval:
		hint = renderSignatureHint(c)
	}

	b.WriteString(hint)
	b.WriteString("\n")

	return b.String()
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(
		m.ctx(),
		"repl keypress",
		slog.String("key", msg.String()),
		slog.Int("type", int(msg.Type)),
	)

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.tabActive = false
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
		if !m.tabActive || len(m.matches) == 0 {
			return m.executeInput()
		}
		// Lock in the current tab candidate without executing.
		m.tabActive = false
		refreshMatches(&m, true)

		return m, nil

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		return m.historyPrev(false), nil

	case tea.KeyDown:
		return m.historyNext(false), nil

	case tea.KeyShiftUp:
		return m.historyPrev(true), nil

	case tea.KeyShiftDown:
		return m.historyNext(true), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			refreshMatches(&m, false)

			return m, nil
		}

		if m.mode == modeEval {
			return m.switchToMode(modeCtrl), nil
		}

		return m.switchToMode(modeEval), nil

	case tea.KeyRunes, tea.KeySpace:
		// Space accepts the candidate being cycled.
		if m.tabActive && msg.String() == " " {
			m.tabActive = false
		}

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		refreshMatches(&m, true)

		return m, cmd
	}

	// Any other key (backspace, delete, arrows, etc.) edits without
	// auto-confirm.
	var cmd tea.Cmd

	m.tabActive = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	refreshMatches(&m, false)

	return m, cmd
}

// cycle moves the tab selection by step, wrapping at either end. A single
// candidate completes immediately.
func (m model) cycle(step int) model {
	if len(m.matches) == 0 {
		return m
	}

	if len(m.matches) == 1 {
		replaceCurrentWord(&m, m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m
	}

	switch {
	case m.tabActive:
		m.suggIdx = (m.suggIdx + step + len(m.matches)) % len(m.matches)
	case step < 0:
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()
		m.suggIdx = len(m.matches) - 1
	default:
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()
		m.suggIdx = 0
	}

	replaceCurrentWord(&m, m.matches[m.suggIdx].Str)

	return m
}

// replaceCurrentWord replaces the word under the cursor with candidate s and
// moves the cursor past it.
func replaceCurrentWord(m *model, s string) {
	text := replacement(m.word, s)
	input := m.input.Value()
	cursor := m.word.start + len(text)

	m.input.SetValue(input[:m.word.start] + text + input[m.word.end:])
	m.setCursor(cursor)

	m.word.end = cursor
}

// refreshMatches recomputes fuzzy matches for the current input state.
// When autoConfirm is true it also confirms the completion when exactly one
// candidate remains and the typed word already equals it.
func refreshMatches(m *model, autoConfirm bool) {
	if m.tabActive {
		// Keep the word bounds of the candidate being cycled.
		return
	}

	m.matches, m.word = m.computeMatches()
	m.suggIdx = -1

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	if m.matches[0].Str == m.word.word {
		m.matches = nil
	}
}

func (m model) executeInput() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	m.evalText, m.evalCursor = "", 0
	m.ctrlText, m.ctrlCursor = "", 0
	m.input.SetValue("")
	m.matches = nil

	if err := m.history.Add(input, m.mode); err != nil {
		m.logger.WarnContext(m.ctx(), "could not save history",
			slog.String("error", err.Error()),
		)
	}

	m.historyIdx = m.history.Len()

	if m.mode == modeCtrl {
		return m.executeCommand(input)
	}

	m.logger.TraceContext(m.ctx(), "repl eval", slog.String("input", input))

	out := []tea.Cmd{tea.Println(formatCommand(input))}

	results, err := m.in.Exec(m.ctx(), input)
	for _, r := range results {
		if r.Value != nil {
			out = append(out, tea.Println(resultStyle.Render(r.Value.String())))
		}
	}

	if err != nil {
		m.logger.TraceContext(m.ctx(), "repl eval failed",
			slog.String("error", err.Error()),
		)

		if snip := lang.Snippet(input, err); snip != "" {
			out = append(out, tea.Println(hintStyle.Render(snip)))
		}

		out = append(out, tea.Println(errorStyle.Render("error: "+err.Error())))
	}

	return m, tea.Sequence(out...)
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}

	echo := tea.Println(formatCtrlCommand(input))

	cmd, args := parts[0], parts[1:]

	m.logger.TraceContext(
		m.ctx(),
		"repl exec command",
		slog.String("command", cmd),
		slog.Any("args", args),
	)

	switch cmd {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case "h", "help":
		return m, tea.Sequence(echo, tea.Println(helpMessage()))

	case "v", "vars":
		return m, tea.Sequence(echo, tea.Println(m.listVariables()))

	case "d", "dump":
		out, err := m.dump(args)
		if err != nil {
			return m, tea.Sequence(echo, tea.Println(errorStyle.Render("error: "+err.Error())))
		}

		return m, tea.Sequence(echo, tea.Println(out))

	case "push":
		name := ""
		if len(args) > 0 {
			name = args[0]
		} else {
			m.pushed++
			name = "scope#" + strconv.Itoa(m.pushed)
		}

		m.in.Environment().PushScope(name)

		return m, tea.Sequence(echo, tea.Println(hintStyle.Render(m.scopePath())))

	case "pop":
		if err := m.in.Environment().PopScope(); err != nil {
			return m, tea.Sequence(echo, tea.Println(errorStyle.Render("error: "+err.Error())))
		}

		return m, tea.Sequence(echo, tea.Println(hintStyle.Render(m.scopePath())))

	case "c", "clear":
		return m, tea.ClearScreen

	default:
		return m, tea.Println(
			errorStyle.Render(ErrUnknownInput.Error() + ": " + cmd + " (try 'help')"),
		)
	}
}

// dump renders the environment in the format named by args, or yaml.
func (m model) dump(args []string) (string, error) {
	format := "yaml"
	if len(args) > 0 {
		format = args[0]
	}

	var (
		data []byte
		err  error
	)

	switch format {
	case "yaml":
		data, err = lang.MarshalYAML(m.ctx(), m.in.Environment(), 2)
	case "json":
		data, err = lang.MarshalJSONIndent(m.in.Environment(), 2)
	default:
		return "", fmt.Errorf("%w: dump %s", ErrUnknownInput, format)
	}

	return strings.TrimRight(string(data), "\n"), err
}

// listVariables renders every binding grouped by scope, innermost first.
func (m model) listVariables() string {
	var b strings.Builder

	for scope := range m.in.Environment().Scopes() {
		b.WriteString(scopeStyle.Render(scope.Name()))
		b.WriteString("\n")

		if scope.Len() == 0 {
			b.WriteString(hintStyle.Render("  (empty)"))
			b.WriteString("\n")
		}

		for name, v := range scope.All() {
			fmt.Fprintf(&b, "  %s %s\n", name, hintStyle.Render(v.String()))
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// scopePath renders the scope stack outermost first.
func (m model) scopePath() string {
	var names []string
	for scope := range m.in.Environment().Scopes() {
		names = append([]string{scope.Name()}, names...)
	}

	return "scopes: " + strings.Join(names, " > ")
}

// historyPrev recalls the previous history entry. With sameMode it skips
// entries of the other mode; otherwise the mode follows the entry.
func (m model) historyPrev(sameMode bool) model {
	for i := m.historyIdx - 1; i >= 0; i-- {
		entry, err := m.history.Entry(i)
		if err != nil || (sameMode && entry.Mode != m.mode) {
			continue
		}

		return m.recall(i, entry)
	}

	return m
}

// historyNext recalls the next history entry, clearing the input past the
// newest one.
func (m model) historyNext(sameMode bool) model {
	for i := m.historyIdx + 1; i < m.history.Len(); i++ {
		entry, err := m.history.Entry(i)
		if err != nil || (sameMode && entry.Mode != m.mode) {
			continue
		}

		return m.recall(i, entry)
	}

	if m.historyIdx < m.history.Len() {
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
		refreshMatches(&m, false)
	}

	return m
}

func (m model) recall(i int, entry HistoryEntry) model {
	if m.mode != entry.Mode {
		m = m.switchToMode(entry.Mode)
	}

	m.historyIdx = i
	m.tabActive = false
	m.input.SetValue(entry.Line)
	m.setCursor(len(entry.Line))
	refreshMatches(&m, false)

	return m
}

// switchToMode switches to mode, saving the input of the current mode and
// restoring the input last seen in the target mode.
func (m model) switchToMode(mode inputMode) model {
	if m.mode == modeEval {
		m.evalText, m.evalCursor = m.input.Value(), m.input.Position()
	} else {
		m.ctrlText, m.ctrlCursor = m.input.Value(), m.input.Position()
	}

	m.mode = mode
	if mode == modeEval {
		m.input.Prompt = promptStyle.Render(evalPrompt)
		m.input.SetValue(m.evalText)
		m.input.SetCursor(m.evalCursor)
	} else {
		m.input.Prompt = ctrlPromptStyle.Render(ctrlPrompt)
		m.input.SetValue(m.ctrlText)
		m.input.SetCursor(m.ctrlCursor)
	}

	refreshMatches(&m, false)

	return m
}
