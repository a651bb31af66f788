package repl

import (
	"context"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/micron/lang"
	"github.com/ardnew/micron/log"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{"help", "vars", "dump", "push", "pop", "clear", "quit"}

// dumpFormats are the arguments accepted by the dump command.
var dumpFormats = []string{"yaml", "json"}

// completionKind is what the word at the cursor names.
type completionKind int

const (
	completeNone completionKind = iota
	completeVariable
	completeMethod
	completeModifier
	completeKey
	completeCommand
	completeArgument
)

// completion describes the word at the cursor and where it sits in the
// input.
type completion struct {
	// word is the text being completed. For keys it is the raw text between
	// the opening quote and the cursor's end of string.
	word       string
	start, end int
	kind       completionKind
	// container is the source of the variable reference whose keys complete
	// a completeKey word, e.g. `cfg["server"]` for `cfg["server"]["po`.
	container string
}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// containerPattern matches a variable reference at the end of the text.
var containerPattern = regexp.MustCompile(
	`[\p{L}_][\p{L}\p{N}_]*(?:\[(?:"(?:[^"\\]|\\.)*"|[\p{L}_][\p{L}\p{N}_]*)\])*$`,
)

// analyzeEval classifies the word at cursor in an eval-mode input line.
func analyzeEval(input string, cursor int) completion {
	cursor = min(max(cursor, 0), len(input))

	if q, ok := openQuote(input[:cursor]); ok {
		end := cursor
		for end < len(input) && input[end] != '"' {
			end++
		}

		c := completion{word: input[q+1 : end], start: q + 1, end: end}

		if q > 0 && input[q-1] == '[' {
			if ref := containerPattern.FindString(input[:q-1]); ref != "" {
				c.kind = completeKey
				c.container = ref
			}
		}

		return c
	}

	start := cursor
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if !isIdentRune(r) {
			break
		}

		start -= size
	}

	end := cursor
	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if !isIdentRune(r) {
			break
		}

		end += size
	}

	c := completion{word: input[start:end], start: start, end: end}

	// Digits after "." are a fraction, not a method.
	if c.word != "" && c.word[0] >= '0' && c.word[0] <= '9' {
		return c
	}

	var prev byte
	if start > 0 {
		prev = input[start-1]
	}

	switch prev {
	case '$':
		c.kind = completeModifier
	case '.':
		c.kind = completeMethod
	default:
		c.kind = completeVariable
	}

	return c
}

// analyzeCtrl classifies the word at cursor in a command-mode input line.
func analyzeCtrl(input string, cursor int) completion {
	cursor = min(max(cursor, 0), len(input))

	start := strings.LastIndexAny(input[:cursor], " \t") + 1

	end := cursor
	if i := strings.IndexAny(input[cursor:], " \t"); i >= 0 {
		end += i
	} else {
		end = len(input)
	}

	c := completion{word: input[start:end], start: start, end: end, kind: completeCommand}

	if fields := strings.Fields(input[:start]); len(fields) > 0 {
		c.kind = completeNone

		if len(fields) == 1 && fields[0] == "dump" {
			c.kind = completeArgument
		}
	}

	return c
}

// openQuote returns the index of the quote opening the string literal that
// s ends inside of, if any.
func openQuote(s string) (int, bool) {
	open := -1

	for i := 0; i < len(s); i++ {
		switch {
		case open >= 0 && s[i] == '\\':
			i++
		case s[i] == '"' && open >= 0:
			open = -1
		case s[i] == '"':
			open = i
		case open < 0 && (s[i] == '#' || strings.HasPrefix(s[i:], "//")):
			// The rest of the line is a comment.
			return -1, false
		}
	}

	return open, open >= 0
}

// variableNames returns the names visible in env, sorted.
func variableNames(env *lang.Environment) []string {
	seen := make(map[string]struct{})

	for scope := range env.Scopes() {
		for name := range scope.All() {
			seen[name] = struct{}{}
		}
	}

	return slices.Sorted(maps.Keys(seen))
}

// dictKeys returns the keys of the Dict that container refers to, sorted.
func dictKeys(ctx context.Context, env *lang.Environment, container string) []string {
	x, err := lang.ParseExpression(ctx, container)
	if err != nil {
		return nil
	}

	v, ok := x.(*lang.Variable)
	if !ok {
		return nil
	}

	val, err := lang.NewResolver(env, log.Logger{}).Load(ctx, v.Ref)
	if err != nil || val.Kind() != lang.KindDict {
		return nil
	}

	return slices.Sorted(maps.Keys(val.Dict()))
}

// candidates returns the completion candidates for c.
func (m model) candidates(c completion) []string {
	switch c.kind {
	case completeVariable:
		return variableNames(m.in.Environment())
	case completeMethod:
		return lang.Methods()
	case completeModifier:
		return lang.Modifiers()
	case completeKey:
		return dictKeys(m.ctx(), m.in.Environment(), c.container)
	case completeCommand:
		return ctrlCommands
	case completeArgument:
		return dumpFormats
	default:
		return nil
	}
}

// computeMatches calculates the fuzzy matches for the word at the cursor,
// ranked best-first. An empty word lists every candidate, except for
// variables and commands where the hint line stays visible instead.
func (m model) computeMatches() (fuzzy.Matches, completion) {
	var c completion
	if m.mode == modeCtrl {
		c = analyzeCtrl(m.input.Value(), m.cursor())
	} else {
		c = analyzeEval(m.input.Value(), m.cursor())
	}

	candidates := m.candidates(c)
	if len(candidates) == 0 {
		return nil, c
	}

	if c.word == "" {
		if c.kind == completeVariable || c.kind == completeCommand {
			return nil, c
		}

		matches := make(fuzzy.Matches, len(candidates))
		for i, s := range candidates {
			matches[i] = fuzzy.Match{Str: s, Index: i}
		}

		return matches, c
	}

	return fuzzy.Find(c.word, candidates), c
}

// cursor returns the byte offset of the input cursor.
func (m model) cursor() int {
	runes := []rune(m.input.Value())

	return len(string(runes[:min(m.input.Position(), len(runes))]))
}

// setCursor moves the input cursor to byte offset i.
func (m *model) setCursor(i int) {
	m.input.SetCursor(utf8.RuneCountInString(m.input.Value()[:i]))
}

// replacement returns the text inserted for candidate s.
func replacement(c completion, s string) string {
	if c.kind == completeKey {
		q := strconv.Quote(s)

		return q[1 : len(q)-1]
	}

	return s
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// within the given terminal width. Each candidate is rendered with its matched
// characters highlighted. The selected candidate (when tabbing) uses the
// selected style.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
	suffix string,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		selected := tabActive && i == suggIdx
		rendered := renderCandidate(match, selected, suffix)
		entryWidth := lipgloss.Width(rendered)

		if i > 0 {
			entryWidth += sepWidth
		}

		if used+entryWidth+ellipsisWidth > width && i > 0 {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders a single candidate with matched characters
// highlighted, followed by suffix.
func renderCandidate(match fuzzy.Match, selected bool, suffix string) string {
	baseStyle, highlight := suggestionStyle, matchStyle
	if selected {
		baseStyle, highlight = selectedStyle, selectedMatchStyle
	}

	matched := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matched[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matched[i] {
			b.WriteString(highlight.Render(string(r)))
		} else {
			b.WriteString(baseStyle.Render(string(r)))
		}
	}

	if suffix != "" {
		b.WriteString(baseStyle.Render(suffix))
	}

	return b.String()
}

// candidateSuffix marks callable candidates in the completion bar.
func candidateSuffix(kind completionKind) string {
	if kind == completeMethod || kind == completeModifier {
		return "()"
	}

	return ""
}
