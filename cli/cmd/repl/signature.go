package repl

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/micron/lang"
)

// methodParams names the parameters of accessor methods that take any.
var methodParams = map[string][]string{
	"at":             {"offset"},
	"with_precision": {"bits"},
}

var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
)

// call is a method or modifier call whose parameter list contains the
// cursor.
type call struct {
	name     string
	sigil    byte // '.' for methods, '$' for modifiers
	argIndex int
}

// detectCall reports the innermost method or modifier call whose parameter
// list contains cursor.
func detectCall(input string, cursor int) (call, bool) {
	cursor = min(max(cursor, 0), len(input))

	// Forward scan so string contents never count as punctuation.
	type frame struct {
		open   int
		commas int
	}

	var (
		stack []frame
		inStr bool
	)

	for i := 0; i < cursor; i++ {
		ch := input[i]

		switch {
		case inStr && ch == '\\':
			i++
		case ch == '"':
			inStr = !inStr
		case inStr:
		case ch == '(':
			stack = append(stack, frame{open: i})
		case ch == ')':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case ch == ',':
			if len(stack) > 0 {
				stack[len(stack)-1].commas++
			}
		}
	}

	if inStr || len(stack) == 0 {
		return call{}, false
	}

	top := stack[len(stack)-1]

	start := top.open
	for start > 0 && isIdentByte(input[start-1]) {
		start--
	}

	if start == top.open || start == 0 {
		return call{}, false
	}

	sigil := input[start-1]
	if sigil != '.' && sigil != '$' {
		return call{}, false
	}

	return call{name: input[start:top.open], sigil: sigil, argIndex: top.commas}, true
}

func isIdentByte(b byte) bool {
	return b == '_' || b >= 0x80 ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// signature returns the parameter names of c, and whether the last one
// repeats. It reports false for unknown names.
func signature(c call) (params []string, variadic, ok bool) {
	if c.sigil == '$' {
		for _, m := range lang.Modifiers() {
			if m == c.name {
				return []string{"variable"}, true, true
			}
		}

		return nil, false, false
	}

	arity, ok := lang.MethodArity(c.name)
	if !ok {
		return nil, false, false
	}

	params = methodParams[c.name]
	if len(params) != arity {
		params = make([]string, arity)
		for i := range params {
			params[i] = "arg" + string(rune('1'+i))
		}
	}

	return params, false, true
}

// renderSignatureHint renders the signature of c with the parameter at the
// cursor highlighted. It returns the empty string for unknown calls.
func renderSignatureHint(c call) string {
	params, variadic, ok := signature(c)
	if !ok {
		return ""
	}

	var b strings.Builder

	b.WriteString(signatureStyle.Render(string(c.sigil)))
	b.WriteString(signatureNameStyle.Render(c.name))
	b.WriteString(signatureStyle.Render("("))

	for i, p := range params {
		if i > 0 {
			b.WriteString(signatureStyle.Render(", "))
		}

		current := i == c.argIndex || (variadic && i == len(params)-1 && c.argIndex >= i)
		if current {
			b.WriteString(currentParamStyle.Render(p))
		} else {
			b.WriteString(signatureStyle.Render(p))
		}
	}

	if variadic {
		b.WriteString(signatureStyle.Render(", ..."))
	}

	b.WriteString(signatureStyle.Render(")"))

	return b.String()
}
