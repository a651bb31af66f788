package lang

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatCanonical(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"spacing", "x=1+2*3", "x = 1 + 2 * 3"},
		{"redundant parens", "((1)) + (2 * 3)", "1 + 2 * 3"},
		{"needed parens", "(1 + 2) * 3", "(1 + 2) * 3"},
		{"right operand of sub", "1 - (2 - 3)", "1 - (2 - 3)"},
		{"left operand of sub", "(1 - 2) - 3", "1 - 2 - 3"},
		{"power chain", "2 ** (3 ** 2)", "2 ** 3 ** 2"},
		{"power left group", "(2 ** 3) ** 2", "(2 ** 3) ** 2"},
		{"unary of binary", "!(a && b)", "!(a && b)"},
		{"receiver of binary", "(1 + 2).as_string()", "(1 + 2).as_string()"},
		{"negative literal", "3 - -2", "3 - -2"},
		{"float", "1.50", "1.5"},
		{"exponent float", "2e30", "2e+30"},
		{"string escapes", `"a\nb"`, `"a\nb"`},
		{"nested ref", `x["a"][k] = {"b":1,"c":{}}`, `x["a"][k] = {"b": 1, "c": {}}`},
		{"modifier", "$to_string( a ,b )", "$to_string(a, b)"},
		{"method params", `s.at( 1 )`, "s.at(1)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmts, err := ParseString(t.Context(), tt.input)
			require.NoError(t, err)
			require.Len(t, stmts, 1)
			assert.Equal(t, tt.want, FormatStatement(stmts[0]))

			// Canonical source parses back to the same tree.
			assert.Equal(t, tree(t, tt.input), tree(t, tt.want))
		})
	}
}

func TestFormatProgram(t *testing.T) {
	stmts, err := ParseString(t.Context(), `a = 1; cfg = {"x": 1, "y": {"z": "w"}}; a`)
	require.NoError(t, err)

	var flat strings.Builder
	require.NoError(t, Format(t.Context(), &flat, stmts, 0))
	assert.Equal(t, lines(
		"a = 1;",
		`cfg = {"x": 1, "y": {"z": "w"}};`,
		"a;",
	), flat.String())

	var indented strings.Builder
	require.NoError(t, Format(t.Context(), &indented, stmts, 2))
	assert.Equal(t, lines(
		"a = 1;",
		"cfg = {",
		`  "x": 1,`,
		`  "y": {`,
		`    "z": "w",`,
		"  },",
		"};",
		"a;",
	), indented.String())

	again, err := ParseString(t.Context(), indented.String())
	require.NoError(t, err)
	assert.Len(t, again, 3)
}

func TestFormatExpression(t *testing.T) {
	x := bin(OpMul, bin(OpAdd, lit(MakeInt(1)), lit(MakeInt(2))), un(OpBwNot, ivar("n")))
	assert.Equal(t, "(1 + 2) * ~n", FormatExpression(x))
}

func TestPrintUnknownNode(t *testing.T) {
	var b strings.Builder
	require.NoError(t, Print(t.Context(), &b, []Statement{&BareExpression{}}))
	assert.Equal(t, lines("BareExpression", "  nil"), b.String())
}
