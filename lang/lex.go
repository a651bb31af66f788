package lang

import (
	"log/slog"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokIdent
	tokInt
	tokFloat
	tokString
	tokPunct
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokIdent:
		return "identifier"
	case tokInt:
		return "integer"
	case tokFloat:
		return "float"
	case tokString:
		return "string"
	default:
		return "symbol"
	}
}

type token struct {
	text string // unquoted contents for strings
	pos  Position
	kind tokenKind
}

func (t token) String() string {
	switch t.kind {
	case tokEOF:
		return t.kind.String()
	case tokString:
		return strconv.Quote(t.text)
	default:
		return "'" + t.text + "'"
	}
}

// punctuation is ordered longest first so that the first prefix match wins.
var punctuation = []string{
	"**", "<<", ">>", "<=", ">=", "==", "!=", "||", "&&",
	"+", "-", "*", "/", "%", "<", ">", "=", "!", "~", "^", "|", "&",
	"(", ")", "[", "]", "{", "}", ",", ";", ":", ".", "$",
}

// lexer splits source text into tokens.
type lexer struct {
	input []byte
	pos   int
	line  int
	col   int
}

func lex(src string) ([]token, error) {
	l := &lexer{input: []byte(src), line: 1, col: 1}

	var toks []token

	for {
		l.skipWhitespaceAndComments()

		if l.eof() {
			toks = append(toks, token{kind: tokEOF, pos: l.position()})

			return toks, nil
		}

		tok, err := l.next()
		if err != nil {
			return nil, err
		}

		toks = append(toks, tok)
	}
}

func (l *lexer) next() (token, error) {
	pos := l.position()
	ch := l.peek()

	switch {
	case isIdentifierStart(ch):
		start := l.pos
		for !l.eof() && isIdentifierContinue(l.peek()) {
			l.advance()
		}

		return token{kind: tokIdent, text: string(l.input[start:l.pos]), pos: pos}, nil

	case isDigit(ch):
		return l.number(pos), nil

	case ch == '"':
		return l.string(pos)
	}

	rest := string(l.input[l.pos:min(l.pos+2, len(l.input))])
	for _, p := range punctuation {
		if strings.HasPrefix(rest, p) {
			for range len(p) {
				l.advance()
			}

			return token{kind: tokPunct, text: p, pos: pos}, nil
		}
	}

	return token{}, ErrParse.WithPosition(pos).
		With(slog.String("unexpected", string(ch)))
}

// number scans digits, an optional fraction and an optional exponent.
func (l *lexer) number(pos Position) token {
	start := l.pos
	kind := tokInt

	l.digits()

	if l.peek() == '.' && l.pos+1 < len(l.input) && isDigit(rune(l.input[l.pos+1])) {
		kind = tokFloat

		l.advance()
		l.digits()
	}

	if c := l.peek(); c == 'e' || c == 'E' {
		n := 1
		if l.pos+n < len(l.input) && (l.input[l.pos+n] == '+' || l.input[l.pos+n] == '-') {
			n++
		}

		if l.pos+n < len(l.input) && isDigit(rune(l.input[l.pos+n])) {
			kind = tokFloat

			for range n {
				l.advance()
			}

			l.digits()
		}
	}

	return token{kind: kind, text: string(l.input[start:l.pos]), pos: pos}
}

func (l *lexer) digits() {
	for !l.eof() && isDigit(l.peek()) {
		l.advance()
	}
}

// string scans a double-quoted literal with Go escape sequences.
func (l *lexer) string(pos Position) (token, error) {
	start := l.pos

	l.advance() // skip opening quote

	for !l.eof() {
		switch l.peek() {
		case '\\':
			l.advance()

			if !l.eof() {
				l.advance()
			}

			continue

		case '\n':
			return token{}, ErrParse.WithPosition(pos).
				With(slog.String("error", "unterminated string"))

		case '"':
			l.advance()

			s, err := strconv.Unquote(string(l.input[start:l.pos]))
			if err != nil {
				return token{}, ErrParse.WithPosition(pos).Wrap(err)
			}

			return token{kind: tokString, text: s, pos: pos}, nil
		}

		l.advance()
	}

	return token{}, ErrParse.WithPosition(pos).
		With(slog.String("error", "unterminated string"))
}

func (l *lexer) peek() rune {
	if l.eof() {
		return 0
	}

	r, _ := utf8.DecodeRune(l.input[l.pos:])

	return r
}

func (l *lexer) peekN(n int) string {
	if l.pos+n > len(l.input) {
		return string(l.input[l.pos:])
	}

	return string(l.input[l.pos : l.pos+n])
}

func (l *lexer) advance() {
	if l.eof() {
		return
	}

	r, size := utf8.DecodeRune(l.input[l.pos:])

	l.pos += size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
}

func (l *lexer) eof() bool {
	return l.pos >= len(l.input)
}

func (l *lexer) position() Position {
	return Position{
		Offset: l.pos,
		Line:   l.line,
		Column: l.col,
	}
}

func (l *lexer) skipWhitespaceAndComments() {
	for {
		for !l.eof() && unicode.IsSpace(l.peek()) {
			l.advance()
		}

		switch {
		case l.eof():
			return

		case l.peek() == '#', l.peekN(2) == "//":
			for !l.eof() && l.peek() != '\n' {
				l.advance()
			}

		case l.peekN(2) == "/*":
			l.advance()
			l.advance()

			for !l.eof() && l.peekN(2) != "*/" {
				l.advance()
			}

			l.advance()
			l.advance()

		default:
			return
		}
	}
}

// Character classification

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isIdentifierStart(r rune) bool {
	return unicode.In(r,
		unicode.L,  // Letter
		unicode.Nl, // Letter, Number
		unicode.Other_ID_Start,
	) || r == '_'
}

func isIdentifierContinue(r rune) bool {
	return unicode.In(r,
		unicode.L,  // Letter
		unicode.Nl, // Letter, Number
		unicode.Other_ID_Start,
		unicode.Mn, // Mark, Nonspacing
		unicode.Mc, // Mark, Spacing Combining
		unicode.Nd, // Number, Decimal Digit
		unicode.Pc, // Punctuation, Connector
		unicode.Other_ID_Continue,
	)
}

// IsIdentifier reports whether s is a valid variable name.
func IsIdentifier(s string) bool {
	for i, r := range s {
		if i == 0 && !isIdentifierStart(r) || i > 0 && !isIdentifierContinue(r) {
			return false
		}
	}

	return s != ""
}
