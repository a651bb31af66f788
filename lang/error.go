package lang

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
//
// Errors returned by this package are derived from one of these with
// [Error.Wrap] or [Error.With], and match their sentinel with [errors.Is].
var (
	ErrUnknownVariable           = NewError("unknown variable")
	ErrUnknownScope              = NewError("unknown scope")
	ErrUnknownKeyForDict         = NewError("unknown key for dict")
	ErrIncorrectType             = NewError("incorrect type")
	ErrConversionFailure         = NewError("conversion failure")
	ErrUnknownMethod             = NewError("unknown method")
	ErrNoMethodForType           = NewError("no method for type")
	ErrInvalidNumberOfParameters = NewError("invalid number of parameters")
	ErrInvalidParameter          = NewError("invalid parameter")
	ErrStack                     = NewError("evaluation stack error")
	ErrInvalidExpression         = NewError("invalid expression")
	ErrInvalidStringExpression   = NewError("invalid string expression")
	ErrInvalidUnaryOperation     = NewError("invalid unary operation")
	ErrDivisionByZero            = NewError("division by zero")
	ErrParse                     = NewError("parse error")
	ErrReadInput                 = NewError("failed to read input")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
	pos   *Position
	kind  *Error // sentinel this error derives from
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	e := &Error{msg: msg}
	e.kind = e

	return e
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	e := &Error{err: err}
	e.kind = e

	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	// Build error message using the first available format,
	// depending on which fields are set:
	//
	//   1. "<msg> (<attrs>): <err>"
	//   2. "<msg> (<attrs>)"
	//   3. "<msg>"
	//   4. "<err>"
	var b strings.Builder

	b.WriteString(e.msg)

	if e.pos != nil {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}

		b.WriteString("at ")
		b.WriteString(e.pos.String())
	}

	if len(e.attrs) > 0 {
		parts := make([]string, 0, len(e.attrs))
		for _, a := range e.attrs {
			parts = append(parts, a.Key+"="+a.Value.String())
		}

		if b.Len() > 0 {
			b.WriteByte(' ')
		}

		b.WriteString("(" + strings.Join(parts, ", ") + ")")
	}

	if e.err != nil {
		if b.Len() > 0 {
			b.WriteString(": ")
		}

		b.WriteString(e.err.Error())
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel e was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t == nil {
		return false
	}

	return e.kind != nil && e.kind == t.kind
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+3)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.pos != nil {
		attrs = append(attrs, slog.String("position", e.pos.String()))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	c := *e
	c.err = err

	return &c
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	c := *e
	c.attrs = make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(c.attrs, e.attrs)
	copy(c.attrs[len(e.attrs):], attrs)

	return &c
}

// WithPosition attaches a source position to the error.
func (e *Error) WithPosition(pos Position) *Error {
	c := *e
	c.pos = &pos

	return &c
}

// Position returns the source position attached to the error, if any.
func (e *Error) Position() (Position, bool) {
	if e.pos == nil {
		return Position{}, false
	}

	return *e.pos, true
}

// Attr returns the value of the first attribute with the given key.
func (e *Error) Attr(key string) (slog.Value, bool) {
	for _, a := range e.attrs {
		if a.Key == key {
			return a.Value, true
		}
	}

	return slog.Value{}, false
}

// Position identifies a location in source text.
type Position struct {
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// Snippet renders the source line containing the position of err followed by
// a caret marking its column. It returns the empty string if err carries no
// position or the position is outside of source.
func Snippet(source string, err error) string {
	ee := &Error{}
	if !errors.As(err, &ee) || ee.pos == nil {
		return ""
	}

	lines := strings.Split(source, "\n")
	if ee.pos.Line < 1 || ee.pos.Line > len(lines) {
		return ""
	}

	var b strings.Builder

	num := strconv.Itoa(ee.pos.Line)

	b.WriteString("  ")
	b.WriteString(num)
	b.WriteString(" | ")
	b.WriteString(lines[ee.pos.Line-1])
	b.WriteByte('\n')

	// +5 accounts for: 2 leading spaces + " | " (3 chars)
	b.WriteString(strings.Repeat(" ", len(num)+5))

	if ee.pos.Column > 0 {
		b.WriteString(strings.Repeat(" ", ee.pos.Column-1))
	}

	b.WriteString("^")

	return b.String()
}
