package lang

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"unicode/utf8"
)

// method is an accessor callable as receiver.name(params...).
type method struct {
	call  func(recv Value, params []Value) (Value, error)
	arity int
}

var methods = map[string]method{
	"as_string": {arity: 0, call: func(recv Value, _ []Value) (Value, error) {
		return recv.ToString()
	}},
	"as_int": {arity: 0, call: func(recv Value, _ []Value) (Value, error) {
		return recv.ToInt()
	}},
	"as_float": {arity: 0, call: func(recv Value, _ []Value) (Value, error) {
		return recv.ToFloat()
	}},
	"at":             {arity: 1, call: methodAt},
	"with_precision": {arity: 1, call: methodWithPrecision},
}

// modifiers convert the value of a variable in place.
var modifiers = map[string]func(Value) (Value, error){
	"to_integer": Value.ToInt,
	"to_float":   Value.ToFloat,
	"to_string":  Value.ToString,
}

// Methods returns the names of all accessor methods in sorted order.
func Methods() []string { return slices.Sorted(maps.Keys(methods)) }

// Modifiers returns the names of all built-in modifiers in sorted order.
func Modifiers() []string { return slices.Sorted(maps.Keys(modifiers)) }

// MethodArity returns the number of parameters taken by the named accessor.
func MethodArity(name string) (int, bool) {
	m, ok := methods[name]

	return m.arity, ok
}

func methodAt(recv Value, params []Value) (Value, error) {
	if recv.kind != KindString {
		return Value{}, ErrNoMethodForType.With(
			slog.String("type", recv.kind.String()),
			slog.String("method", "at"),
		)
	}

	idx := params[0]
	if idx.kind != KindInteger {
		return Value{}, ErrInvalidParameter.With(
			slog.String("method", "at"),
			slog.String("expected", KindInteger.String()),
			slog.String("actual", idx.kind.String()),
		)
	}

	n := idx.Int()
	if !n.IsInt64() || n.Int64() < 0 || n.Int64() >= int64(len(recv.str)) {
		return Value{}, ErrInvalidParameter.With(
			slog.String("method", "at"),
			slog.String("index", n.String()),
			slog.Int("length", len(recv.str)),
		)
	}

	i := int(n.Int64())
	if !utf8.RuneStart(recv.str[i]) {
		return Value{}, ErrInvalidParameter.With(
			slog.String("method", "at"),
			slog.Int("index", i),
			slog.String("detail", "offset inside a character"),
		)
	}

	_, size := utf8.DecodeRuneInString(recv.str[i:])

	return MakeString(recv.str[i : i+size]), nil
}

func methodWithPrecision(recv Value, params []Value) (Value, error) {
	if recv.kind != KindFloat {
		return Value{}, ErrNoMethodForType.With(
			slog.String("type", recv.kind.String()),
			slog.String("method", "with_precision"),
		)
	}

	p := params[0]
	if p.kind != KindInteger {
		return Value{}, ErrInvalidParameter.With(
			slog.String("method", "with_precision"),
			slog.String("expected", KindInteger.String()),
			slog.String("actual", p.kind.String()),
		)
	}

	n := p.Int()
	if !n.IsUint64() || n.Uint64() > uint64(^uint32(0)) {
		return Value{}, ErrInvalidParameter.With(
			slog.String("method", "with_precision"),
			slog.String("precision", n.String()),
		)
	}

	return recv.WithPrecision(uint(n.Uint64()))
}

func (e *Evaluator) runAccess(ctx context.Context, x *Access) error {
	if err := e.run(ctx, x.Receiver); err != nil {
		return err
	}

	m, ok := methods[x.Method]
	if !ok {
		return ErrUnknownMethod.With(slog.String("method", x.Method))
	}

	if len(x.Params) != m.arity {
		return ErrInvalidNumberOfParameters.With(
			slog.String("method", x.Method),
			slog.Int("expected", m.arity),
			slog.Int("actual", len(x.Params)),
		)
	}

	for _, p := range x.Params {
		if err := e.run(ctx, p); err != nil {
			return err
		}
	}

	params, err := e.popN(len(x.Params))
	if err != nil {
		return err
	}

	recv, err := e.pop()
	if err != nil {
		return err
	}

	attrs := []slog.Attr{
		slog.String("method", x.Method),
		slog.String("receiver", recv.val.kind.String()),
	}
	if recv.loc != nil {
		attrs = append(attrs, slog.String("path", recv.loc.String()))
	}

	e.logger.TraceContext(ctx, "access", attrs...)

	v, err := m.call(recv.val, params)
	if err != nil {
		return err
	}

	e.push(v)

	return nil
}

// runModifier converts each variable in order. A failure stops the call but
// keeps the conversions already made.
func (e *Evaluator) runModifier(ctx context.Context, x *ModifierCall) error {
	convert, ok := modifiers[x.Name]
	if !ok {
		return ErrUnknownMethod.With(slog.String("method", x.Name))
	}

	if len(x.Vars) == 0 {
		return ErrInvalidNumberOfParameters.With(
			slog.String("method", x.Name),
			slog.Int("expected", 1),
			slog.Int("actual", 0),
		)
	}

	var last Value

	for _, ref := range x.Vars {
		loc, err := e.resolver.Resolve(ctx, ref)
		if err != nil {
			return err
		}

		cur, err := loc.Load()
		if err != nil {
			return err
		}

		next, err := convert(cur)
		if err != nil {
			return WrapError(err).With(slog.String("variable", ref.String()))
		}

		if err := loc.Store(next); err != nil {
			return err
		}

		e.logger.TraceContext(ctx, "modify",
			slog.String("modifier", x.Name),
			slog.String("variable", ref.String()),
			slog.String("from", cur.kind.String()),
			slog.String("to", next.kind.String()),
		)

		last = next
	}

	e.push(last)

	return nil
}
