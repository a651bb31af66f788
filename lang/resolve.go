package lang

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ardnew/micron/log"
)

// Location addresses a value stored in an [Environment]: a scope, a variable
// name bound in it, and a sequence of dictionary keys.
//
// A Location holds a path, not the value, so writes through it are observed
// by every later read of the same variable. It is only valid until the next
// statement modifies the environment.
type Location struct {
	scope *Scope
	name  string
	keys  []string
}

// Scope returns the scope holding the addressed variable.
func (l Location) Scope() *Scope { return l.scope }

// String returns the path of l in source form.
func (l Location) String() string {
	var b strings.Builder

	b.WriteString(l.name)

	for _, k := range l.keys {
		b.WriteString(RawKey(k).String())
	}

	return b.String()
}

// Load returns the addressed value. The result shares storage with the
// environment.
func (l Location) Load() (Value, error) {
	root, ok := l.scope.vars[l.name]
	if !ok {
		return Value{}, ErrUnknownVariable.With(slog.String("name", l.name))
	}

	return walk(root, l.name, l.keys)
}

// Store replaces the addressed value with v.
func (l Location) Store(v Value) error {
	if len(l.keys) == 0 {
		l.scope.vars[l.name] = v

		return nil
	}

	root, ok := l.scope.vars[l.name]
	if !ok {
		return ErrUnknownVariable.With(slog.String("name", l.name))
	}

	last := len(l.keys) - 1

	parent, err := walk(root, l.name, l.keys[:last])
	if err != nil {
		return err
	}

	if parent.kind != KindDict {
		return ErrIncorrectType.With(
			slog.String("path", l.String()),
			slog.String("expected", KindDict.String()),
			slog.String("actual", parent.kind.String()),
		)
	}

	// Dict storage is shared with the binding, so this write is visible
	// through the variable.
	parent.dict[l.keys[last]] = v

	return nil
}

// walk follows keys through nested dictionaries starting at root.
func walk(root Value, name string, keys []string) (Value, error) {
	cur := root

	for i, key := range keys {
		if cur.kind != KindDict {
			return Value{}, ErrIncorrectType.With(
				slog.String("path", Location{name: name, keys: keys[:i]}.String()),
				slog.String("expected", KindDict.String()),
				slog.String("actual", cur.kind.String()),
			)
		}

		next, ok := cur.dict[key]
		if !ok {
			return Value{}, ErrUnknownKeyForDict.With(
				slog.String("key", key),
				slog.String("path", Location{name: name, keys: keys[:i]}.String()),
			)
		}

		cur = next
	}

	return cur, nil
}

// Resolver turns a [VariableRef] into a [Location].
type Resolver struct {
	env    *Environment
	logger log.Logger
}

// NewResolver returns a resolver over env.
func NewResolver(env *Environment, logger log.Logger) *Resolver {
	return &Resolver{env: env, logger: logger}
}

// Resolve locates the value addressed by ref. Every key of the chain must
// already exist; nothing is created.
func (r *Resolver) Resolve(ctx context.Context, ref VariableRef) (Location, error) {
	scope, ok := r.env.lookup(ref.Name)
	if !ok {
		return Location{}, ErrUnknownVariable.With(slog.String("name", ref.Name))
	}

	loc := Location{scope: scope, name: ref.Name}

	if len(ref.Chain) > 0 {
		loc.keys = make([]string, 0, len(ref.Chain))

		for _, acc := range ref.Chain {
			key, err := r.key(acc)
			if err != nil {
				return Location{}, err
			}

			loc.keys = append(loc.keys, key)
		}

		// Validates every step, including the terminal key.
		if _, err := walk(scope.vars[ref.Name], ref.Name, loc.keys); err != nil {
			return Location{}, err
		}
	}

	r.logger.TraceContext(ctx, "resolve",
		slog.String("ref", ref.String()),
		slog.String("scope", scope.name),
	)

	return loc, nil
}

// key returns the dictionary key named by acc.
func (r *Resolver) key(acc Accessor) (string, error) {
	if !acc.FromVariable {
		return acc.Key, nil
	}

	v, ok := r.env.Get(acc.Key)
	if !ok {
		return "", ErrUnknownVariable.With(slog.String("name", acc.Key))
	}

	if v.kind != KindString {
		return "", ErrIncorrectType.With(
			slog.String("name", acc.Key),
			slog.String("expected", KindString.String()),
			slog.String("actual", v.kind.String()),
		)
	}

	return v.str, nil
}

// Load resolves ref and returns its value.
func (r *Resolver) Load(ctx context.Context, ref VariableRef) (Value, error) {
	loc, err := r.Resolve(ctx, ref)
	if err != nil {
		return Value{}, err
	}

	return loc.Load()
}
