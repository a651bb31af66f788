package lang

import (
	"iter"
	"log/slog"
)

// GlobalScope is the name of the base scope of every [Environment].
const GlobalScope = "global"

// Scope is one level of variable bindings.
type Scope struct {
	vars map[string]Value
	name string
}

func newScope(name string) *Scope {
	return &Scope{name: name, vars: make(map[string]Value)}
}

// Name returns the name the scope was pushed with.
func (s *Scope) Name() string { return s.name }

// Len returns the number of variables bound in s.
func (s *Scope) Len() int { return len(s.vars) }

// Get returns the value bound to name in s.
func (s *Scope) Get(name string) (Value, bool) {
	v, ok := s.vars[name]

	return v, ok
}

// All returns an iterator over the bindings of s in name order.
func (s *Scope) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for _, name := range sortedKeys(s.vars) {
			if !yield(name, s.vars[name]) {
				return
			}
		}
	}
}

// Environment is a stack of scopes. Lookups search from the innermost scope
// outward; assignments always bind in the innermost scope.
//
// The zero Environment is ready to use and starts with a [GlobalScope].
type Environment struct {
	scopes []*Scope
}

// NewEnvironment returns an environment holding a single [GlobalScope].
func NewEnvironment() *Environment {
	return &Environment{scopes: []*Scope{newScope(GlobalScope)}}
}

// current returns the innermost scope, creating the base scope if the stack
// is empty.
func (e *Environment) current() *Scope {
	if len(e.scopes) == 0 {
		e.scopes = append(e.scopes, newScope(GlobalScope))
	}

	return e.scopes[len(e.scopes)-1]
}

// Current returns the innermost scope.
func (e *Environment) Current() *Scope { return e.current() }

// Depth returns the number of scopes on the stack.
func (e *Environment) Depth() int {
	e.current()

	return len(e.scopes)
}

// PushScope pushes a new empty scope with the given name.
func (e *Environment) PushScope(name string) {
	e.current()
	e.scopes = append(e.scopes, newScope(name))
}

// PopScope discards the innermost scope and every value it owns.
// The base scope cannot be popped.
func (e *Environment) PopScope() error {
	if e.Depth() == 1 {
		return ErrUnknownScope.With(
			slog.String("operation", "pop"),
			slog.String("scope", e.scopes[0].name),
		)
	}

	e.scopes[len(e.scopes)-1] = nil
	e.scopes = e.scopes[:len(e.scopes)-1]

	return nil
}

// Global returns the base scope.
func (e *Environment) Global() *Scope {
	e.current()

	return e.scopes[0]
}

// Scopes returns an iterator over the scopes from innermost to outermost.
func (e *Environment) Scopes() iter.Seq[*Scope] {
	e.current()

	return func(yield func(*Scope) bool) {
		for i := len(e.scopes) - 1; i >= 0; i-- {
			if !yield(e.scopes[i]) {
				return
			}
		}
	}
}

// lookup returns the innermost scope binding name.
func (e *Environment) lookup(name string) (*Scope, bool) {
	for s := range e.Scopes() {
		if _, ok := s.vars[name]; ok {
			return s, true
		}
	}

	return nil, false
}

// Get returns the value of the innermost binding of name.
//
// The returned value shares storage with the environment; clone it before
// modifying it.
func (e *Environment) Get(name string) (Value, bool) {
	s, ok := e.lookup(name)
	if !ok {
		return Value{}, false
	}

	return s.vars[name], true
}

// GetIn returns the value bound to name in the innermost scope called scope.
func (e *Environment) GetIn(scope, name string) (Value, error) {
	for s := range e.Scopes() {
		if s.name != scope {
			continue
		}

		v, ok := s.vars[name]
		if !ok {
			return Value{}, ErrUnknownVariable.With(
				slog.String("name", name),
				slog.String("scope", scope),
			)
		}

		return v, nil
	}

	return Value{}, ErrUnknownScope.With(slog.String("scope", scope))
}

// Set binds v to name in the innermost scope. A binding of the same name in
// an outer scope is shadowed, not modified.
func (e *Environment) Set(name string, v Value) {
	e.current().vars[name] = v
}
