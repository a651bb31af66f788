package lang

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/ardnew/micron/log"
)

// Interpreter executes statements against one [Environment] for the lifetime
// of a session.
type Interpreter struct {
	env    *Environment
	eval   *Evaluator
	logger log.Logger
}

// Option configures an [Interpreter].
type Option func(*Interpreter)

// WithLogger sets the logger used to trace evaluation.
func WithLogger(logger log.Logger) Option {
	return func(in *Interpreter) {
		in.logger = logger
	}
}

// WithEnvironment runs the interpreter against an existing environment.
func WithEnvironment(env *Environment) Option {
	return func(in *Interpreter) {
		if env != nil {
			in.env = env
		}
	}
}

// NewInterpreter returns an interpreter with a fresh environment unless
// [WithEnvironment] is given.
func NewInterpreter(opts ...Option) *Interpreter {
	in := new(Interpreter)

	for _, opt := range opts {
		opt(in)
	}

	if in.env == nil {
		in.env = NewEnvironment()
	}

	in.eval = NewEvaluator(in.env, in.logger)

	return in
}

// Environment returns the environment the interpreter executes against.
func (in *Interpreter) Environment() *Environment { return in.env }

// Logger returns the logger used by the interpreter.
func (in *Interpreter) Logger() log.Logger { return in.logger }

// Interpret executes stmt. For a [BareExpression] it returns the value of the
// expression; for an [Assignment] it returns nil.
//
// Returned values never share storage with the environment.
func (in *Interpreter) Interpret(ctx context.Context, stmt Statement) (*Value, error) {
	switch s := stmt.(type) {
	case *Assignment:
		in.logger.TraceContext(ctx, "assignment",
			slog.String("target", s.Target.String()),
			slog.Bool("nested", s.Target.IsNested()),
		)

		v, err := in.eval.Evaluate(ctx, s.Value)
		if err != nil {
			return nil, err
		}

		return nil, in.assign(ctx, s.Target, v.Clone())

	case *BareExpression:
		v, err := in.eval.Evaluate(ctx, s.Expr)
		if err != nil {
			return nil, err
		}

		v = v.Clone()

		in.logger.TraceContext(ctx, "expression", valueAttr("result", v))

		return &v, nil

	default:
		return nil, ErrInvalidExpression.With(slog.String("node", typeName(stmt)))
	}
}

func (in *Interpreter) assign(ctx context.Context, target VariableRef, v Value) error {
	if !target.IsNested() {
		in.env.Set(target.Name, v)

		return nil
	}

	loc, err := in.eval.resolver.Resolve(ctx, target)
	if err != nil {
		// Nothing is created by assignment, so a missing key means the
		// target variable does not exist.
		if errors.Is(err, ErrUnknownKeyForDict) {
			return ErrUnknownVariable.Wrap(err).With(
				slog.String("name", target.Name),
				slog.String("path", target.String()),
			)
		}

		return err
	}

	return loc.Store(v)
}

// Result is the outcome of one statement executed by [Interpreter.Exec].
type Result struct {
	Value     *Value
	Statement Statement
}

// Exec parses src and executes its statements in order. It returns the
// results of the statements executed before the first error.
func (in *Interpreter) Exec(ctx context.Context, src string) ([]Result, error) {
	stmts, err := ParseString(ctx, src, WithParseLogger(in.logger))
	if err != nil {
		return nil, err
	}

	return in.Run(ctx, stmts)
}

// ExecReader reads all of r and executes it as with [Interpreter.Exec].
func (in *Interpreter) ExecReader(ctx context.Context, r io.Reader) ([]Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, ErrReadInput.Wrap(err)
	}

	return in.Exec(ctx, string(data))
}

// Run executes stmts in order and stops at the first error.
func (in *Interpreter) Run(ctx context.Context, stmts []Statement) ([]Result, error) {
	results := make([]Result, 0, len(stmts))

	for _, stmt := range stmts {
		v, err := in.Interpret(ctx, stmt)
		if err != nil {
			return results, err
		}

		results = append(results, Result{Statement: stmt, Value: v})
	}

	return results, nil
}
