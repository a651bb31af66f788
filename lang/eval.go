package lang

import (
	"context"
	"log/slog"

	"github.com/ardnew/micron/log"
)

// operand is one entry of the evaluation stack. Values loaded from a variable
// keep the location they were read from.
type operand struct {
	loc *Location
	val Value
}

// Evaluator computes the value of expressions against an [Environment].
//
// Evaluation uses an explicit operand stack. Each node pushes exactly one
// operand; operators pop their inputs and push their result. The stack is
// empty between calls to [Evaluator.Evaluate].
type Evaluator struct {
	env      *Environment
	resolver *Resolver
	logger   log.Logger
	stack    []operand
}

// NewEvaluator returns an evaluator over env.
func NewEvaluator(env *Environment, logger log.Logger) *Evaluator {
	return &Evaluator{
		env:      env,
		resolver: NewResolver(env, logger),
		logger:   logger,
	}
}

// Depth returns the number of operands on the stack.
func (e *Evaluator) Depth() int { return len(e.stack) }

// Evaluate computes the value of expr. The result may share storage with the
// environment.
func (e *Evaluator) Evaluate(ctx context.Context, expr Expression) (v Value, err error) {
	e.reset()

	defer func() {
		if err != nil {
			e.reset()
		}
	}()

	if err = e.run(ctx, expr); err != nil {
		return Value{}, err
	}

	top, err := e.pop()
	if err != nil {
		return Value{}, err
	}

	if len(e.stack) != 0 {
		return Value{}, ErrStack.With(slog.Int("remaining", len(e.stack)))
	}

	return top.val, nil
}

func (e *Evaluator) reset() {
	clear(e.stack)
	e.stack = e.stack[:0]
}

func (e *Evaluator) push(v Value) {
	e.stack = append(e.stack, operand{val: v})
}

func (e *Evaluator) pop() (operand, error) {
	n := len(e.stack)
	if n == 0 {
		return operand{}, ErrStack.With(slog.String("operation", "pop"))
	}

	top := e.stack[n-1]
	e.stack[n-1] = operand{}
	e.stack = e.stack[:n-1]

	return top, nil
}

// popN pops n operands and returns them in the order they were pushed.
func (e *Evaluator) popN(n int) ([]Value, error) {
	if len(e.stack) < n {
		return nil, ErrStack.With(
			slog.String("operation", "pop"),
			slog.Int("want", n),
			slog.Int("have", len(e.stack)),
		)
	}

	vals := make([]Value, n)
	for i := n - 1; i >= 0; i-- {
		top, _ := e.pop()
		vals[i] = top.val
	}

	return vals, nil
}

// run evaluates expr and pushes its value.
func (e *Evaluator) run(ctx context.Context, expr Expression) error {
	switch x := expr.(type) {
	case *Literal:
		e.push(x.Value)

		return nil

	case *Variable:
		loc, err := e.resolver.Resolve(ctx, x.Ref)
		if err != nil {
			return err
		}

		v, err := loc.Load()
		if err != nil {
			return err
		}

		e.stack = append(e.stack, operand{val: v, loc: &loc})

		return nil

	case *BinaryOp:
		return e.runBinary(ctx, x)

	case *UnaryOp:
		return e.runUnary(ctx, x)

	case *DictLit:
		return e.runDict(ctx, x)

	case *ModifierCall:
		return e.runModifier(ctx, x)

	case *Access:
		return e.runAccess(ctx, x)

	default:
		return ErrInvalidExpression.With(slog.String("node", typeName(expr)))
	}
}

func (e *Evaluator) runBinary(ctx context.Context, x *BinaryOp) error {
	if err := e.run(ctx, x.RHS); err != nil {
		return err
	}

	if err := e.run(ctx, x.LHS); err != nil {
		return err
	}

	lhs, err := e.pop()
	if err != nil {
		return err
	}

	rhs, err := e.pop()
	if err != nil {
		return err
	}

	e.logger.TraceContext(ctx, "binary",
		slog.String("op", x.Op.String()),
		slog.String("lhs", lhs.val.kind.String()),
		slog.String("rhs", rhs.val.kind.String()),
	)

	v, err := binary(x.Op, lhs.val, rhs.val)
	if err != nil {
		return err
	}

	e.push(v)

	return nil
}

func (e *Evaluator) runUnary(ctx context.Context, x *UnaryOp) error {
	if err := e.run(ctx, x.Operand); err != nil {
		return err
	}

	arg, err := e.pop()
	if err != nil {
		return err
	}

	e.logger.TraceContext(ctx, "unary",
		slog.String("op", x.Op.String()),
		slog.String("operand", arg.val.kind.String()),
	)

	v, err := unary(x.Op, arg.val)
	if err != nil {
		return err
	}

	e.push(v)

	return nil
}

func (e *Evaluator) runDict(ctx context.Context, x *DictLit) error {
	for _, entry := range x.Entries {
		if err := e.run(ctx, entry.Value); err != nil {
			return err
		}
	}

	vals, err := e.popN(len(x.Entries))
	if err != nil {
		return err
	}

	d := make(Dict, len(x.Entries))
	for i, entry := range x.Entries {
		d[entry.Key] = vals[i].Clone()
	}

	e.push(Value{kind: KindDict, dict: d})

	return nil
}

// typeName returns a short name for the dynamic type of a node.
func typeName(node any) string {
	switch node.(type) {
	case nil:
		return "nil"
	case *Literal:
		return "Literal"
	case *Variable:
		return "Variable"
	case *BinaryOp:
		return "BinaryOp"
	case *UnaryOp:
		return "UnaryOp"
	case *DictLit:
		return "DictLit"
	case *ModifierCall:
		return "ModifierCall"
	case *Access:
		return "Access"
	case *Assignment:
		return "Assignment"
	case *BareExpression:
		return "BareExpression"
	default:
		return "unknown"
	}
}
