package lang

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/micron/log"
)

func lit(v Value) Expression { return &Literal{Value: v} }

func ivar(name string, chain ...Accessor) Expression {
	return &Variable{Ref: Nested(name, chain...)}
}

func bin(op Opcode, lhs, rhs Expression) Expression {
	return &BinaryOp{LHS: lhs, RHS: rhs, Op: op}
}

func un(op UnaryOpcode, x Expression) Expression {
	return &UnaryOp{Operand: x, Op: op}
}

func inf() Value { return MakeBigFloat(new(big.Float).SetInf(false)) }

func evaluate(t *testing.T, env *Environment, x Expression) (Value, error) {
	t.Helper()

	if env == nil {
		env = NewEnvironment()
	}

	e := NewEvaluator(env, log.Logger{})

	v, err := e.Evaluate(t.Context(), x)
	assert.Zero(t, e.Depth(), "stack must be empty after evaluation")

	return v, err
}

func TestBinary(t *testing.T) {
	tests := []struct {
		name     string
		op       Opcode
		lhs, rhs Value
		want     string
		wantKind Kind
		wantErr  error
	}{
		{name: "int add", op: OpAdd, lhs: MakeInt(2), rhs: MakeInt(3), want: "5", wantKind: KindInteger},
		{name: "int sub", op: OpSub, lhs: MakeInt(2), rhs: MakeInt(3), want: "-1", wantKind: KindInteger},
		{name: "int mul", op: OpMul, lhs: MakeInt(-4), rhs: MakeInt(3), want: "-12", wantKind: KindInteger},
		{name: "int div truncates", op: OpDiv, lhs: MakeInt(-7), rhs: MakeInt(2), want: "-3", wantKind: KindInteger},
		{name: "int mod sign of dividend", op: OpMod, lhs: MakeInt(-7), rhs: MakeInt(2), want: "-1", wantKind: KindInteger},
		{name: "int pow", op: OpPow, lhs: MakeInt(2), rhs: MakeInt(100), want: "1267650600228229401496703205376", wantKind: KindInteger},
		{name: "int lsh", op: OpLsh, lhs: MakeInt(1), rhs: MakeInt(70), want: "1180591620717411303424", wantKind: KindInteger},
		{name: "int rsh", op: OpRsh, lhs: MakeInt(-9), rhs: MakeInt(1), want: "-5", wantKind: KindInteger},
		{name: "int xor", op: OpBwXor, lhs: MakeInt(6), rhs: MakeInt(3), want: "5", wantKind: KindInteger},
		{name: "int or", op: OpBwOr, lhs: MakeInt(6), rhs: MakeInt(3), want: "7", wantKind: KindInteger},
		{name: "int and", op: OpBwAnd, lhs: MakeInt(6), rhs: MakeInt(3), want: "2", wantKind: KindInteger},
		{name: "lt", op: OpLt, lhs: MakeInt(1), rhs: MakeInt(2), want: "1", wantKind: KindInteger},
		{name: "gte", op: OpGte, lhs: MakeInt(1), rhs: MakeInt(2), want: "0", wantKind: KindInteger},
		{name: "mixed equal", op: OpEqual, lhs: MakeInt(2), rhs: MakeFloat(2), want: "1", wantKind: KindInteger},
		{name: "mixed ne", op: OpNe, lhs: MakeFloat(2.5), rhs: MakeInt(2), want: "1", wantKind: KindInteger},
		{name: "logical or negative is false", op: OpOr, lhs: MakeInt(-1), rhs: MakeInt(0), want: "0", wantKind: KindInteger},
		{name: "logical and", op: OpAnd, lhs: MakeInt(1), rhs: MakeInt(2), want: "1", wantKind: KindInteger},
		{name: "float logical or", op: OpOr, lhs: MakeFloat(0.5), rhs: MakeFloat(0), want: "1", wantKind: KindInteger},

		{name: "int plus float", op: OpAdd, lhs: MakeInt(1), rhs: MakeFloat(0.5), want: "1.5", wantKind: KindFloat},
		{name: "float div", op: OpDiv, lhs: MakeFloat(1), rhs: MakeInt(4), want: "0.25", wantKind: KindFloat},
		{name: "float mod", op: OpMod, lhs: MakeFloat(7.5), rhs: MakeInt(2), want: "1.5", wantKind: KindFloat},
		{name: "negative float mod", op: OpMod, lhs: MakeFloat(-7.5), rhs: MakeInt(2), want: "-1.5", wantKind: KindFloat},
		{name: "float mod by inf", op: OpMod, lhs: MakeFloat(3), rhs: inf(), want: "3.0", wantKind: KindFloat},
		{name: "float integral pow", op: OpPow, lhs: MakeFloat(1.5), rhs: MakeInt(2), want: "2.25", wantKind: KindFloat},
		{name: "float negative pow", op: OpPow, lhs: MakeFloat(2), rhs: MakeFloat(-2), want: "0.25", wantKind: KindFloat},
		{name: "float fractional pow", op: OpPow, lhs: MakeFloat(4), rhs: MakeFloat(0.5), want: "2.0", wantKind: KindFloat},
		{name: "float shift yields integer", op: OpRsh, lhs: MakeFloat(5.5), rhs: MakeInt(1), want: "2", wantKind: KindInteger},
		{name: "float bitwise refloats", op: OpBwAnd, lhs: MakeFloat(6.5), rhs: MakeFloat(3), want: "2.0", wantKind: KindFloat},

		{name: "string concat", op: OpAdd, lhs: MakeString("abc"), rhs: MakeInt(1), want: `"abc1"`, wantKind: KindString},
		{name: "string concat on right", op: OpAdd, lhs: MakeInt(1), rhs: MakeString("abc"), want: `"1abc"`, wantKind: KindString},
		{name: "string concat float", op: OpAdd, lhs: MakeString("x="), rhs: MakeFloat(2), want: `"x=2.0"`, wantKind: KindString},

		{name: "string sub", op: OpSub, lhs: MakeString("a"), rhs: MakeInt(1), wantErr: ErrInvalidStringExpression},
		{name: "string compare", op: OpEqual, lhs: MakeString("a"), rhs: MakeString("a"), wantErr: ErrInvalidStringExpression},
		{name: "dict with string", op: OpAdd, lhs: MakeDict(nil), rhs: MakeString("a"), wantErr: ErrInvalidExpression},
		{name: "dict with int", op: OpMul, lhs: MakeInt(1), rhs: MakeDict(nil), wantErr: ErrInvalidExpression},
		{name: "int div by zero", op: OpDiv, lhs: MakeInt(1), rhs: MakeInt(0), wantErr: ErrDivisionByZero},
		{name: "int mod by zero", op: OpMod, lhs: MakeInt(1), rhs: MakeInt(0), wantErr: ErrDivisionByZero},
		{name: "float div by zero", op: OpDiv, lhs: MakeFloat(1), rhs: MakeInt(0), wantErr: ErrDivisionByZero},
		{name: "float mod by zero", op: OpMod, lhs: MakeFloat(1), rhs: MakeFloat(0), wantErr: ErrDivisionByZero},
		{name: "inf minus inf", op: OpSub, lhs: inf(), rhs: inf(), wantErr: ErrDivisionByZero},
		{name: "negative exponent", op: OpPow, lhs: MakeInt(2), rhs: MakeInt(-1), wantErr: ErrConversionFailure},
		{name: "huge exponent", op: OpPow, lhs: MakeInt(2), rhs: MakeInt(1 << 32), wantErr: ErrConversionFailure},
		{name: "negative shift", op: OpLsh, lhs: MakeInt(1), rhs: MakeInt(-1), wantErr: ErrConversionFailure},
		{name: "unallocatable shift", op: OpLsh, lhs: MakeInt(1), rhs: MakeInt(math.MaxInt64), wantErr: ErrConversionFailure},
		{name: "unallocatable power", op: OpPow, lhs: MakeInt(10), rhs: MakeInt(math.MaxUint32), wantErr: ErrConversionFailure},
		{name: "zero shifted any distance", op: OpLsh, lhs: MakeInt(0), rhs: MakeInt(math.MaxInt64), want: "0", wantKind: KindInteger},
		{name: "minus one to a large power", op: OpPow, lhs: MakeInt(-1), rhs: MakeInt(math.MaxUint32), want: "-1", wantKind: KindInteger},
		{name: "right shift any distance", op: OpRsh, lhs: MakeInt(-5), rhs: MakeInt(math.MaxInt64), want: "-1", wantKind: KindInteger},
		{name: "fractional pow of negative", op: OpPow, lhs: MakeFloat(-8), rhs: MakeFloat(0.5), wantErr: ErrConversionFailure},
		{name: "inf shift", op: OpLsh, lhs: inf(), rhs: MakeInt(1), wantErr: ErrConversionFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := evaluate(t, nil, bin(tt.op, lit(tt.lhs), lit(tt.rhs)))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, v.Kind())
			assert.Equal(t, tt.want, v.String())
		})
	}
}

func TestBinaryPromotesToFloatPrecision(t *testing.T) {
	wide := mustPrec(t, MakeFloat(0.5), 200)

	v, err := evaluate(t, nil, bin(OpAdd, lit(MakeInt(1)), lit(wide)))
	require.NoError(t, err)
	assert.Equal(t, uint(200), v.Precision())

	v, err = evaluate(t, nil, bin(OpMul, lit(wide), lit(MakeFloat(2))))
	require.NoError(t, err)
	assert.Equal(t, uint(200), v.Precision(), "result takes the wider precision")
}

func TestBinaryDoesNotMutateOperands(t *testing.T) {
	env := NewEnvironment()
	env.Set("x", MakeInt(5))

	_, err := evaluate(t, env, bin(OpAdd, ivar("x"), lit(MakeInt(1))))
	require.NoError(t, err)

	v, _ := env.Get("x")
	assert.Equal(t, "5", v.String())
}

func TestUnary(t *testing.T) {
	tests := []struct {
		name    string
		op      UnaryOpcode
		v       Value
		want    string
		wantErr error
	}{
		{name: "negate zero", op: OpNegate, v: MakeInt(0), want: "1"},
		{name: "negate positive", op: OpNegate, v: MakeInt(5), want: "0"},
		{name: "negate negative", op: OpNegate, v: MakeInt(-3), want: "1"},
		{name: "negate truncated float", op: OpNegate, v: MakeFloat(0.7), want: "1"},
		{name: "complement", op: OpBwNot, v: MakeInt(5), want: "-6"},
		{name: "complement float", op: OpBwNot, v: MakeFloat(2.9), want: "-3"},
		{name: "string", op: OpNegate, v: MakeString("a"), wantErr: ErrInvalidUnaryOperation},
		{name: "dict", op: OpBwNot, v: MakeDict(nil), wantErr: ErrInvalidUnaryOperation},
		{name: "infinity", op: OpNegate, v: inf(), wantErr: ErrConversionFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := evaluate(t, nil, un(tt.op, lit(tt.v)))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, KindInteger, v.Kind())
			assert.Equal(t, tt.want, v.String())
		})
	}
}

func TestRightOperandEvaluatesFirst(t *testing.T) {
	env := NewEnvironment()
	env.Set("x", MakeInt(5))

	// The modifier on the right turns x into a String before the left side
	// calls a String-only method on it.
	x := bin(OpAdd,
		&Access{Receiver: ivar("x"), Method: "at", Params: []Expression{lit(MakeInt(0))}},
		&ModifierCall{Name: "to_string", Vars: []VariableRef{Singular("x")}},
	)

	v, err := evaluate(t, env, x)
	require.NoError(t, err)
	assert.Equal(t, `"55"`, v.String())
}

func TestStackClearedAfterError(t *testing.T) {
	env := NewEnvironment()
	e := NewEvaluator(env, log.Logger{})

	_, err := e.Evaluate(t.Context(), bin(OpAdd,
		bin(OpMul, lit(MakeInt(2)), lit(MakeInt(3))),
		bin(OpDiv, lit(MakeInt(1)), lit(MakeInt(0))),
	))
	require.ErrorIs(t, err, ErrDivisionByZero)
	assert.Zero(t, e.Depth())

	v, err := e.Evaluate(t.Context(), bin(OpAdd, lit(MakeInt(2)), lit(MakeInt(2))))
	require.NoError(t, err)
	assert.Equal(t, "4", v.String())
}

func TestUnknownNode(t *testing.T) {
	_, err := evaluate(t, nil, nil)
	require.ErrorIs(t, err, ErrInvalidExpression)
}

func TestDictLiteral(t *testing.T) {
	env := NewEnvironment()
	env.Set("y", MakeDict(Dict{"a": MakeInt(1)}))

	v, err := evaluate(t, env, &DictLit{Entries: []DictEntry{
		{Key: "k", Value: lit(MakeInt(1))},
		{Key: "y", Value: ivar("y")},
		{Key: "k", Value: lit(MakeString("later"))},
	}})
	require.NoError(t, err)
	assert.Equal(t, `{"k": "later", "y": {"a": 1}}`, v.String())

	// Entries are copies of their sources.
	v.Dict()["y"].Dict()["a"] = MakeInt(2)

	y, _ := env.Get("y")
	assert.Equal(t, `{"a": 1}`, y.String())
}

func TestDictLiteralError(t *testing.T) {
	_, err := evaluate(t, nil, &DictLit{Entries: []DictEntry{
		{Key: "a", Value: lit(MakeInt(1))},
		{Key: "b", Value: ivar("missing")},
	}})
	require.ErrorIs(t, err, ErrUnknownVariable)
}

func TestModifier(t *testing.T) {
	env := NewEnvironment()
	env.Set("a", MakeString("12"))
	env.Set("b", MakeFloat(2.5))
	env.Set("d", MakeDict(Dict{"n": MakeString("3")}))

	v, err := evaluate(t, env, &ModifierCall{
		Name: "to_integer",
		Vars: []VariableRef{Singular("a"), Singular("b"), Nested("d", RawKey("n"))},
	})
	require.NoError(t, err)
	assert.Equal(t, "3", v.String(), "evaluates to the last converted value")

	a, _ := env.Get("a")
	b, _ := env.Get("b")
	d, _ := env.Get("d")
	assert.Equal(t, "12", a.String())
	assert.Equal(t, "2", b.String())
	assert.Equal(t, `{"n": 3}`, d.String())
}

func TestModifierPartialMutation(t *testing.T) {
	env := NewEnvironment()
	env.Set("a", MakeString("1"))
	env.Set("b", MakeString("oops"))
	env.Set("c", MakeString("3"))

	_, err := evaluate(t, env, &ModifierCall{
		Name: "to_integer",
		Vars: []VariableRef{Singular("a"), Singular("b"), Singular("c")},
	})
	require.ErrorIs(t, err, ErrConversionFailure)

	a, _ := env.Get("a")
	b, _ := env.Get("b")
	c, _ := env.Get("c")
	assert.Equal(t, KindInteger, a.Kind(), "conversions before the failure are kept")
	assert.Equal(t, KindString, b.Kind())
	assert.Equal(t, KindString, c.Kind(), "conversions after the failure are not made")
}

func TestModifierErrors(t *testing.T) {
	env := NewEnvironment()
	env.Set("a", MakeInt(1))

	_, err := evaluate(t, env, &ModifierCall{Name: "to_string"})
	require.ErrorIs(t, err, ErrInvalidNumberOfParameters)

	_, err = evaluate(t, env, &ModifierCall{Name: "to_bool", Vars: []VariableRef{Singular("a")}})
	require.ErrorIs(t, err, ErrUnknownMethod)

	_, err = evaluate(t, env, &ModifierCall{Name: "to_float", Vars: []VariableRef{Singular("z")}})
	require.ErrorIs(t, err, ErrUnknownVariable)

	_, err = evaluate(t, env, &ModifierCall{Name: "to_float", Vars: []VariableRef{Nested("a", RawKey("k"))}})
	require.ErrorIs(t, err, ErrIncorrectType)
}

func TestModifierThenBinaryUsesConvertedValue(t *testing.T) {
	env := NewEnvironment()
	env.Set("x", MakeString("40"))

	v, err := evaluate(t, env, bin(OpAdd,
		&ModifierCall{Name: "to_integer", Vars: []VariableRef{Singular("x")}},
		lit(MakeInt(2)),
	))
	require.NoError(t, err)
	assert.Equal(t, "42", v.String())
}
