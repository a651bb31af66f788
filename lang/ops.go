package lang

import (
	"errors"
	"log/slog"
	"math"
	"math/big"
)

// binary applies op to lhs and rhs. All coercion between operand kinds is
// decided here:
//
//   - a Dict on either side is never valid;
//   - a String on either side allows only Add, which concatenates the text
//     of both operands in place;
//   - two Integers use integer arithmetic;
//   - otherwise an Integer is promoted to the precision of the Float.
func binary(op Opcode, lhs, rhs Value) (Value, error) {
	switch {
	case lhs.kind == KindDict || rhs.kind == KindDict:
		return Value{}, ErrInvalidExpression.With(
			slog.String("op", op.String()),
			slog.String("lhs", lhs.kind.String()),
			slog.String("rhs", rhs.kind.String()),
		)

	case lhs.kind == KindString || rhs.kind == KindString:
		if op != OpAdd {
			return Value{}, ErrInvalidStringExpression.With(
				slog.String("op", op.String()),
				slog.String("lhs", lhs.kind.String()),
				slog.String("rhs", rhs.kind.String()),
			)
		}

		l, _ := lhs.ToString()
		r, _ := rhs.ToString()

		return MakeString(l.str + r.str), nil

	case lhs.kind == KindInteger && rhs.kind == KindInteger:
		fn, ok := intOps[op]
		if !ok {
			return Value{}, ErrInvalidExpression.With(slog.String("op", op.String()))
		}

		return fn(lhs.Int(), rhs.Int())

	default:
		x, y := lhs.Float(), rhs.Float()

		switch {
		case x == nil:
			x = promote(lhs.Int(), y.Prec())
		case y == nil:
			y = promote(rhs.Int(), x.Prec())
		}

		fn, ok := floatOps[op]
		if !ok {
			return Value{}, ErrInvalidExpression.With(slog.String("op", op.String()))
		}

		return guardNaN(op, func() (Value, error) { return fn(x, y) })
	}
}

// unary applies op to v. Floats are truncated to Integers first.
func unary(op UnaryOpcode, v Value) (Value, error) {
	var n *big.Int

	switch v.kind {
	case KindInteger:
		n = v.Int()

	case KindFloat:
		t, err := truncate(v.Float())
		if err != nil {
			return Value{}, err
		}

		n = t

	default:
		return Value{}, ErrInvalidUnaryOperation.With(
			slog.String("op", op.String()),
			slog.String("type", v.kind.String()),
		)
	}

	switch op {
	case OpNegate:
		return boolValue(n.Sign() <= 0), nil

	case OpBwNot:
		return intValue(new(big.Int).Not(n)), nil

	default:
		return Value{}, ErrInvalidUnaryOperation.With(slog.String("op", op.String()))
	}
}

type (
	intOp   func(x, y *big.Int) (Value, error)
	floatOp func(x, y *big.Float) (Value, error)
)

var intOps = map[Opcode]intOp{
	OpAdd: func(x, y *big.Int) (Value, error) { return intValue(new(big.Int).Add(x, y)), nil },
	OpSub: func(x, y *big.Int) (Value, error) { return intValue(new(big.Int).Sub(x, y)), nil },
	OpMul: func(x, y *big.Int) (Value, error) { return intValue(new(big.Int).Mul(x, y)), nil },
	OpDiv: func(x, y *big.Int) (Value, error) {
		if y.Sign() == 0 {
			return Value{}, ErrDivisionByZero.With(slog.String("op", OpDiv.String()))
		}

		return intValue(new(big.Int).Quo(x, y)), nil
	},
	OpMod: func(x, y *big.Int) (Value, error) {
		if y.Sign() == 0 {
			return Value{}, ErrDivisionByZero.With(slog.String("op", OpMod.String()))
		}

		return intValue(new(big.Int).Rem(x, y)), nil
	},
	OpPow: func(x, y *big.Int) (Value, error) {
		e, err := exponent(y)
		if err != nil {
			return Value{}, err
		}

		// |x| >= 2 gives at least (BitLen(x)-1)*e bits.
		if x.BitLen() > 1 {
			if err := resultBits(OpPow, uint64(x.BitLen()-1)*uint64(e)); err != nil {
				return Value{}, err
			}
		}

		return intValue(new(big.Int).Exp(x, new(big.Int).SetUint64(uint64(e)), nil)), nil
	},
	OpLsh: func(x, y *big.Int) (Value, error) {
		n, err := shift(OpLsh, y)
		if err != nil {
			return Value{}, err
		}

		if x.Sign() != 0 {
			if n > maxIntBits {
				return Value{}, resultBits(OpLsh, uint64(n))
			}

			if err := resultBits(OpLsh, uint64(x.BitLen())+uint64(n)); err != nil {
				return Value{}, err
			}
		}

		return intValue(new(big.Int).Lsh(x, n)), nil
	},
	OpRsh: func(x, y *big.Int) (Value, error) {
		n, err := shift(OpRsh, y)
		if err != nil {
			return Value{}, err
		}

		return intValue(new(big.Int).Rsh(x, n)), nil
	},
	OpBwXor: func(x, y *big.Int) (Value, error) { return intValue(new(big.Int).Xor(x, y)), nil },
	OpBwOr:  func(x, y *big.Int) (Value, error) { return intValue(new(big.Int).Or(x, y)), nil },
	OpBwAnd: func(x, y *big.Int) (Value, error) { return intValue(new(big.Int).And(x, y)), nil },
	OpLte:   func(x, y *big.Int) (Value, error) { return boolValue(x.Cmp(y) <= 0), nil },
	OpGte:   func(x, y *big.Int) (Value, error) { return boolValue(x.Cmp(y) >= 0), nil },
	OpGt:    func(x, y *big.Int) (Value, error) { return boolValue(x.Cmp(y) > 0), nil },
	OpLt:    func(x, y *big.Int) (Value, error) { return boolValue(x.Cmp(y) < 0), nil },
	OpEqual: func(x, y *big.Int) (Value, error) { return boolValue(x.Cmp(y) == 0), nil },
	OpNe:    func(x, y *big.Int) (Value, error) { return boolValue(x.Cmp(y) != 0), nil },
	OpOr:    func(x, y *big.Int) (Value, error) { return boolValue(x.Sign() > 0 || y.Sign() > 0), nil },
	OpAnd:   func(x, y *big.Int) (Value, error) { return boolValue(x.Sign() > 0 && y.Sign() > 0), nil },
}

var floatOps = map[Opcode]floatOp{
	OpAdd: func(x, y *big.Float) (Value, error) { return floatValue(new(big.Float).Add(x, y)), nil },
	OpSub: func(x, y *big.Float) (Value, error) { return floatValue(new(big.Float).Sub(x, y)), nil },
	OpMul: func(x, y *big.Float) (Value, error) { return floatValue(new(big.Float).Mul(x, y)), nil },
	OpDiv: func(x, y *big.Float) (Value, error) {
		if y.Sign() == 0 {
			return Value{}, ErrDivisionByZero.With(slog.String("op", OpDiv.String()))
		}

		return floatValue(new(big.Float).Quo(x, y)), nil
	},
	OpMod: floatMod,
	OpPow: floatPow,
	OpLsh: func(x, y *big.Float) (Value, error) { return truncated(OpLsh, x, y, false) },
	OpRsh: func(x, y *big.Float) (Value, error) { return truncated(OpRsh, x, y, false) },
	OpBwXor: func(x, y *big.Float) (Value, error) {
		return truncated(OpBwXor, x, y, true)
	},
	OpBwOr: func(x, y *big.Float) (Value, error) {
		return truncated(OpBwOr, x, y, true)
	},
	OpBwAnd: func(x, y *big.Float) (Value, error) {
		return truncated(OpBwAnd, x, y, true)
	},
	OpLte:   func(x, y *big.Float) (Value, error) { return boolValue(x.Cmp(y) <= 0), nil },
	OpGte:   func(x, y *big.Float) (Value, error) { return boolValue(x.Cmp(y) >= 0), nil },
	OpGt:    func(x, y *big.Float) (Value, error) { return boolValue(x.Cmp(y) > 0), nil },
	OpLt:    func(x, y *big.Float) (Value, error) { return boolValue(x.Cmp(y) < 0), nil },
	OpEqual: func(x, y *big.Float) (Value, error) { return boolValue(x.Cmp(y) == 0), nil },
	OpNe:    func(x, y *big.Float) (Value, error) { return boolValue(x.Cmp(y) != 0), nil },
	OpOr:    func(x, y *big.Float) (Value, error) { return boolValue(x.Sign() > 0 || y.Sign() > 0), nil },
	OpAnd:   func(x, y *big.Float) (Value, error) { return boolValue(x.Sign() > 0 && y.Sign() > 0), nil },
}

// guardNaN converts the panic raised by math/big for results that are not a
// number (0/0, Inf-Inf, 0*Inf) into an error.
func guardNaN(op Opcode, fn func() (Value, error)) (v Value, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}

		var nan big.ErrNaN
		if e, ok := r.(error); ok && errors.As(e, &nan) {
			v, err = Value{}, ErrDivisionByZero.With(
				slog.String("op", op.String()),
				slog.String("detail", nan.Error()),
			)

			return
		}

		panic(r)
	}()

	return fn()
}

// exponent returns y if it fits in 32 unsigned bits.
func exponent(y *big.Int) (uint32, error) {
	if !y.IsUint64() || y.Uint64() > math.MaxUint32 {
		return 0, ErrConversionFailure.With(
			slog.String("operation", OpPow.String()),
			slog.String("exponent", y.String()),
			slog.String("range", "uint32"),
		)
	}

	return uint32(y.Uint64()), nil
}

// shift returns y if it fits in 64 unsigned bits.
func shift(op Opcode, y *big.Int) (uint, error) {
	if !y.IsUint64() || y.Uint64() > math.MaxUint {
		return 0, ErrConversionFailure.With(
			slog.String("operation", op.String()),
			slog.String("shift", y.String()),
			slog.String("range", "uint64"),
		)
	}

	return uint(y.Uint64()), nil
}

// maxIntBits is the largest bit length an Integer result may reach.
const maxIntBits = 1 << 30

// resultBits fails when an Integer result of the given bit length would
// exceed [maxIntBits].
func resultBits(op Opcode, bits uint64) error {
	if bits <= maxIntBits {
		return nil
	}

	return ErrConversionFailure.With(
		slog.String("operation", op.String()),
		slog.Uint64("bits", bits),
		slog.String("range", "integer result"),
		slog.String("detail", "result too large"),
	)
}

// truncated applies an integer-only operator to the integer parts of x and
// y. Bitwise results are returned as Floats at the wider precision when
// refloat is set.
func truncated(op Opcode, x, y *big.Float, refloat bool) (Value, error) {
	a, err := truncate(x)
	if err != nil {
		return Value{}, err
	}

	b, err := truncate(y)
	if err != nil {
		return Value{}, err
	}

	v, err := intOps[op](a, b)
	if err != nil || !refloat {
		return v, err
	}

	return floatValue(promote(v.Int(), max(x.Prec(), y.Prec()))), nil
}

// floatMod returns the remainder of x/y truncated toward zero, with the sign
// of x.
func floatMod(x, y *big.Float) (Value, error) {
	prec := max(x.Prec(), y.Prec())

	switch {
	case y.Sign() == 0:
		return Value{}, ErrDivisionByZero.With(slog.String("op", OpMod.String()))

	case x.IsInf():
		return Value{}, ErrConversionFailure.With(
			slog.String("operation", OpMod.String()),
			slog.String("input", x.Text('g', -1)),
		)

	case y.IsInf():
		return floatValue(new(big.Float).SetPrec(prec).Set(x)), nil
	}

	// Finite Floats are exact rationals, so the remainder is exact until the
	// final rounding.
	rx, _ := x.Rat(nil)
	ry, _ := y.Rat(nil)

	q := new(big.Rat).Quo(rx, ry)
	n := new(big.Int).Quo(q.Num(), q.Denom())
	r := new(big.Rat).Sub(rx, new(big.Rat).Mul(new(big.Rat).SetInt(n), ry))

	return floatValue(new(big.Float).SetPrec(prec).SetRat(r)), nil
}

// floatPow raises x to y. Integral exponents are computed by repeated
// squaring at the operand precision; other exponents go through float64.
func floatPow(x, y *big.Float) (Value, error) {
	prec := max(x.Prec(), y.Prec())

	if !y.IsInt() {
		xf, _ := x.Float64()
		yf, _ := y.Float64()

		z := math.Pow(xf, yf)
		if math.IsNaN(z) {
			return Value{}, ErrConversionFailure.With(
				slog.String("operation", OpPow.String()),
				slog.String("base", x.Text('g', -1)),
				slog.String("exponent", y.Text('g', -1)),
			)
		}

		return floatValue(new(big.Float).SetPrec(prec).SetFloat64(z)), nil
	}

	n, _ := y.Int(nil)
	neg := n.Sign() < 0

	e, err := exponent(new(big.Int).Abs(n))
	if err != nil {
		return Value{}, err
	}

	// Extra guard bits keep the repeated products from accumulating error
	// beyond the final rounding.
	work := prec + 64
	z := new(big.Float).SetPrec(work).SetInt64(1)
	b := new(big.Float).SetPrec(work).Set(x)

	for ; e > 0; e >>= 1 {
		if e&1 == 1 {
			z.Mul(z, b)
		}

		b.Mul(b, b)
	}

	if neg {
		z.Quo(new(big.Float).SetPrec(work).SetInt64(1), z)
	}

	return floatValue(z.SetPrec(prec)), nil
}
