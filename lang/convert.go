package lang

import (
	"log/slog"
	"math/big"
	"strings"
)

// ToString converts v to a String.
//
// Integers and Floats render in base 10, Floats at their own precision. Dicts
// render as with [Value.String].
func (v Value) ToString() (Value, error) {
	switch v.kind {
	case KindInteger:
		return MakeString(v.Int().String()), nil

	case KindFloat:
		return MakeString(formatFloat(v.Float())), nil

	case KindString:
		return v, nil

	default:
		return MakeString(v.String()), nil
	}
}

// ToInt converts v to an Integer.
//
// Floats truncate toward zero and fail if infinite. Strings must hold a
// base-10 integer.
func (v Value) ToInt() (Value, error) {
	switch v.kind {
	case KindInteger:
		return v.Clone(), nil

	case KindFloat:
		n, err := truncate(v.Float())
		if err != nil {
			return Value{}, err
		}

		return intValue(n), nil

	case KindString:
		n, ok := new(big.Int).SetString(strings.TrimSpace(v.str), 10)
		if !ok {
			return Value{}, ErrConversionFailure.With(
				slog.String("operation", "to_int"),
				slog.String("input", v.str),
			)
		}

		return intValue(n), nil

	default:
		return Value{}, ErrConversionFailure.With(
			slog.String("operation", "to_int"),
			slog.String("type", v.kind.String()),
		)
	}
}

// ToFloat converts v to a Float at [DefaultPrecision]. Floats keep their
// own precision.
func (v Value) ToFloat() (Value, error) {
	switch v.kind {
	case KindInteger:
		return floatValue(promote(v.Int(), DefaultPrecision)), nil

	case KindFloat:
		return v.Clone(), nil

	case KindString:
		s := strings.TrimSpace(v.str)

		f, _, err := new(big.Float).SetPrec(DefaultPrecision).Parse(s, 10)
		if err != nil || !isDecimal(s) {
			return Value{}, ErrConversionFailure.With(
				slog.String("operation", "to_float"),
				slog.String("input", v.str),
			)
		}

		return floatValue(f), nil

	default:
		return Value{}, ErrConversionFailure.With(
			slog.String("operation", "to_float"),
			slog.String("type", v.kind.String()),
		)
	}
}

// WithPrecision returns a copy of the Float v rounded to prec bits.
func (v Value) WithPrecision(prec uint) (Value, error) {
	if v.kind != KindFloat {
		return Value{}, ErrNoMethodForType.With(
			slog.String("type", v.kind.String()),
			slog.String("method", "with_precision"),
		)
	}

	if prec == 0 || prec > big.MaxPrec {
		return Value{}, ErrInvalidParameter.With(
			slog.String("method", "with_precision"),
			slog.Uint64("precision", uint64(prec)),
		)
	}

	return floatValue(new(big.Float).Copy(v.Float()).SetPrec(prec)), nil
}

// promote returns n as a Float with the given precision.
func promote(n *big.Int, prec uint) *big.Float {
	return new(big.Float).SetPrec(prec).SetInt(n)
}

// truncate returns the integer part of f.
func truncate(f *big.Float) (*big.Int, error) {
	if f.IsInf() {
		return nil, ErrConversionFailure.With(
			slog.String("operation", "to_int"),
			slog.String("input", f.Text('g', -1)),
		)
	}

	n, _ := f.Int(nil)

	return n, nil
}

// isDecimal reports whether s is a base-10 number: an optional sign, digits
// with at most one decimal point, and an optional decimal exponent.
func isDecimal(s string) bool {
	mant, exp, hasExp := strings.Cut(strings.ToLower(s), "e")

	whole, frac, _ := strings.Cut(trimSign(mant), ".")
	if !isDigits(whole + frac) {
		return false
	}

	return !hasExp || isDigits(trimSign(exp))
}

func trimSign(s string) string {
	if s != "" && (s[0] == '+' || s[0] == '-') {
		return s[1:]
	}

	return s
}

// isDigits reports whether s is a non-empty run of ASCII digits.
func isDigits(s string) bool {
	if s == "" {
		return false
	}

	for i := range len(s) {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}

	return true
}
