package lang

import (
	"math/big"
	"strconv"
	"strings"
)

// DefaultPrecision is the mantissa width in bits of Float values that were not
// given an explicit precision.
const DefaultPrecision uint = 53

// Kind identifies the variant held by a [Value].
type Kind uint8

const (
	KindInteger Kind = iota
	KindFloat
	KindString
	KindDict
)

// String returns the name of the kind as it appears in error messages.
func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "Integer"
	case KindFloat:
		return "Float"
	case KindString:
		return "String"
	case KindDict:
		return "Dict"
	default:
		return "Unknown"
	}
}

// Dict maps string keys to values.
type Dict map[string]Value

// Value is a runtime datum: an arbitrary-precision Integer, an
// arbitrary-precision Float, a String, or a Dict of Values.
//
// The zero Value is the Integer 0.
//
// Values share their numeric and dictionary storage when copied. Operations
// in this package never mutate the storage of an operand; use [Value.Clone]
// before handing a Value to code that might.
type Value struct {
	num  *big.Int
	flt  *big.Float
	dict Dict
	str  string
	kind Kind
}

// MakeInt returns an Integer value.
func MakeInt(n int64) Value {
	return Value{kind: KindInteger, num: big.NewInt(n)}
}

// MakeBigInt returns an Integer value holding a copy of n.
func MakeBigInt(n *big.Int) Value {
	return Value{kind: KindInteger, num: new(big.Int).Set(n)}
}

// MakeFloat returns a Float value with [DefaultPrecision].
func MakeFloat(f float64) Value {
	return Value{
		kind: KindFloat,
		flt:  new(big.Float).SetPrec(DefaultPrecision).SetFloat64(f),
	}
}

// MakeBigFloat returns a Float value holding a copy of f, including its
// precision. A zero precision is replaced by [DefaultPrecision].
func MakeBigFloat(f *big.Float) Value {
	c := new(big.Float).Copy(f)
	if c.Prec() == 0 {
		c.SetPrec(DefaultPrecision)
	}

	return Value{kind: KindFloat, flt: c}
}

// MakeString returns a String value.
func MakeString(s string) Value {
	return Value{kind: KindString, str: s}
}

// MakeDict returns a Dict value holding deep copies of the given entries.
func MakeDict(entries Dict) Value {
	d := make(Dict, len(entries))
	for k, v := range entries {
		d[k] = v.Clone()
	}

	return Value{kind: KindDict, dict: d}
}

// wrap helpers take ownership of their argument.

func intValue(n *big.Int) Value     { return Value{kind: KindInteger, num: n} }
func floatValue(f *big.Float) Value { return Value{kind: KindFloat, flt: f} }

func boolValue(b bool) Value {
	if b {
		return MakeInt(1)
	}

	return MakeInt(0)
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// Int returns the integer held by v, or nil if v is not an Integer.
// The result must not be modified.
func (v Value) Int() *big.Int {
	if v.kind != KindInteger {
		return nil
	}

	if v.num == nil {
		return new(big.Int)
	}

	return v.num
}

// Float returns the float held by v, or nil if v is not a Float.
// The result must not be modified.
func (v Value) Float() *big.Float {
	if v.kind != KindFloat {
		return nil
	}

	if v.flt == nil {
		return new(big.Float).SetPrec(DefaultPrecision)
	}

	return v.flt
}

// Str returns the text held by v, or "" if v is not a String.
func (v Value) Str() string { return v.str }

// Dict returns the entries held by v, or nil if v is not a Dict.
func (v Value) Dict() Dict {
	if v.kind != KindDict {
		return nil
	}

	return v.dict
}

// Precision returns the mantissa width in bits of a Float, or 0 for any other
// kind.
func (v Value) Precision() uint {
	if v.kind != KindFloat {
		return 0
	}

	return v.Float().Prec()
}

// Clone returns a deep copy of v that shares no storage with it.
func (v Value) Clone() Value {
	switch v.kind {
	case KindInteger:
		return intValue(new(big.Int).Set(v.Int()))

	case KindFloat:
		return floatValue(new(big.Float).Copy(v.Float()))

	case KindDict:
		return MakeDict(v.dict)

	default:
		return v
	}
}

// Equal reports whether v and w are of the same kind and hold equal data.
// Floats compare by value regardless of precision.
func (v Value) Equal(w Value) bool {
	if v.kind != w.kind {
		return false
	}

	switch v.kind {
	case KindInteger:
		return v.Int().Cmp(w.Int()) == 0

	case KindFloat:
		return v.Float().Cmp(w.Float()) == 0

	case KindString:
		return v.str == w.str

	case KindDict:
		if len(v.dict) != len(w.dict) {
			return false
		}

		for k, x := range v.dict {
			y, ok := w.dict[k]
			if !ok || !x.Equal(y) {
				return false
			}
		}

		return true
	}

	return false
}

// String renders v for display. Strings are quoted and Dict entries are
// listed in key order, so the output is stable.
func (v Value) String() string {
	var b strings.Builder

	v.write(&b)

	return b.String()
}

func (v Value) write(b *strings.Builder) {
	switch v.kind {
	case KindInteger:
		b.WriteString(v.Int().String())

	case KindFloat:
		b.WriteString(formatFloat(v.Float()))

	case KindString:
		b.WriteString(strconv.Quote(v.str))

	case KindDict:
		b.WriteByte('{')

		for i, k := range sortedKeys(v.dict) {
			if i > 0 {
				b.WriteString(", ")
			}

			b.WriteString(strconv.Quote(k))
			b.WriteString(": ")
			v.dict[k].write(b)
		}

		b.WriteByte('}')
	}
}

// formatFloat renders f in base 10 with the fewest digits that identify it
// uniquely at its own precision. Moderate magnitudes use positional notation
// and always carry a decimal point.
func formatFloat(f *big.Float) string {
	if f.IsInf() {
		return f.Text('g', -1)
	}

	// Decimal exponent estimate: log10(2) ~ 0.30103.
	exp := float64(f.MantExp(nil)) * 0.30103

	var s string
	if f.Sign() == 0 || (exp > -7 && exp < 21) {
		s = f.Text('f', -1)
	} else {
		s = f.Text('g', -1)
	}

	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}

	return s
}
