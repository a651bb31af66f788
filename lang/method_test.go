package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func call(recv Value, method string, params ...Value) Expression {
	x := &Access{Receiver: lit(recv), Method: method}
	for _, p := range params {
		x.Params = append(x.Params, lit(p))
	}

	return x
}

func TestAccess(t *testing.T) {
	tests := []struct {
		name    string
		x       Expression
		want    string
		wantErr error
	}{
		{name: "as_string", x: call(MakeInt(12), "as_string"), want: `"12"`},
		{name: "as_int", x: call(MakeString("-4"), "as_int"), want: "-4"},
		{name: "as_float", x: call(MakeInt(2), "as_float"), want: "2.0"},
		{name: "as_int bad", x: call(MakeString("four"), "as_int"), wantErr: ErrConversionFailure},
		{name: "at ascii", x: call(MakeString("hello"), "at", MakeInt(1)), want: `"e"`},
		{name: "at multibyte", x: call(MakeString("héllo"), "at", MakeInt(1)), want: `"é"`},
		{name: "at after multibyte", x: call(MakeString("héllo"), "at", MakeInt(3)), want: `"l"`},
		{name: "at continuation byte", x: call(MakeString("héllo"), "at", MakeInt(2)), wantErr: ErrInvalidParameter},
		{name: "at past end", x: call(MakeString("abc"), "at", MakeInt(3)), wantErr: ErrInvalidParameter},
		{name: "at negative", x: call(MakeString("abc"), "at", MakeInt(-1)), wantErr: ErrInvalidParameter},
		{name: "at string index", x: call(MakeString("abc"), "at", MakeString("0")), wantErr: ErrInvalidParameter},
		{name: "at on integer", x: call(MakeInt(5), "at", MakeInt(0)), wantErr: ErrNoMethodForType},
		{name: "with_precision", x: call(MakeFloat(0.5), "with_precision", MakeInt(100)), want: "0.5"},
		{name: "with_precision zero", x: call(MakeFloat(0.5), "with_precision", MakeInt(0)), wantErr: ErrInvalidParameter},
		{name: "with_precision float param", x: call(MakeFloat(0.5), "with_precision", MakeFloat(8)), wantErr: ErrInvalidParameter},
		{name: "with_precision huge", x: call(MakeFloat(0.5), "with_precision", MakeInt(1<<40)), wantErr: ErrInvalidParameter},
		{name: "with_precision on integer", x: call(MakeInt(1), "with_precision", MakeInt(8)), wantErr: ErrNoMethodForType},
		{name: "with_precision on integer string param", x: call(MakeInt(5), "with_precision", MakeString("x")), wantErr: ErrNoMethodForType},
		{name: "unknown method", x: call(MakeInt(1), "length"), wantErr: ErrUnknownMethod},
		{name: "too many params", x: call(MakeInt(1), "as_string", MakeInt(1)), wantErr: ErrInvalidNumberOfParameters},
		{name: "too few params", x: call(MakeString("a"), "at"), wantErr: ErrInvalidNumberOfParameters},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := evaluate(t, nil, tt.x)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, v.String())
		})
	}
}

func TestAccessWithPrecisionSetsPrecision(t *testing.T) {
	v, err := evaluate(t, nil, call(MakeFloat(1), "with_precision", MakeInt(256)))
	require.NoError(t, err)
	assert.Equal(t, uint(256), v.Precision())
}

func TestAccessArityCheckedBeforeParams(t *testing.T) {
	// The parameter names an unknown variable, but the arity mismatch is
	// reported first.
	x := &Access{
		Receiver: lit(MakeInt(1)),
		Method:   "as_string",
		Params:   []Expression{ivar("missing")},
	}

	_, err := evaluate(t, nil, x)
	require.ErrorIs(t, err, ErrInvalidNumberOfParameters)
}

func TestAccessChained(t *testing.T) {
	x := &Access{
		Receiver: call(MakeInt(123), "as_string"),
		Method:   "at",
		Params:   []Expression{lit(MakeInt(2))},
	}

	v, err := evaluate(t, nil, x)
	require.NoError(t, err)
	assert.Equal(t, `"3"`, v.String())
}

func TestMethodNames(t *testing.T) {
	assert.Equal(t, []string{"as_float", "as_int", "as_string", "at", "with_precision"}, Methods())
	assert.Equal(t, []string{"to_float", "to_integer", "to_string"}, Modifiers())

	n, ok := MethodArity("at")
	assert.True(t, ok)
	assert.Equal(t, 1, n)

	_, ok = MethodArity("nope")
	assert.False(t, ok)
}
