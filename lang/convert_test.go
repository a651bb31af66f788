package lang

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToString(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"integer", MakeInt(-7), "-7"},
		{"float", MakeFloat(2.25), "2.25"},
		{"whole float", MakeFloat(4), "4.0"},
		{"string", MakeString("abc"), "abc"},
		{"dict", MakeDict(Dict{"a": MakeInt(1)}), `{"a": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.v.ToString()
			require.NoError(t, err)
			assert.Equal(t, KindString, got.Kind())
			assert.Equal(t, tt.want, got.Str())
		})
	}
}

func TestToInt(t *testing.T) {
	tests := []struct {
		name    string
		v       Value
		want    string
		wantErr error
	}{
		{name: "integer", v: MakeInt(9), want: "9"},
		{name: "float truncates", v: MakeFloat(2.9), want: "2"},
		{name: "negative float truncates toward zero", v: MakeFloat(-2.9), want: "-2"},
		{name: "string", v: MakeString(" 123 "), want: "123"},
		{name: "huge string", v: MakeString("123456789012345678901234567890"), want: "123456789012345678901234567890"},
		{name: "bad string", v: MakeString("12a"), wantErr: ErrConversionFailure},
		{name: "float string", v: MakeString("1.5"), wantErr: ErrConversionFailure},
		{name: "infinity", v: MakeBigFloat(new(big.Float).SetInf(false)), wantErr: ErrConversionFailure},
		{name: "dict", v: MakeDict(nil), wantErr: ErrConversionFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.v.ToInt()
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, KindInteger, got.Kind())
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestToFloat(t *testing.T) {
	tests := []struct {
		name     string
		v        Value
		want     string
		wantPrec uint
		wantErr  error
	}{
		{name: "integer", v: MakeInt(3), want: "3.0", wantPrec: DefaultPrecision},
		{name: "string", v: MakeString("0.5"), want: "0.5", wantPrec: DefaultPrecision},
		{name: "float keeps precision", v: mustPrec(t, MakeFloat(1), 90), want: "1.0", wantPrec: 90},
		{name: "bad string", v: MakeString("x"), wantErr: ErrConversionFailure},
		{name: "hex string", v: MakeString("0x10"), wantErr: ErrConversionFailure},
		{name: "binary string", v: MakeString("0b11"), wantErr: ErrConversionFailure},
		{name: "underscore string", v: MakeString("1_000"), wantErr: ErrConversionFailure},
		{name: "infinity string", v: MakeString("Inf"), wantErr: ErrConversionFailure},
		{name: "bare exponent", v: MakeString("1e"), wantErr: ErrConversionFailure},
		{name: "exponent string", v: MakeString(" -2.5e2 "), want: "-250.0", wantPrec: DefaultPrecision},
		{name: "dict", v: MakeDict(nil), wantErr: ErrConversionFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.v.ToFloat()
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, KindFloat, got.Kind())
			assert.Equal(t, tt.want, got.String())
			assert.Equal(t, tt.wantPrec, got.Precision())
		})
	}
}

func TestWithPrecision(t *testing.T) {
	third := MakeBigFloat(new(big.Float).SetPrec(200).Quo(big.NewFloat(1), big.NewFloat(3)))

	narrow, err := third.WithPrecision(8)
	require.NoError(t, err)
	assert.Equal(t, uint(8), narrow.Precision())
	assert.Equal(t, uint(200), third.Precision(), "receiver must be unchanged")

	_, err = third.WithPrecision(0)
	require.ErrorIs(t, err, ErrInvalidParameter)

	_, err = MakeInt(1).WithPrecision(10)
	require.ErrorIs(t, err, ErrNoMethodForType)
}

func TestConversionsDoNotAlias(t *testing.T) {
	n := MakeInt(5)

	m, err := n.ToInt()
	require.NoError(t, err)

	m.Int().SetInt64(6)
	assert.Equal(t, "5", n.String())
}
