package amount

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToBaseUnits(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		decimals int
		want     string
		wantErr  bool
	}{
		{name: "fractional", value: "1.5", decimals: 18, want: "1500000000000000000"},
		{name: "integer", value: "100", decimals: 6, want: "100000000"},
		{name: "zero", value: "0", decimals: 18, want: "0"},
		{name: "full precision", value: "0.000001", decimals: 6, want: "1"},
		{name: "non-numeric", value: "abc", decimals: 18, wantErr: true},
		{name: "negative", value: "-1", decimals: 18, wantErr: true},
		{name: "empty", value: "", decimals: 18, wantErr: true},
		{name: "exponent notation", value: "1e5", decimals: 18, wantErr: true},
		{name: "hex prefix", value: "0x10", decimals: 18, wantErr: true},
		{name: "trailing dot", value: "1.", decimals: 18, wantErr: true},
		{name: "too many decimal places", value: "0.1234567", decimals: 6, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToBaseUnits(tt.value, tt.decimals)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidAmount))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestFromBaseUnits(t *testing.T) {
	v, _ := new(big.Int).SetString("1500000000000000000", 10)
	assert.Equal(t, "1.5", FromBaseUnits(v, 18))
	assert.Equal(t, "0.000001", FromBaseUnits(big.NewInt(1), 6))
}

func TestMaxUint256(t *testing.T) {
	want := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	assert.Equal(t, 0, MaxUint256.Cmp(want))
}

func TestMaxNative(t *testing.T) {
	reserve := big.NewInt(100)

	assert.Equal(t, "900", MaxNative(big.NewInt(1000), reserve).String())
	// Balance below the reserve never yields a negative amount.
	assert.Equal(t, "0", MaxNative(big.NewInt(50), reserve).String())
	assert.Equal(t, "0", MaxNative(nil, reserve).String())
}
