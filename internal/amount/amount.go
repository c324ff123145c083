package amount

import (
	"errors"
	"fmt"
	"math/big"
	"regexp"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/shopspring/decimal"
)

// MaxUint256 is the approval amount requested for every ERC-20 approval,
// exactly 2^256 - 1, so the user never has to approve again.
var MaxUint256 = new(big.Int).Set(math.MaxBig256)

var ErrInvalidAmount = errors.New("invalid amount")

var decimalAmountRegex = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

// ToBaseUnits converts a decimal amount string into the token's smallest
// unit using its declared precision. Inputs that are not unsigned decimal
// numeric strings, or that carry more fractional digits than the token
// supports, are rejected before any conversion.
func ToBaseUnits(value string, decimals int) (*big.Int, error) {
	if !decimalAmountRegex.MatchString(value) {
		return nil, fmt.Errorf("%w: %q is not an unsigned decimal number", ErrInvalidAmount, value)
	}

	d, err := decimal.NewFromString(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}

	shifted := d.Shift(int32(decimals))
	if !shifted.IsInteger() {
		return nil, fmt.Errorf("%w: %q has more than %d decimal places", ErrInvalidAmount, value, decimals)
	}

	return shifted.BigInt(), nil
}

// FromBaseUnits renders a base-unit amount as a decimal string.
func FromBaseUnits(value *big.Int, decimals int) string {
	return decimal.NewFromBigInt(value, -int32(decimals)).String()
}

// MaxNative returns the largest native-asset amount that can be submitted
// from the given balance after holding back the gas reserve. Never negative.
func MaxNative(balance, gasReserve *big.Int) *big.Int {
	if balance == nil {
		return new(big.Int)
	}
	max := new(big.Int).Sub(balance, gasReserve)
	if max.Sign() < 0 {
		return new(big.Int)
	}
	return max
}
