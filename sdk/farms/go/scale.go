package farms

import (
	"math/big"

	bin "github.com/gagliardetto/binary"
	"github.com/shopspring/decimal"
)

const (
	// WadDecimals is the number of decimal digits carried by WAD-scaled
	// accumulators.
	WadDecimals = 18

	// divPrecision is the number of fractional digits kept by every
	// non-exact division. Quotients are truncated, never rounded.
	divPrecision = 36
)

// WAD is 10^18.
var WAD = decimal.New(1, WadDecimals)

// Uint128ToDecimal converts a raw on-chain u128 into a decimal.
func Uint128ToDecimal(v bin.Uint128) decimal.Decimal {
	return decimal.NewFromBigInt(v.BigInt(), 0)
}

// Uint128FromBig converts a non-negative integer that fits into 128 bits.
func Uint128FromBig(v *big.Int) bin.Uint128 {
	mask := new(big.Int).SetUint64(^uint64(0))
	lo := new(big.Int).And(v, mask).Uint64()
	hi := new(big.Int).Rsh(v, 64).Uint64()
	return bin.Uint128{Lo: lo, Hi: hi}
}

// Uint128FromDecimal truncates d to an integer and converts it to a u128.
func Uint128FromDecimal(d decimal.Decimal) bin.Uint128 {
	return Uint128FromBig(d.Truncate(0).BigInt())
}

// Uint64ToDecimal converts a raw on-chain u64 into a decimal.
func Uint64ToDecimal(v uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(v), 0)
}

// ToBaseUnits converts a human amount into token base units, floored.
func ToBaseUnits(amount decimal.Decimal, tokenDecimals uint64) decimal.Decimal {
	return amount.Shift(int32(tokenDecimals)).Floor()
}

// ToDecimal converts token base units into a human amount.
func ToDecimal(baseUnits decimal.Decimal, tokenDecimals uint64) decimal.Decimal {
	return baseUnits.Shift(-int32(tokenDecimals))
}

// UnscaleWad removes the WAD factor from a scaled value.
func UnscaleWad(x decimal.Decimal) decimal.Decimal {
	return x.Shift(-WadDecimals)
}

// ScaleWad applies the WAD factor to a plain value.
func ScaleWad(x decimal.Decimal) decimal.Decimal {
	return x.Shift(WadDecimals)
}

// UnscaleWadUint128 is UnscaleWad over a raw u128 accumulator.
func UnscaleWadUint128(v bin.Uint128) decimal.Decimal {
	return UnscaleWad(Uint128ToDecimal(v))
}

// quo divides with truncation at divPrecision fractional digits.
// A zero divisor yields zero.
func quo(x, y decimal.Decimal) decimal.Decimal {
	if y.IsZero() {
		return decimal.Zero
	}
	q, _ := x.QuoRem(y, divPrecision)
	return q
}

// ConvertStakeToAmount converts stake shares into the underlying token
// amount at the farm's current exchange rate. An empty pool converts 1:1.
func ConvertStakeToAmount(stake, totalStaked, totalActiveStake decimal.Decimal) decimal.Decimal {
	if totalActiveStake.IsZero() {
		return stake
	}
	return quo(stake.Mul(totalStaked), totalActiveStake)
}

// ConvertAmountToStake is the inverse of ConvertStakeToAmount.
func ConvertAmountToStake(amount, totalStaked, totalActiveStake decimal.Decimal) decimal.Decimal {
	if totalStaked.IsZero() {
		return amount
	}
	return quo(amount.Mul(totalActiveStake), totalStaked)
}
