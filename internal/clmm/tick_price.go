// Package clmm implements the concentrated-liquidity math and state
// machine: sqrt-price/tick conversion, the delta engine, swap steps, tick
// and pool state, position algebra, and the swap orchestrator. Grounded on
// the original_source calc/math and contracts/storage packages.
package clmm

import (
	"fmt"
	"math/big"

	"invariant/internal/numeric"
)

// MaxTick and MinTick bound every tick index the engine accepts.
const (
	MaxTick int32 = 221_818
	MinTick int32 = -MaxTick
)

// sqrtPriceConstants are the 18 precomputed FixedPoint (scale 12) constants
// used by TickToSqrtPrice's bit decomposition: constant k is
// √(1.0001^(2^k)), scale 12.
var sqrtPriceConstants = [18]uint64{
	1000049998750,
	1000100000000,
	1000200010000,
	1000400060004,
	1000800280056,
	1001601200560,
	1003204964963,
	1006420201726,
	1012881622442,
	1025929181080,
	1052530684591,
	1107820842005,
	1227267017980,
	1506184333421,
	2268591246242,
	5146506242525,
	26486526504348,
	701536086265529,
}

func mustBigString(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("invariant/clmm: invalid constant literal " + s)
	}
	return v
}

// MinSqrtPrice and MaxSqrtPrice are the derived domain limits (scale 24),
// i.e. TickToSqrtPrice(MinTick) and TickToSqrtPrice(MaxTick).
var (
	MinSqrtPrice = numeric.NewSqrtPrice(mustBigString("15258932000000000000"))
	MaxSqrtPrice = numeric.NewSqrtPrice(mustBigString("65535383934512647000000000000"))
)

// TickOverBoundsError reports a tick index outside [MinTick, MaxTick].
type TickOverBoundsError struct{ Tick int32 }

func (e *TickOverBoundsError) Error() string {
	return fmt.Sprintf("tick over bounds: %d", e.Tick)
}

// TickToSqrtPrice decomposes |i| into its bit representation and multiplies
// the precomputed FixedPoint constant for each set bit (bit k corresponds
// to √(1.0001^(2^k))); negative ticks invert the product. Grounded on
// calc/math/types/sqrt_price.rs::SqrtPrice::calculate_sqrt_price.
func TickToSqrtPrice(tick int32) (numeric.SqrtPrice, error) {
	abs := tick
	if abs < 0 {
		abs = -abs
	}
	if abs > MaxTick {
		return numeric.SqrtPrice{}, &TickOverBoundsError{Tick: tick}
	}

	product := numeric.FixedPointFromInteger(1)
	u := uint32(abs)
	for k := 0; k < 18 && (u>>uint(k)) != 0; k++ {
		if u&(1<<uint(k)) != 0 {
			product = product.Mul(numeric.FixedPointFromU64(sqrtPriceConstants[k]))
		}
	}

	if tick >= 0 {
		return numeric.CheckedFromDecimal(product)
	}

	inverted, err := numeric.FixedPointFromInteger(1).CheckedDiv(product)
	if err != nil {
		return numeric.SqrtPrice{}, err
	}
	return numeric.CheckedFromDecimal(inverted)
}

// GetMaxTick returns the largest tick index, aligned to tick_spacing, that
// does not exceed MaxTick.
func GetMaxTick(tickSpacing uint16) int32 {
	ts := int32(tickSpacing)
	return (MaxTick / ts) * ts
}

// GetMinTick is GetMaxTick's symmetric counterpart.
func GetMinTick(tickSpacing uint16) int32 {
	return -GetMaxTick(tickSpacing)
}

// GetTickAtSqrtPrice inverts TickToSqrtPrice via binary search over the
// valid tick domain: no literal original_source inverse (log.rs) was
// retained, so this is re-derived directly from the monotonicity of
// TickToSqrtPrice rather than ported line for line.
func GetTickAtSqrtPrice(sqrtPrice numeric.SqrtPrice, tickSpacing uint16) (int32, error) {
	lo, hi := GetMinTick(tickSpacing), GetMaxTick(tickSpacing)
	ts := int32(tickSpacing)

	loSP, err := TickToSqrtPrice(lo)
	if err != nil {
		return 0, err
	}
	if sqrtPrice.Lte(loSP) {
		return lo, nil
	}
	hiSP, err := TickToSqrtPrice(hi)
	if err != nil {
		return 0, err
	}
	if sqrtPrice.Gte(hiSP) {
		return hi, nil
	}

	loIdx, hiIdx := lo/ts, hi/ts
	for loIdx < hiIdx {
		mid := loIdx + (hiIdx-loIdx+1)/2
		midSP, err := TickToSqrtPrice(mid * ts)
		if err != nil {
			return 0, err
		}
		if midSP.Lte(sqrtPrice) {
			loIdx = mid
		} else {
			hiIdx = mid - 1
		}
	}
	return loIdx * ts, nil
}

// CheckTickToSqrtPriceRelationship returns true iff sqrtPrice lies in
// [f(tick), f(tick+tickSpacing)), or, when tick+tickSpacing exceeds
// MaxTick, iff sqrtPrice equals f(GetMaxTick(tickSpacing)). Grounded on
// calc/math/clamm.rs::check_tick_to_sqrt_price_relationship.
func CheckTickToSqrtPriceRelationship(tick int32, tickSpacing uint16, sqrtPrice numeric.SqrtPrice) (bool, error) {
	next := tick + int32(tickSpacing)
	if next > MaxTick {
		maxTickSP, err := TickToSqrtPrice(GetMaxTick(tickSpacing))
		if err != nil {
			return false, err
		}
		return sqrtPrice.Eq(maxTickSP), nil
	}

	lowerSP, err := TickToSqrtPrice(tick)
	if err != nil {
		return false, err
	}
	upperSP, err := TickToSqrtPrice(next)
	if err != nil {
		return false, err
	}
	return sqrtPrice.Gte(lowerSP) && sqrtPrice.Lt(upperSP), nil
}
