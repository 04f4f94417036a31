package numeric

import "math/big"

// SecondsPerLiquidityScale and SecondsPerLiquidityWidth: cumulative
// seconds-per-unit-liquidity oracle accumulator, 128-bit backing, 24
// fractional digits, wrapping like FeeGrowth. Grounded on
// src/math/types/seconds_per_liquidity.rs.
const (
	SecondsPerLiquidityScale = 24
	SecondsPerLiquidityWidth = 128
)

// SecondsPerLiquidity accumulates elapsed seconds weighted by the inverse of
// active liquidity, wrapping modulo 2^128 like FeeGrowth.
type SecondsPerLiquidity struct{ raw *big.Int }

func NewSecondsPerLiquidity(raw *big.Int) SecondsPerLiquidity {
	return SecondsPerLiquidity{raw: cloneBig(raw)}
}

func SecondsPerLiquidityFromInteger(n uint64) SecondsPerLiquidity {
	return SecondsPerLiquidity{raw: new(big.Int).Mul(new(big.Int).SetUint64(n), pow10(SecondsPerLiquidityScale))}
}

func SecondsPerLiquidityZero() SecondsPerLiquidity {
	return SecondsPerLiquidity{raw: big.NewInt(0)}
}

func (s SecondsPerLiquidity) Get() *big.Int { return cloneBig(s.raw) }

func (s SecondsPerLiquidity) Eq(o SecondsPerLiquidity) bool { return s.raw.Cmp(o.raw) == 0 }

// UncheckedAdd/UncheckedSub wrap modulo 2^128, matching the source's
// wrapping_add/wrapping_sub.
func (s SecondsPerLiquidity) UncheckedAdd(o SecondsPerLiquidity) SecondsPerLiquidity {
	return SecondsPerLiquidity{raw: wrappingAdd(SecondsPerLiquidityWidth, s.raw, o.raw)}
}

func (s SecondsPerLiquidity) UncheckedSub(o SecondsPerLiquidity) SecondsPerLiquidity {
	return SecondsPerLiquidity{raw: wrappingSub(SecondsPerLiquidityWidth, s.raw, o.raw)}
}

// CalculateSecondsPerLiquidityGlobal advances the pool-wide accumulator by
// the elapsed time since the pool's last recorded update, weighted by the
// current active liquidity. When liquidity is zero the accumulator does not
// advance (there is nothing to weight the elapsed time against), mirroring
// the source's zero-liquidity short-circuit. Grounded on
// seconds_per_liquidity.rs::calculate_seconds_per_liquidity_global.
func CalculateSecondsPerLiquidityGlobal(liquidity Liquidity, currentTimestamp, lastTimestamp uint64) SecondsPerLiquidity {
	if liquidity.IsZero() {
		return SecondsPerLiquidityZero()
	}
	deltaTime := new(big.Int).SetUint64(currentTimestamp - lastTimestamp)
	deltaTime.Mul(deltaTime, pow10(SecondsPerLiquidityScale+LiquidityScale))
	raw := new(big.Int).Quo(deltaTime, liquidity.Get())
	return SecondsPerLiquidity{raw: raw}
}

// CalculateSecondsPerLiquidityInside performs the same three-way wrapping
// split as CalculateFeeGrowthInside, but over each tick boundary's recorded
// seconds-outside snapshot, isolating the accumulator's growth strictly
// inside [tickLower, tickUpper]. Grounded on
// seconds_per_liquidity.rs::calculate_seconds_per_liquidity_inside.
func CalculateSecondsPerLiquidityInside(
	tickLower int32, lowerOutside SecondsPerLiquidity,
	tickUpper int32, upperOutside SecondsPerLiquidity,
	tickCurrent int32,
	global SecondsPerLiquidity,
) SecondsPerLiquidity {
	currentAboveLower := tickCurrent >= tickLower
	currentBelowUpper := tickCurrent < tickUpper

	var below SecondsPerLiquidity
	if currentAboveLower {
		below = lowerOutside
	} else {
		below = global.UncheckedSub(lowerOutside)
	}

	var above SecondsPerLiquidity
	if currentBelowUpper {
		above = upperOutside
	} else {
		above = global.UncheckedSub(upperOutside)
	}

	return global.UncheckedSub(below).UncheckedSub(above)
}
