package numeric

import "math/big"

// FeeGrowthScale and FeeGrowthWidth: fee accrued per unit liquidity,
// running and wrapping, 128-bit backing, 28 fractional digits, per
// spec.md's data model and its "modular fee growth" design note (9).
const (
	FeeGrowthScale = 28
	FeeGrowthWidth = 128
)

// FeeGrowth is a monotonically-increasing-but-wrapping running total of fee
// collected per unit of liquidity. Its backing MUST be exactly 128 bits —
// never wider — or the wrapping arithmetic in UncheckedAdd/UncheckedSub and
// in Tick.Cross/calculate_fee_growth_inside silently stops cancelling
// correctly (spec.md 9).
type FeeGrowth struct{ raw *big.Int }

func NewFeeGrowth(raw *big.Int) FeeGrowth { return FeeGrowth{raw: cloneBig(raw)} }

func FeeGrowthFromU64(raw uint64) FeeGrowth {
	return FeeGrowth{raw: new(big.Int).SetUint64(raw)}
}

func FeeGrowthFromInteger(n uint64) FeeGrowth {
	return FeeGrowth{raw: new(big.Int).Mul(new(big.Int).SetUint64(n), pow10(FeeGrowthScale))}
}

func FeeGrowthFromScale(n uint64, scale int) FeeGrowth {
	raw := scaleDown(new(big.Int).SetUint64(n), scale, FeeGrowthScale)
	return FeeGrowth{raw: raw}
}

func FeeGrowthZero() FeeGrowth { return FeeGrowth{raw: big.NewInt(0)} }

func FeeGrowthMax() FeeGrowth { return FeeGrowth{raw: cloneBig(maxForWidth(FeeGrowthWidth))} }

func (f FeeGrowth) Get() *big.Int { return cloneBig(f.raw) }

func (f FeeGrowth) Eq(o FeeGrowth) bool { return f.raw.Cmp(o.raw) == 0 }

// UncheckedAdd/UncheckedSub wrap modulo 2^128, matching the source's
// wrapping_add/wrapping_sub — used by Pool.AddFee and Tick.Cross.
func (f FeeGrowth) UncheckedAdd(o FeeGrowth) FeeGrowth {
	return FeeGrowth{raw: wrappingAdd(FeeGrowthWidth, f.raw, o.raw)}
}

func (f FeeGrowth) UncheckedSub(o FeeGrowth) FeeGrowth {
	return FeeGrowth{raw: wrappingSub(FeeGrowthWidth, f.raw, o.raw)}
}

// FromFee computes the per-liquidity fee growth contributed by fee spread
// over liquidity: fee * FeeGrowth.one * Liquidity.one / liquidity, checked
// against FeeGrowth's width. Grounded on
// src/math/types/fee_growth.rs::FeeGrowth::from_fee.
func FeeGrowthFromFee(liquidity Liquidity, fee TokenAmount) (FeeGrowth, error) {
	if liquidity.IsZero() {
		return FeeGrowth{}, newOverflow("FeeGrowth.FromFee", FeeGrowthWidth)
	}
	num := new(big.Int).Mul(fee.Get(), pow10(FeeGrowthScale))
	num.Mul(num, LiquidityOne())
	raw := new(big.Int).Quo(num, liquidity.Get())
	if err := requireFits("FeeGrowth.FromFee", FeeGrowthWidth, raw); err != nil {
		return FeeGrowth{}, err
	}
	return FeeGrowth{raw: raw}, nil
}

// ToFee converts a fee-growth delta back into a token amount given a
// liquidity amount: feeGrowth * liquidity / 10^(FeeGrowth.scale +
// Liquidity.scale), checked against TokenAmount's width. Grounded on
// src/math/types/fee_growth.rs::FeeGrowth::to_fee.
func (f FeeGrowth) ToFee(liquidity Liquidity) (TokenAmount, error) {
	num := new(big.Int).Mul(f.raw, liquidity.Get())
	raw := num.Quo(num, pow10(FeeGrowthScale+LiquidityScale))
	if err := requireFits("FeeGrowth.ToFee", TokenAmountWidth, raw); err != nil {
		return TokenAmount{}, err
	}
	return TokenAmount{raw: raw}, nil
}

// CalculateFeeGrowthInside implements the classic Uniswap-v3 split of
// global fee growth into the portion accrued strictly inside
// [tickLower, tickUpper], given the current tick and each boundary tick's
// "outside" snapshot. Grounded on
// src/math/types/fee_growth.rs::calculate_fee_growth_inside.
func CalculateFeeGrowthInside(
	tickLower int32, lowerOutsideX, lowerOutsideY FeeGrowth,
	tickUpper int32, upperOutsideX, upperOutsideY FeeGrowth,
	tickCurrent int32,
	globalX, globalY FeeGrowth,
) (FeeGrowth, FeeGrowth) {
	currentAboveLower := tickCurrent >= tickLower
	currentBelowUpper := tickCurrent < tickUpper

	var belowX, belowY FeeGrowth
	if currentAboveLower {
		belowX, belowY = lowerOutsideX, lowerOutsideY
	} else {
		belowX, belowY = globalX.UncheckedSub(lowerOutsideX), globalY.UncheckedSub(lowerOutsideY)
	}

	var aboveX, aboveY FeeGrowth
	if currentBelowUpper {
		aboveX, aboveY = upperOutsideX, upperOutsideY
	} else {
		aboveX, aboveY = globalX.UncheckedSub(upperOutsideX), globalY.UncheckedSub(upperOutsideY)
	}

	insideX := globalX.UncheckedSub(belowX).UncheckedSub(aboveX)
	insideY := globalY.UncheckedSub(belowY).UncheckedSub(aboveY)
	return insideX, insideY
}
