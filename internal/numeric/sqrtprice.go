package numeric

import (
	"math/big"

	"lukechampine.com/uint128"
)

// SqrtPriceScale and SqrtPriceWidth mirror spec.md's data model: √P is a
// 128-bit-backed decimal with 24 fractional digits.
const (
	SqrtPriceScale = 24
	SqrtPriceWidth = 128
)

// SqrtPrice represents √(tokenY/tokenX), scale 24 over a 128-bit backing.
// The raw value is stored as a *big.Int; SqrtPriceFromUint128 and Uint128
// convert to and from the fixed-width uint128.Uint128 (the type of the
// teacher's whirlpoolPool.go SqrtPrice field).
type SqrtPrice struct{ raw *big.Int }

func NewSqrtPrice(raw *big.Int) SqrtPrice { return SqrtPrice{raw: cloneBig(raw)} }

func SqrtPriceFromUint128(u uint128.Uint128) SqrtPrice {
	return SqrtPrice{raw: u.Big()}
}

// Uint128 converts the raw value to the fixed-width uint128 type, panicking
// if it does not fit; NewSqrtPrice does not bound its input to 128 bits.
func (s SqrtPrice) Uint128() uint128.Uint128 {
	return uint128.FromBig(s.raw)
}

func SqrtPriceFromInteger(n uint64) SqrtPrice {
	return SqrtPrice{raw: new(big.Int).Mul(new(big.Int).SetUint64(n), pow10(SqrtPriceScale))}
}

// One returns SqrtPrice(1.0).
func SqrtPriceOne() SqrtPrice { return SqrtPriceFromInteger(1) }

// AlmostOne returns 10^scale - 1, used as a rounding bias in
// big_div_values_to_token_up (spec.md 4.3's get_delta_x rounding-up path).
func SqrtPriceAlmostOne() *big.Int {
	return new(big.Int).Sub(pow10(SqrtPriceScale), big.NewInt(1))
}

func (s SqrtPrice) Get() *big.Int { return cloneBig(s.raw) }

func (s SqrtPrice) IsZero() bool { return s.raw.Sign() == 0 }

func (s SqrtPrice) Eq(o SqrtPrice) bool { return s.raw.Cmp(o.raw) == 0 }

func (s SqrtPrice) Cmp(o SqrtPrice) int { return s.raw.Cmp(o.raw) }

func (s SqrtPrice) Lt(o SqrtPrice) bool { return s.Cmp(o) < 0 }
func (s SqrtPrice) Gt(o SqrtPrice) bool { return s.Cmp(o) > 0 }
func (s SqrtPrice) Lte(o SqrtPrice) bool { return s.Cmp(o) <= 0 }
func (s SqrtPrice) Gte(o SqrtPrice) bool { return s.Cmp(o) >= 0 }

// CheckedAdd/CheckedSub implement the same-type operators, checked, for the
// handful of places (e.g. SqrtPrice::new(1) nudges in tests, and slippage
// bound checks) that add or subtract two sqrt-prices directly.
func (s SqrtPrice) CheckedAdd(o SqrtPrice) (SqrtPrice, error) {
	raw, err := checkedAdd("SqrtPrice.Add", SqrtPriceWidth, s.raw, o.raw)
	if err != nil {
		return SqrtPrice{}, err
	}
	return SqrtPrice{raw: raw}, nil
}

func (s SqrtPrice) CheckedSub(o SqrtPrice) (SqrtPrice, error) {
	raw, err := checkedSub("SqrtPrice.Sub", SqrtPriceWidth, s.raw, o.raw)
	if err != nil {
		return SqrtPrice{}, err
	}
	return SqrtPrice{raw: raw}, nil
}

// Sub panics on underflow; used where the caller has already established
// a >= b (e.g. |a - b| after a Cmp-based direction check).
func (s SqrtPrice) Sub(o SqrtPrice) SqrtPrice {
	out, err := s.CheckedSub(o)
	if err != nil {
		panic(err)
	}
	return out
}

func (s SqrtPrice) Add(o SqrtPrice) SqrtPrice {
	out, err := s.CheckedAdd(o)
	if err != nil {
		panic(err)
	}
	return out
}

// CheckedFromDecimal converts a FixedPoint (scale 12) value into SqrtPrice
// (scale 24), checked against SqrtPrice's 128-bit width. This is the final
// step of calculate_sqrt_price (spec.md 4.2).
func CheckedFromDecimal(fp FixedPoint) (SqrtPrice, error) {
	raw := new(big.Int).Mul(fp.Get(), pow10(SqrtPriceScale-FixedPointScale))
	if err := requireFits("SqrtPrice.CheckedFromDecimal", SqrtPriceWidth, raw); err != nil {
		return SqrtPrice{}, err
	}
	return SqrtPrice{raw: raw}, nil
}

// ToValueFromLiquidity rescales a Liquidity raw value (scale 6) into
// SqrtPrice's scale (24) without a width check, returning a plain *big.Int
// in the widened intermediate domain — this is
// SqrtPrice::checked_from_decimal_to_value(liquidity) from
// calc/math/clamm.rs's get_next_sqrt_price_x_up/y_down.
func ToValueFromLiquidity(l Liquidity) *big.Int {
	return new(big.Int).Mul(l.Get(), pow10(SqrtPriceScale-LiquidityScale))
}

// BigDivValuesToToken divides two SqrtPrice-scale widened values and
// rescales the quotient down into a TokenAmount (scale 0), floor rounding.
// Grounded on SqrtPrice::big_div_values_to_token in
// calc/math/types/sqrt_price.rs: the quotient is computed at a widened
// domain, multiplied by SqrtPrice::one to restore the implicit scale
// cancellation from the two SqrtPrice operands, then floor-divided down to
// TokenAmount's integer scale.
func BigDivValuesToToken(nominator, denominator *big.Int) (TokenAmount, error) {
	if denominator.Sign() == 0 {
		return TokenAmount{}, newOverflow("BigDivValuesToToken", TokenAmountWidth)
	}
	scaled := new(big.Int).Mul(nominator, pow10(SqrtPriceScale))
	q1 := new(big.Int).Quo(scaled, denominator)
	raw := q1.Quo(q1, pow10(SqrtPriceScale))
	if err := requireFits("BigDivValuesToToken", TokenAmountWidth, raw); err != nil {
		return TokenAmount{}, err
	}
	return TokenAmount{raw: raw}, nil
}

// BigDivValuesToTokenUp is BigDivValuesToToken's round-up twin: the first
// division (restoring SqrtPrice::one's implicit scale) rounds up by adding
// denominator-1 first, and the second division (down to TokenAmount's
// integer scale) rounds up by adding SqrtPrice::almost_one() first.
func BigDivValuesToTokenUp(nominator, denominator *big.Int) (TokenAmount, error) {
	if denominator.Sign() == 0 {
		return TokenAmount{}, newOverflow("BigDivValuesToTokenUp", TokenAmountWidth)
	}
	scaled := new(big.Int).Mul(nominator, pow10(SqrtPriceScale))
	scaled.Add(scaled, new(big.Int).Sub(denominator, big.NewInt(1)))
	q1 := new(big.Int).Quo(scaled, denominator)
	q1.Add(q1, SqrtPriceAlmostOne())
	raw := q1.Quo(q1, pow10(SqrtPriceScale))
	if err := requireFits("BigDivValuesToTokenUp", TokenAmountWidth, raw); err != nil {
		return TokenAmount{}, err
	}
	return TokenAmount{raw: raw}, nil
}

// CheckedBigDivValues divides two widened SqrtPrice-domain values, floor
// rounding, returning a plain SqrtPrice-scale widened *big.Int (used by
// get_next_sqrt_price_y_down).
func CheckedBigDivValues(num, denom *big.Int) (*big.Int, error) {
	return bigDivValues(num, denom)
}

func CheckedBigDivValuesUp(num, denom *big.Int) (*big.Int, error) {
	return bigDivValuesUp(num, denom)
}
