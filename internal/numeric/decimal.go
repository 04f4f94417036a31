// Package numeric provides the typed fixed-point wrappers the rest of the
// engine builds on: each type is a newtype over a big.Int with a declared
// decimal scale and bit width, matching the source contract's
// #[decimal(scale, Backing)] generated types one for one.
//
// A Go generic can't express "pick a different backing width per
// instantiation and panic/overflow at exactly that width" without losing
// the type-safety the source gets from distinct generated structs, so each
// wrapper (FixedPoint, SqrtPrice, Liquidity, ...) is its own small type in
// its own file; this module holds the arithmetic they all share.
package numeric

import (
	"fmt"
	"math/big"
)

var pow10Cache = map[int]*big.Int{}

// pow10 returns 10^n, cached.
func pow10(n int) *big.Int {
	if v, ok := pow10Cache[n]; ok {
		return v
	}
	v := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
	pow10Cache[n] = v
	return v
}

var maxForWidthCache = map[int]*big.Int{}

// maxForWidth returns 2^width - 1, the largest value representable in an
// unsigned integer of that bit width.
func maxForWidth(width int) *big.Int {
	if v, ok := maxForWidthCache[width]; ok {
		return v
	}
	v := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(width)), big.NewInt(1))
	maxForWidthCache[width] = v
	return v
}

var moduloForWidthCache = map[int]*big.Int{}

func moduloForWidth(width int) *big.Int {
	if v, ok := moduloForWidthCache[width]; ok {
		return v
	}
	v := new(big.Int).Lsh(big.NewInt(1), uint(width))
	moduloForWidthCache[width] = v
	return v
}

// OverflowError is returned whenever a checked arithmetic operation would
// exceed a type's declared backing width, or would go negative on an
// unsigned type.
type OverflowError struct {
	Op    string
	Width int
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("%s overflow (width=%d)", e.Op, e.Width)
}

func newOverflow(op string, width int) error {
	return &OverflowError{Op: op, Width: width}
}

func requireNonNegative(op string, width int, v *big.Int) error {
	if v.Sign() < 0 {
		return newOverflow(op, width)
	}
	return nil
}

func requireFits(op string, width int, v *big.Int) error {
	if v.Cmp(maxForWidth(width)) > 0 {
		return newOverflow(op, width)
	}
	return nil
}

func checkedAdd(op string, width int, a, b *big.Int) (*big.Int, error) {
	sum := new(big.Int).Add(a, b)
	if err := requireFits(op, width, sum); err != nil {
		return nil, err
	}
	return sum, nil
}

func checkedSub(op string, width int, a, b *big.Int) (*big.Int, error) {
	diff := new(big.Int).Sub(a, b)
	if err := requireNonNegative(op, width, diff); err != nil {
		return nil, err
	}
	return diff, nil
}

func checkedMul(op string, width int, a, b *big.Int) (*big.Int, error) {
	prod := new(big.Int).Mul(a, b)
	if err := requireFits(op, width, prod); err != nil {
		return nil, err
	}
	return prod, nil
}

// wrappingAdd performs modular addition at the given bit width, as used by
// FeeGrowth/SecondsPerLiquidity's UncheckedAdd.
func wrappingAdd(width int, a, b *big.Int) *big.Int {
	sum := new(big.Int).Add(a, b)
	return sum.Mod(sum, moduloForWidth(width))
}

// wrappingSub performs modular subtraction at the given bit width, as used
// by FeeGrowth/SecondsPerLiquidity's UncheckedSub and by Tick.cross's
// fee-growth-outside and seconds-outside recomputation.
func wrappingSub(width int, a, b *big.Int) *big.Int {
	diff := new(big.Int).Sub(a, b)
	diff.Mod(diff, moduloForWidth(width))
	if diff.Sign() < 0 {
		diff.Add(diff, moduloForWidth(width))
	}
	return diff
}

// scaleDown adjusts a raw integer declared at fromScale into the
// equivalent raw integer at toScale, truncating on narrowing.
func scaleDown(raw *big.Int, fromScale, toScale int) *big.Int {
	if fromScale <= toScale {
		return new(big.Int).Lsh(raw, 0).Mul(raw, pow10(toScale-fromScale))
	}
	out := new(big.Int).Quo(raw, pow10(fromScale-toScale))
	return out
}

// scaleDownUp is the round-up variant of scaleDown: on narrowing it
// computes ceil(raw / 10^d) for these unsigned values.
func scaleDownUp(raw *big.Int, fromScale, toScale int) *big.Int {
	if fromScale <= toScale {
		return new(big.Int).Mul(raw, pow10(toScale-fromScale))
	}
	d := pow10(fromScale - toScale)
	num := new(big.Int).Add(raw, new(big.Int).Sub(d, big.NewInt(1)))
	return num.Quo(num, d)
}

// bigMul computes self*other/10^otherScale, truncating (floor division),
// per spec.md 4.1's "big_mul(other) = self * other / 10^other.scale".
func bigMul(selfRaw, otherRaw *big.Int, otherScale int) *big.Int {
	prod := new(big.Int).Mul(selfRaw, otherRaw)
	return prod.Quo(prod, pow10(otherScale))
}

// bigMulUp is bigMul's round-up twin: adds 10^otherScale-1 before dividing.
func bigMulUp(selfRaw, otherRaw *big.Int, otherScale int) *big.Int {
	prod := new(big.Int).Mul(selfRaw, otherRaw)
	d := pow10(otherScale)
	prod.Add(prod, new(big.Int).Sub(d, big.NewInt(1)))
	return prod.Quo(prod, d)
}

// bigMulToValue returns the raw product at the widened (un-rescaled) value
// domain: self*other, with no division. This is the form used whenever an
// intermediate would overflow the declared backing width.
func bigMulToValue(selfRaw, otherRaw *big.Int) *big.Int {
	return new(big.Int).Mul(selfRaw, otherRaw)
}

// bigMulToValueUp adds 1 to the widened product to bias a subsequent
// division upward, matching the source's big_mul_to_value_up (which is not
// itself a rounding division — it nudges the numerator so that whatever
// divides it next rounds up instead of down).
func bigMulToValueUp(selfRaw, otherRaw *big.Int) *big.Int {
	prod := new(big.Int).Mul(selfRaw, otherRaw)
	return prod.Add(prod, big.NewInt(1))
}

// bigDivValues divides two already-widened values, floor rounding.
func bigDivValues(num, denom *big.Int) (*big.Int, error) {
	if denom.Sign() == 0 {
		return nil, fmt.Errorf("division overflow or division by zero")
	}
	return new(big.Int).Quo(num, denom), nil
}

// bigDivValuesUp divides two already-widened values, ceil rounding.
func bigDivValuesUp(num, denom *big.Int) (*big.Int, error) {
	if denom.Sign() == 0 {
		return nil, fmt.Errorf("division overflow or division by zero")
	}
	out := new(big.Int).Add(num, new(big.Int).Sub(denom, big.NewInt(1)))
	return out.Quo(out, denom), nil
}

// bigDivByNumber divides a raw value by a plain integer, floor rounding.
func bigDivByNumber(raw, n *big.Int) (*big.Int, error) {
	if n.Sign() == 0 {
		return nil, fmt.Errorf("division overflow or division by zero")
	}
	return new(big.Int).Quo(raw, n), nil
}

// bigDivByNumberUp divides a raw value by a plain integer, ceil rounding.
func bigDivByNumberUp(raw, n *big.Int) (*big.Int, error) {
	if n.Sign() == 0 {
		return nil, fmt.Errorf("division overflow or division by zero")
	}
	out := new(big.Int).Add(raw, new(big.Int).Sub(n, big.NewInt(1)))
	return out.Quo(out, n), nil
}

func cloneBig(v *big.Int) *big.Int {
	return new(big.Int).Set(v)
}
