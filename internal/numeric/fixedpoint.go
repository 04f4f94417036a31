package numeric

import "math/big"

// FixedPointScale and FixedPointWidth mirror spec.md's data model table:
// FixedPoint is a 128-bit-backed decimal with 12 fractional digits, used as
// the intermediate type for the sqrt-price bit-decomposition constants.
const (
	FixedPointScale = 12
	FixedPointWidth = 128
)

// FixedPoint is an intermediate fixed-point value, scale 12 over a 128-bit
// backing.
type FixedPoint struct{ raw *big.Int }

// NewFixedPoint wraps a raw (already-scaled) integer.
func NewFixedPoint(raw *big.Int) FixedPoint { return FixedPoint{raw: cloneBig(raw)} }

// FixedPointFromU64 is a convenience constructor for the 18 sqrt-price bit
// constants in spec.md 4.2, which are given as raw scale-12 integers.
func FixedPointFromU64(raw uint64) FixedPoint {
	return FixedPoint{raw: new(big.Int).SetUint64(raw)}
}

// FixedPointFromInteger returns n scaled to FixedPoint's declared scale.
func FixedPointFromInteger(n uint64) FixedPoint {
	return FixedPoint{raw: new(big.Int).Mul(new(big.Int).SetUint64(n), pow10(FixedPointScale))}
}

// Get returns a copy of the raw backing integer.
func (f FixedPoint) Get() *big.Int { return cloneBig(f.raw) }

func (f FixedPoint) IsZero() bool { return f.raw.Sign() == 0 }

func (f FixedPoint) Cmp(o FixedPoint) int { return f.raw.Cmp(o.raw) }

// Mul is the same-type multiply operator: self*other/10^scale, panicking on
// overflow, per spec.md 4.1's "arithmetic operators ... must panic on
// overflow".
func (f FixedPoint) Mul(o FixedPoint) FixedPoint {
	raw := bigMul(f.raw, o.raw, FixedPointScale)
	if err := requireFits("FixedPoint.Mul", FixedPointWidth, raw); err != nil {
		panic(err)
	}
	return FixedPoint{raw: raw}
}

// CheckedDiv divides self by other at FixedPoint's declared scale,
// truncating, returning an error instead of panicking on division by zero
// or overflow — used for "1/sqrt_price"-style inversions in
// calculate_sqrt_price where other can legitimately be examined for error
// handling by the caller.
func (f FixedPoint) CheckedDiv(o FixedPoint) (FixedPoint, error) {
	if o.raw.Sign() == 0 {
		return FixedPoint{}, newOverflow("FixedPoint.CheckedDiv", FixedPointWidth)
	}
	num := new(big.Int).Mul(f.raw, pow10(FixedPointScale))
	raw := new(big.Int).Quo(num, o.raw)
	if err := requireFits("FixedPoint.CheckedDiv", FixedPointWidth, raw); err != nil {
		return FixedPoint{}, err
	}
	return FixedPoint{raw: raw}, nil
}
