package numeric

import "math/big"

// PercentageScale and PercentageWidth: fee/slippage fraction, 64-bit
// backing, 12 fractional digits, per spec.md's data model.
const (
	PercentageScale = 12
	PercentageWidth = 64
)

// Percentage is a fee or slippage fraction in [0, 1] (values above 1 are
// representable but rejected by the callers that enforce that domain, e.g.
// add_fee_tier's InvalidFee check).
type Percentage struct{ raw *big.Int }

func NewPercentage(raw *big.Int) Percentage { return Percentage{raw: cloneBig(raw)} }

func PercentageFromInteger(n uint64) Percentage {
	return Percentage{raw: new(big.Int).Mul(new(big.Int).SetUint64(n), pow10(PercentageScale))}
}

// PercentageFromScale constructs a Percentage from n at the given input
// scale, e.g. PercentageFromScale(6, 8) means the fraction 6*10^-8.
func PercentageFromScale(n uint64, scale int) Percentage {
	raw := scaleDown(new(big.Int).SetUint64(n), scale, PercentageScale)
	return Percentage{raw: raw}
}

func PercentageZero() Percentage { return Percentage{raw: big.NewInt(0)} }

func (p Percentage) Get() *big.Int { return cloneBig(p.raw) }

func (p Percentage) IsZero() bool { return p.raw.Sign() == 0 }
func (p Percentage) Cmp(o Percentage) int { return p.raw.Cmp(o.raw) }
func (p Percentage) Gte(o Percentage) bool { return p.Cmp(o) >= 0 }

func (p Percentage) CheckedAdd(o Percentage) (Percentage, error) {
	raw, err := checkedAdd("Percentage.Add", PercentageWidth, p.raw, o.raw)
	if err != nil {
		return Percentage{}, err
	}
	return Percentage{raw: raw}, nil
}

func (p Percentage) CheckedSub(o Percentage) (Percentage, error) {
	raw, err := checkedSub("Percentage.Sub", PercentageWidth, p.raw, o.raw)
	if err != nil {
		return Percentage{}, err
	}
	return Percentage{raw: raw}, nil
}

func (p Percentage) Sub(o Percentage) Percentage {
	out, err := p.CheckedSub(o)
	if err != nil {
		panic(err)
	}
	return out
}
