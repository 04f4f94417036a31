package numeric

import "math/big"

// PriceScale and PriceWidth: Price = tokenY/tokenX, derived from SqrtPrice
// by squaring; same scale/width as SqrtPrice per spec.md's data model.
const (
	PriceScale = 24
	PriceWidth = 128
)

// Price is the (non-square-rooted) exchange ratio, provided for callers
// that want a human-facing price rather than the engine's internal √P.
type Price struct{ raw *big.Int }

func (p Price) Get() *big.Int { return cloneBig(p.raw) }

// FromSqrtPrice squares a SqrtPrice value to obtain the derived Price.
func FromSqrtPrice(s SqrtPrice) (Price, error) {
	raw := bigMul(s.Get(), s.Get(), SqrtPriceScale)
	if err := requireFits("Price.FromSqrtPrice", PriceWidth, raw); err != nil {
		return Price{}, err
	}
	return Price{raw: raw}, nil
}
