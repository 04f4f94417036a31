package numeric

import "math/big"

// LiquidityScale and LiquidityWidth: virtual liquidity L, 256-bit backing,
// 6 fractional digits, per spec.md's data model.
const (
	LiquidityScale = 6
	LiquidityWidth = 256
)

// Liquidity is the pool/position/tick virtual-liquidity amount.
type Liquidity struct{ raw *big.Int }

func NewLiquidity(raw *big.Int) Liquidity { return Liquidity{raw: cloneBig(raw)} }

func LiquidityFromU64(raw uint64) Liquidity {
	return Liquidity{raw: new(big.Int).SetUint64(raw)}
}

func LiquidityFromInteger(n uint64) Liquidity {
	return Liquidity{raw: new(big.Int).Mul(new(big.Int).SetUint64(n), pow10(LiquidityScale))}
}

func LiquidityZero() Liquidity { return Liquidity{raw: big.NewInt(0)} }

func LiquidityMax() Liquidity { return Liquidity{raw: cloneBig(maxForWidth(LiquidityWidth))} }

func (l Liquidity) Get() *big.Int { return cloneBig(l.raw) }

func (l Liquidity) IsZero() bool { return l.raw.Sign() == 0 }

func (l Liquidity) Eq(o Liquidity) bool { return l.raw.Cmp(o.raw) == 0 }
func (l Liquidity) Cmp(o Liquidity) int { return l.raw.Cmp(o.raw) }
func (l Liquidity) Lt(o Liquidity) bool { return l.Cmp(o) < 0 }
func (l Liquidity) Gt(o Liquidity) bool { return l.Cmp(o) > 0 }
func (l Liquidity) Gte(o Liquidity) bool { return l.Cmp(o) >= 0 }

func (l Liquidity) CheckedAdd(o Liquidity) (Liquidity, error) {
	raw, err := checkedAdd("Liquidity.Add", LiquidityWidth, l.raw, o.raw)
	if err != nil {
		return Liquidity{}, err
	}
	return Liquidity{raw: raw}, nil
}

func (l Liquidity) CheckedSub(o Liquidity) (Liquidity, error) {
	raw, err := checkedSub("Liquidity.Sub", LiquidityWidth, l.raw, o.raw)
	if err != nil {
		return Liquidity{}, err
	}
	return Liquidity{raw: raw}, nil
}

// Sub/Add panic on overflow; provided for call sites that have already
// validated direction (mirroring the decimal macro's infallible operators).
func (l Liquidity) Sub(o Liquidity) Liquidity {
	out, err := l.CheckedSub(o)
	if err != nil {
		panic(err)
	}
	return out
}

func (l Liquidity) Add(o Liquidity) Liquidity {
	out, err := l.CheckedAdd(o)
	if err != nil {
		panic(err)
	}
	return out
}

// One returns the raw integer 10^LiquidityScale, i.e. Liquidity(1.0)'s raw
// form — used when rescaling other types through Liquidity's scale (e.g.
// FeeGrowth::from_fee).
func LiquidityOne() *big.Int { return pow10(LiquidityScale) }
