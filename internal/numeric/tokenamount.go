package numeric

import (
	"math/big"

	cosmosmath "cosmossdk.io/math"
)

// TokenAmountScale and TokenAmountWidth: integer token units, 256-bit
// backing, scale 0 (no fractional digits), per spec.md's data model.
const (
	TokenAmountScale = 0
	TokenAmountWidth = 256
)

// TokenAmount is a raw integer count of token units.
type TokenAmount struct{ raw *big.Int }

func NewTokenAmount(raw *big.Int) TokenAmount { return TokenAmount{raw: cloneBig(raw)} }

func TokenAmountFromU64(n uint64) TokenAmount {
	return TokenAmount{raw: new(big.Int).SetUint64(n)}
}

func TokenAmountZero() TokenAmount { return TokenAmount{raw: big.NewInt(0)} }

func TokenAmountMax() TokenAmount {
	return TokenAmount{raw: cloneBig(maxForWidth(TokenAmountWidth))}
}

func (t TokenAmount) Get() *big.Int { return cloneBig(t.raw) }

func (t TokenAmount) IsZero() bool { return t.raw.Sign() == 0 }
func (t TokenAmount) Eq(o TokenAmount) bool { return t.raw.Cmp(o.raw) == 0 }
func (t TokenAmount) Cmp(o TokenAmount) int { return t.raw.Cmp(o.raw) }
func (t TokenAmount) Lt(o TokenAmount) bool { return t.Cmp(o) < 0 }
func (t TokenAmount) Gt(o TokenAmount) bool { return t.Cmp(o) > 0 }
func (t TokenAmount) Gte(o TokenAmount) bool { return t.Cmp(o) >= 0 }
func (t TokenAmount) Lte(o TokenAmount) bool { return t.Cmp(o) <= 0 }

func (t TokenAmount) CheckedAdd(o TokenAmount) (TokenAmount, error) {
	raw, err := checkedAdd("TokenAmount.Add", TokenAmountWidth, t.raw, o.raw)
	if err != nil {
		return TokenAmount{}, err
	}
	return TokenAmount{raw: raw}, nil
}

func (t TokenAmount) CheckedSub(o TokenAmount) (TokenAmount, error) {
	raw, err := checkedSub("TokenAmount.Sub", TokenAmountWidth, t.raw, o.raw)
	if err != nil {
		return TokenAmount{}, err
	}
	return TokenAmount{raw: raw}, nil
}

func (t TokenAmount) Add(o TokenAmount) TokenAmount {
	out, err := t.CheckedAdd(o)
	if err != nil {
		panic(err)
	}
	return out
}

func (t TokenAmount) Sub(o TokenAmount) TokenAmount {
	out, err := t.CheckedSub(o)
	if err != nil {
		panic(err)
	}
	return out
}

// BigMulUp computes t * pct, rounding up, used by Pool.AddFee's protocol-fee
// split and by ComputeSwapStep's fee.
func (t TokenAmount) BigMulUp(pct Percentage) TokenAmount {
	raw := bigMulUp(t.raw, pct.Get(), PercentageScale)
	return TokenAmount{raw: raw}
}

// BigMul computes t * pct, truncating, used to derive the fee-adjusted
// input amount in ComputeSwapStep's by-amount-in branch.
func (t TokenAmount) BigMul(pct Percentage) TokenAmount {
	raw := bigMul(t.raw, pct.Get(), PercentageScale)
	return TokenAmount{raw: raw}
}

// ToCosmosInt converts to cosmossdk.io/math.Int, the representation used at
// the engine's public API boundary (mirroring the teacher, which threads
// cosmossdk.io/math.Int through its quoting pipeline end to end).
func (t TokenAmount) ToCosmosInt() cosmosmath.Int {
	return cosmosmath.NewIntFromBigInt(t.raw)
}

func TokenAmountFromCosmosInt(i cosmosmath.Int) TokenAmount {
	return TokenAmount{raw: cloneBig(i.BigInt())}
}
